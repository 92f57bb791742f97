package audit

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/activity?entity_type=stock&entity_id=lm-001&user_id=admin&limit=50
func ListActivityHandler(f *Feed) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 0)
		if limit < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit cannot be negative")
		}

		return c.JSON(f.List(ListFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			UserID:     c.Query("user_id"),
			Limit:      limit,
		}))
	}
}
