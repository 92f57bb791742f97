package inventory

import (
	"laptop-inventory-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/alerts?all=true
func ListAlertsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.QueryBool("all") {
			return c.JSON(svc.Alerts())
		}
		return c.JSON(svc.ActiveAlerts())
	}
}

// POST /api/alerts/:id/dismiss
func DismissAlertHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c))
		err := svc.Dismiss(ctx, c.Params("id"))
		return respond(c, fiber.StatusOK, svc.ActiveAlerts(), err)
	}
}

// POST /api/alerts/evaluate/:modelId
func EvaluateAlertHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c))
		alert, err := svc.Evaluate(ctx, c.Params("modelId"))
		return respond(c, fiber.StatusOK, fiber.Map{"raised": alert}, err)
	}
}
