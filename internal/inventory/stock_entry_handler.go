package inventory

import (
	"laptop-inventory-backend/internal/auth"
	"laptop-inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type movementResponse struct {
	ModelID      string `json:"laptopModelId"`
	Units        int    `json:"units"`
	CurrentStock int    `json:"currentStock"`
}

// POST /api/stock/entries
func CreateStockEntryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.UserID = auth.UserIDFromCtx(c)

		err := svc.RecordEntry(c.UserContext(), body)
		return respond(c, fiber.StatusCreated, movementResponse{
			ModelID:      body.ModelID,
			Units:        len(body.SerialNumbers),
			CurrentStock: svc.CurrentStock(body.ModelID),
		}, err)
	}
}

// POST /api/stock/exits
func CreateStockExitHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.UserID = auth.UserIDFromCtx(c)

		err := svc.RecordExit(c.UserContext(), body)
		return respond(c, fiber.StatusCreated, movementResponse{
			ModelID:      body.ModelID,
			Units:        len(body.SerialNumbers),
			CurrentStock: svc.CurrentStock(body.ModelID),
		}, err)
	}
}

// GET /api/stock/movements?model_id=lm-001&type=exit&reason=sale
func ListMovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := MovementFilter{
			ModelID: c.Query("model_id"),
			Type:    models.MovementType(c.Query("type")),
			Reason:  models.MovementReason(c.Query("reason")),
		}
		if f.Type != "" && !f.Type.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "type must be entry or exit")
		}
		return c.JSON(svc.Movements(f))
	}
}
