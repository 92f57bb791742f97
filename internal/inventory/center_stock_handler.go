package inventory

import (
	"laptop-inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func stockFilterFromQuery(c *fiber.Ctx) StockFilter {
	return StockFilter{
		Search:   c.Query("search"),
		Category: models.LaptopCategory(c.Query("category")),
		Brand:    c.Query("brand"),
	}
}

// GET /api/inventory?search=&category=&brand=
func InventoryByModelHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.InventoryByModel(stockFilterFromQuery(c)))
	}
}

// GET /api/inventory/summary
func InventorySummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Summary())
	}
}

// GET /api/inventory/items?model_id=lm-001
func ListItemsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.CurrentItems(c.Query("model_id")))
	}
}

// GET /api/inventory/stock/:modelId
func CurrentStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("modelId")
		m, ok := svc.Model(id)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Laptop model not found")
		}
		return c.JSON(fiber.Map{
			"laptopModelId": id,
			"currentStock":  svc.CurrentStock(id),
			"minimumStock":  m.MinimumStock,
		})
	}
}
