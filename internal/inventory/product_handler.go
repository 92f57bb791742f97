package inventory

import (
	"laptop-inventory-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// respond writes data, or maps err onto an HTTP error. A persistence-only failure
// still answers with status and carries a warning for the caller.
func respond(c *fiber.Ctx, status int, data any, err error) error {
	warning, fatal := SplitPersistence(err)
	if fatal != nil {
		return ToHTTPError(fatal)
	}
	res := fiber.Map{"data": data}
	if warning != "" {
		res["warning"] = warning
	}
	return c.Status(status).JSON(res)
}

// GET /api/models
func ListModelsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.ListModels())
	}
}

// GET /api/models/brands
func ListBrandsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Brands())
	}
}

// GET /api/models/:id
func GetModelHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, ok := svc.Model(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Laptop model not found")
		}
		return c.JSON(m)
	}
}

// POST /api/models
func CreateModelHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ModelSpec
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		m, err := svc.AddModel(auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c)), body)
		return respond(c, fiber.StatusCreated, m, err)
	}
}

// PUT /api/models/:id
func UpdateModelHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body ModelUpdate
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		err := svc.UpdateModel(auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c)), id, body)
		m, _ := svc.Model(id)
		return respond(c, fiber.StatusOK, m, err)
	}
}
