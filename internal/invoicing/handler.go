package invoicing

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"laptop-inventory-backend/internal/auth"
	"laptop-inventory-backend/internal/inventory"
	"laptop-inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type UpdateStatusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// -------------------------
// Helpers
// -------------------------

// ToHTTPError maps invoicing and inventory errors onto fiber errors.
func ToHTTPError(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fiber.NewError(fiber.StatusNotFound, nf.Error())
	}
	return inventory.ToHTTPError(err)
}

func respond(c *fiber.Ctx, status int, data any, err error) error {
	warning, fatal := inventory.SplitPersistence(err)
	if fatal != nil {
		return ToHTTPError(fatal)
	}
	res := fiber.Map{"data": data}
	if warning != "" {
		res["warning"] = warning
	}
	return c.Status(status).JSON(res)
}

func parseDate(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func listFilterFromQuery(c *fiber.Ctx) (ListFilter, error) {
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		return ListFilter{}, err
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		return ListFilter{}, err
	}
	return ListFilter{
		Search: c.Query("search"),
		Status: models.InvoiceStatus(c.Query("status")),
		From:   from,
		To:     to,
	}, nil
}

// -------------------------
// Invoice Handlers
// -------------------------

// GET /api/invoices?search=&status=&from=2026-01-01&to=2026-01-31
func ListInvoicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := listFilterFromQuery(c)
		if err != nil {
			return err
		}
		return c.JSON(svc.ListInvoices(f))
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inv, ok := svc.Invoice(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return c.JSON(inv)
	}
}

// POST /api/invoices
func CreateInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		ctx := auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c))
		inv, err := svc.CreateInvoice(ctx, body)
		return respond(c, fiber.StatusCreated, inv, err)
	}
}

// PUT /api/invoices/:id/status
func UpdateInvoiceStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		ctx := auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c))
		inv, err := svc.UpdateStatus(ctx, c.Params("id"), body.Status)
		return respond(c, fiber.StatusOK, inv, err)
	}
}

// POST /api/invoices/:id/cancel
func CancelInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CancelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		ctx := auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c))
		inv, err := svc.Cancel(ctx, c.Params("id"), body.Reason)
		return respond(c, fiber.StatusOK, inv, err)
	}
}

// GET /api/invoices/export (same filters as the list)
func ExportInvoicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := listFilterFromQuery(c)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := WriteInvoicesCSV(&buf, svc.ListInvoices(f)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build CSV")
		}
		c.Attachment(fmt.Sprintf("facturas_%s.csv", time.Now().Format("2006-01-02")))
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	}
}

// -------------------------
// Credit Note Handlers
// -------------------------

// POST /api/invoices/:id/credit-notes
func CreateCreditNoteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreditNoteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		ctx := auth.WithUser(c.UserContext(), auth.UserIDFromCtx(c))
		cn, err := svc.CreateCreditNote(ctx, c.Params("id"), body)
		return respond(c, fiber.StatusCreated, cn, err)
	}
}

// GET /api/credit-notes?search=&from=&to=
func ListCreditNotesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := listFilterFromQuery(c)
		if err != nil {
			return err
		}
		return c.JSON(svc.ListCreditNotes(f))
	}
}
