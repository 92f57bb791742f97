package inventory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/inventory/export?format=csv|xlsx (same filters as /api/inventory)
func ExportInventoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows := svc.InventoryByModel(stockFilterFromQuery(c))
		date := time.Now().Format("2006-01-02")

		var buf bytes.Buffer
		switch format := strings.ToLower(c.Query("format", "csv")); format {
		case "csv":
			if err := WriteInventoryCSV(&buf, rows); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not build CSV")
			}
			c.Attachment(fmt.Sprintf("inventario_%s.csv", date))
			c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		case "xlsx":
			if err := WriteInventoryXLSX(&buf, rows); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not build spreadsheet")
			}
			c.Attachment(fmt.Sprintf("inventario_%s.xlsx", date))
			c.Set(fiber.HeaderContentType, xlsxContentType)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "format must be csv or xlsx")
		}
		return c.Send(buf.Bytes())
	}
}

type parseSerialsRequest struct {
	Text string `json:"text"`
}

// POST /api/stock/serials/parse
// Accepts a multipart "file" (.xlsx or .csv) or a JSON body {"text": "..."}.
func ParseSerialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			serials []string
			err     error
		)

		if fileHeader, ferr := c.FormFile("file"); ferr == nil {
			file, oerr := fileHeader.Open()
			if oerr != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not open upload")
			}
			defer file.Close()

			switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
			case ".xlsx":
				serials, err = ParseSerialsXLSX(file)
			case ".csv", ".txt":
				serials, err = ParseSerialsCSV(file)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx, .csv and .txt files are accepted")
			}
		} else {
			var body parseSerialsRequest
			if perr := c.BodyParser(&body); perr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
			serials, err = ParseSerialsCSV(strings.NewReader(body.Text))
		}
		if err != nil {
			return ToHTTPError(err)
		}

		return c.JSON(fiber.Map{
			"serialNumbers": serials,
			"count":         len(serials),
		})
	}
}
