package invoicing

import (
	"laptop-inventory-backend/internal/models"

	"github.com/shopspring/decimal"
)

var DefaultTaxRate = decimal.RequireFromString("0.12")

type Totals struct {
	Subtotal decimal.Decimal
	IVA      decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTaxes sums quantity × price and applies rate. Each figure is rounded to
// cents independently from the unrounded intermediate values.
func CalculateTaxes(lines []models.InvoiceLine, rate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	iva := subtotal.Mul(rate)
	return Totals{
		Subtotal: subtotal.Round(2),
		IVA:      iva.Round(2),
		Total:    subtotal.Add(iva).Round(2),
	}
}
