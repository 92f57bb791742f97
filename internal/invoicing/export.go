package invoicing

import (
	"encoding/csv"
	"io"
	"strconv"

	"laptop-inventory-backend/internal/models"
)

var invoiceHeader = []string{
	"Número", "Fecha", "Cliente", "Email", "Método de Pago", "Productos", "Subtotal", "IVA", "Total", "Estado",
}

// WriteInvoicesCSV writes one row per invoice.
func WriteInvoicesCSV(w io.Writer, invoices []models.Invoice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(invoiceHeader); err != nil {
		return err
	}
	for _, inv := range invoices {
		units := 0
		for _, l := range inv.Products {
			units += l.Quantity
		}
		if err := cw.Write([]string{
			inv.Number,
			inv.Date.Format("2006-01-02"),
			inv.ClientName,
			inv.ClientEmail,
			string(inv.PaymentMethod),
			strconv.Itoa(units),
			inv.Subtotal.StringFixed(2),
			inv.IVA.StringFixed(2),
			inv.Total.StringFixed(2),
			string(inv.Status),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
