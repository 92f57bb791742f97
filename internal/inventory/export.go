package inventory

import (
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Inventario"

var exportHeader = []string{
	"Marca", "Modelo", "Categoría", "Procesador", "RAM", "Almacenamiento", "Pantalla",
	"Sistema Operativo", "Stock Actual", "Stock Mínimo", "Costo Unitario", "Precio Venta",
	"Valor Total Stock", "Valor Proyectado Venta", "Ubicación",
}

func exportRecord(r ModelStock) []string {
	return []string{
		r.Brand, r.Model, string(r.Category), r.Processor, r.RAM, r.Storage, r.Screen,
		r.OperatingSystem,
		strconv.Itoa(r.CurrentStock), strconv.Itoa(r.MinimumStock),
		r.Cost.StringFixed(2), r.Price.StringFixed(2),
		r.TotalValue.StringFixed(2), r.ProjectedSaleValue.StringFixed(2),
		r.Location,
	}
}

// WriteInventoryCSV writes rows with every cell quoted.
func WriteInventoryCSV(w io.Writer, rows []ModelStock) error {
	if err := writeQuoted(w, exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeQuoted(w, exportRecord(r)); err != nil {
			return err
		}
	}
	return nil
}

// writeQuoted emits one CSV record with every cell quoted.
func writeQuoted(w io.Writer, record []string) error {
	for i, cell := range record {
		sep := ","
		if i == 0 {
			sep = ""
		}
		quoted := `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		if _, err := io.WriteString(w, sep+quoted); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteInventoryXLSX writes rows to a single "Inventario" sheet.
func WriteInventoryXLSX(w io.Writer, rows []ModelStock) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", toCells(exportHeader)); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		rec := exportRecord(r)
		values := toCells(rec)
		values[8] = r.CurrentStock
		values[9] = r.MinimumStock
		for j, d := range []float64{
			r.Cost.InexactFloat64(), r.Price.InexactFloat64(),
			r.TotalValue.InexactFloat64(), r.ProjectedSaleValue.InexactFloat64(),
		} {
			values[10+j] = d
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
