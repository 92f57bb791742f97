package inventory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteInventoryCSV(t *testing.T) {
	svc := newTestService(t, nil)
	rows := svc.InventoryByModel(StockFilter{Brand: "Lenovo"})

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"Marca","Modelo","Categoría"`))
	assert.Equal(t,
		`"Lenovo","ThinkPad E14","office","Intel Core i5","","","","","5","5","500.00","800.00","2500.00","4000.00","Principal"`,
		lines[1])
}

func TestWriteQuotedEscapesQuotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeQuoted(&buf, []string{`15.6" FHD`, "a,b"}))
	assert.Equal(t, `"15.6"" FHD","a,b"`+"\n", buf.String())
}

func TestWriteInventoryXLSX(t *testing.T) {
	svc := newTestService(t, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryXLSX(&buf, svc.InventoryByModel(StockFilter{})))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "ASUS", rows[2][0])
	assert.Equal(t, "1", rows[2][8])
}

func TestParseSerialsCSV(t *testing.T) {
	in := "Serial Number,Notes\nSN-001, first\n\n  SN-002 ,second\n,empty\nSN-003\n"
	got, err := ParseSerialsCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"SN-001", "SN-002", "SN-003"}, got)

	got, err = ParseSerialsCSV(strings.NewReader("A1\nA2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, got)
}

func TestParseSerialsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "serial"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "X-1"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "X-2"))
	require.NoError(t, f.SetCellValue(sheet, "B4", "ignored"))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := ParseSerialsXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"X-1", "X-2"}, got)

	_, err = ParseSerialsXLSX(strings.NewReader("not a workbook"))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
