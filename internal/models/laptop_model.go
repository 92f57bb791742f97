package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type LaptopCategory string

const (
	CategoryGamer     LaptopCategory = "gamer"
	CategoryOffice    LaptopCategory = "office"
	CategoryUltrabook LaptopCategory = "ultrabook"
)

// ParseLaptopCategory accepts the stored spelling of older catalogs ("oficina") as office.
func ParseLaptopCategory(s string) (LaptopCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gamer":
		return CategoryGamer, true
	case "office", "oficina":
		return CategoryOffice, true
	case "ultrabook":
		return CategoryUltrabook, true
	}
	return "", false
}

func (c LaptopCategory) Valid() bool {
	switch c {
	case CategoryGamer, CategoryOffice, CategoryUltrabook:
		return true
	}
	return false
}

// LaptopModel is a catalog definition, not a physical unit.
type LaptopModel struct {
	ID              string          `json:"id"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	Category        LaptopCategory  `json:"category"`
	Processor       string          `json:"processor"`
	RAM             string          `json:"ram"`
	Storage         string          `json:"storage"`
	Screen          string          `json:"screen"`
	OperatingSystem string          `json:"operatingSystem"`
	Price           decimal.Decimal `json:"price"`
	Cost            decimal.Decimal `json:"cost"`
	MinimumStock    int             `json:"minimumStock"`
	Location        string          `json:"location"`
}

func (m LaptopModel) DisplayName() string {
	return strings.TrimSpace(m.Brand + " " + m.Model)
}
