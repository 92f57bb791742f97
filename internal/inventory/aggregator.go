package inventory

import (
	"strings"

	"laptop-inventory-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ModelStock is one row of the inventory-by-model view.
type ModelStock struct {
	models.LaptopModel
	CurrentStock       int             `json:"currentStock"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	ProjectedSaleValue decimal.Decimal `json:"projectedSaleValue"`
	LowStock           bool            `json:"lowStock"`
}

type StockFilter struct {
	Search   string
	Category models.LaptopCategory
	Brand    string
}

func (f StockFilter) match(m models.LaptopModel) bool {
	if f.Category != "" && m.Category != normalizeCategory(f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(m.Brand, f.Brand) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(m.Brand + " " + m.Model + " " + m.Processor)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

type Summary struct {
	Models             int             `json:"models"`
	TotalUnits         int             `json:"totalUnits"`
	TotalValue         decimal.Decimal `json:"totalValue"`
	ProjectedSaleValue decimal.Decimal `json:"projectedSaleValue"`
	LowStockModels     int             `json:"lowStockModels"`
	ActiveAlerts       int             `json:"activeAlerts"`
}

// CurrentStock counts the model's available and consignment units. Unknown ids yield 0.
func (s *Service) CurrentStock(modelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentStockLocked(modelID)
}

func (s *Service) currentStockLocked(modelID string) int {
	n := 0
	for _, it := range s.items {
		if it.LaptopModelID == modelID && it.Status.InStock() {
			n++
		}
	}
	return n
}

// InventoryByModel folds the item set into one row per catalog model, in catalog order.
func (s *Service) InventoryByModel(f StockFilter) []ModelStock {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inventoryByModelLocked(f)
}

func (s *Service) inventoryByModelLocked(f StockFilter) []ModelStock {
	counts := make(map[string]int, len(s.catalog))
	for _, it := range s.items {
		if it.Status.InStock() {
			counts[it.LaptopModelID]++
		}
	}

	rows := make([]ModelStock, 0, len(s.catalog))
	for _, m := range s.catalog {
		if !f.match(m) {
			continue
		}
		n := counts[m.ID]
		qty := decimal.NewFromInt(int64(n))
		rows = append(rows, ModelStock{
			LaptopModel:        m,
			CurrentStock:       n,
			TotalValue:         qty.Mul(m.Cost),
			ProjectedSaleValue: qty.Mul(m.Price),
			LowStock:           n <= m.MinimumStock,
		})
	}
	return rows
}

func (s *Service) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{TotalValue: decimal.Zero, ProjectedSaleValue: decimal.Zero}
	for _, row := range s.inventoryByModelLocked(StockFilter{}) {
		sum.Models++
		sum.TotalUnits += row.CurrentStock
		sum.TotalValue = sum.TotalValue.Add(row.TotalValue)
		sum.ProjectedSaleValue = sum.ProjectedSaleValue.Add(row.ProjectedSaleValue)
		if row.LowStock {
			sum.LowStockModels++
		}
	}
	for _, a := range s.alerts {
		if a.IsActive {
			sum.ActiveAlerts++
		}
	}
	return sum
}
