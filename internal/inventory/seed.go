package inventory

import (
	"fmt"
	"time"

	"laptop-inventory-backend/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultCatalog is the built-in catalog written on first run.
func DefaultCatalog() []models.LaptopModel {
	return []models.LaptopModel{
		{
			ID: "lm-001", Brand: "ASUS", Model: "ROG Strix G16", Category: models.CategoryGamer,
			Processor: "Intel Core i7-13650HX", RAM: "16GB DDR5", Storage: "1TB SSD", Screen: "16\" 165Hz",
			OperatingSystem: "Windows 11 Home",
			Price:           decimal.RequireFromString("1599.00"), Cost: decimal.RequireFromString("1180.00"),
			MinimumStock: 3, Location: "Principal",
		},
		{
			ID: "lm-002", Brand: "Lenovo", Model: "Legion 5 Pro", Category: models.CategoryGamer,
			Processor: "AMD Ryzen 7 7745HX", RAM: "32GB DDR5", Storage: "1TB SSD", Screen: "16\" 240Hz",
			OperatingSystem: "Windows 11 Home",
			Price:           decimal.RequireFromString("1849.00"), Cost: decimal.RequireFromString("1390.00"),
			MinimumStock: 2, Location: "Principal",
		},
		{
			ID: "lm-003", Brand: "Dell", Model: "Latitude 5440", Category: models.CategoryOffice,
			Processor: "Intel Core i5-1345U", RAM: "16GB DDR4", Storage: "512GB SSD", Screen: "14\" FHD",
			OperatingSystem: "Windows 11 Pro",
			Price:           decimal.RequireFromString("1099.00"), Cost: decimal.RequireFromString("820.00"),
			MinimumStock: 5, Location: "Bodega",
		},
		{
			ID: "lm-004", Brand: "HP", Model: "ProBook 450 G10", Category: models.CategoryOffice,
			Processor: "Intel Core i5-1335U", RAM: "8GB DDR4", Storage: "512GB SSD", Screen: "15.6\" FHD",
			OperatingSystem: "Windows 11 Pro",
			Price:           decimal.RequireFromString("899.00"), Cost: decimal.RequireFromString("640.00"),
			MinimumStock: 5, Location: "Bodega",
		},
		{
			ID: "lm-005", Brand: "Apple", Model: "MacBook Air 13 M3", Category: models.CategoryUltrabook,
			Processor: "Apple M3", RAM: "8GB", Storage: "256GB SSD", Screen: "13.6\" Liquid Retina",
			OperatingSystem: "macOS",
			Price:           decimal.RequireFromString("1299.00"), Cost: decimal.RequireFromString("1010.00"),
			MinimumStock: 4, Location: "Principal",
		},
		{
			ID: "lm-006", Brand: "Dell", Model: "XPS 13 Plus", Category: models.CategoryUltrabook,
			Processor: "Intel Core i7-1360P", RAM: "16GB LPDDR5", Storage: "512GB SSD", Screen: "13.4\" OLED",
			OperatingSystem: "Windows 11 Home",
			Price:           decimal.RequireFromString("1499.00"), Cost: decimal.RequireFromString("1120.00"),
			MinimumStock: 2, Location: "Principal",
		},
	}
}

// SeedInventory creates exactly MinimumStock available units per model, with
// id and serial number "{modelId}-SN{n}" counting from 1.
func SeedInventory(catalog []models.LaptopModel, now time.Time) []models.InventoryItem {
	var items []models.InventoryItem
	for _, m := range catalog {
		for n := 1; n <= m.MinimumStock; n++ {
			serial := fmt.Sprintf("%s-SN%d", m.ID, n)
			items = append(items, models.InventoryItem{
				ID:            serial,
				LaptopModelID: m.ID,
				SerialNumber:  serial,
				Status:        models.ItemAvailable,
				DateAdded:     now,
				Location:      m.Location,
			})
		}
	}
	return items
}
