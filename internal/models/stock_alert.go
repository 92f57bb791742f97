package models

import "time"

type StockAlert struct {
	ID            string     `json:"id"`
	LaptopModelID string     `json:"laptopModelId"`
	CurrentStock  int        `json:"currentStock"`
	MinimumStock  int        `json:"minimumStock"`
	AlertDate     time.Time  `json:"alertDate"`
	IsActive      bool       `json:"isActive"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}
