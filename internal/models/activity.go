package models

import (
	"encoding/json"
	"time"
)

type ActivityAction string

const (
	ActivityCreate     ActivityAction = "create"
	ActivityUpdate     ActivityAction = "update"
	ActivityStockEntry ActivityAction = "stock_entry"
	ActivityStockExit  ActivityAction = "stock_exit"
	ActivityAlert      ActivityAction = "alert"
	ActivityClear      ActivityAction = "alert_cleared"
	ActivityDismiss    ActivityAction = "alert_dismissed"
	ActivityCancel     ActivityAction = "cancel"
)

type ActivityLevel string

const (
	LevelInfo    ActivityLevel = "info"
	LevelWarning ActivityLevel = "warning"
)

type ActivityEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UserID string `json:"userId"`

	// Entity kind: "laptop_model", "stock", "stock_alert", "invoice", "credit_note"
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`

	Action      ActivityAction `json:"action"`
	Level       ActivityLevel  `json:"level"`
	Title       string         `json:"title"`
	Description string         `json:"description"`

	BeforeData json.RawMessage `json:"beforeData,omitempty"`
	AfterData  json.RawMessage `json:"afterData,omitempty"`
}
