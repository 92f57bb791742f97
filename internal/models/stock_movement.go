package models

import "time"

type MovementType string

const (
	MovementEntry MovementType = "entry"
	MovementExit  MovementType = "exit"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementEntry, MovementExit:
		return true
	}
	return false
}

type MovementReason string

const (
	ReasonPurchase       MovementReason = "purchase"
	ReasonReturn         MovementReason = "return"
	ReasonConsignment    MovementReason = "consignment"
	ReasonSale           MovementReason = "sale"
	ReasonPromotion      MovementReason = "promotion"
	ReasonSupplierReturn MovementReason = "supplier_return"
	ReasonAdjustment     MovementReason = "adjustment"
)

// AllowedFor reports whether the reason may be recorded with the given movement type.
// Adjustment is valid in both directions.
func (r MovementReason) AllowedFor(t MovementType) bool {
	switch r {
	case ReasonPurchase, ReasonReturn, ReasonConsignment:
		return t == MovementEntry
	case ReasonSale, ReasonPromotion, ReasonSupplierReturn:
		return t == MovementExit
	case ReasonAdjustment:
		return t.Valid()
	}
	return false
}

// EntryStatus is the status a unit receives when it enters stock for this reason.
func (r MovementReason) EntryStatus() ItemStatus {
	switch r {
	case ReasonConsignment:
		return ItemConsignment
	case ReasonPurchase, ReasonReturn, ReasonAdjustment:
		return ItemAvailable
	case ReasonSale, ReasonPromotion, ReasonSupplierReturn:
		return ItemAvailable
	}
	return ItemAvailable
}

// ExitStatus is the status a unit is left in after it leaves stock for this reason.
func (r MovementReason) ExitStatus() ItemStatus {
	switch r {
	case ReasonSale, ReasonPromotion:
		return ItemSold
	case ReasonSupplierReturn:
		return ItemReturned
	case ReasonAdjustment:
		return ItemDamaged
	case ReasonPurchase, ReasonReturn, ReasonConsignment:
		return ItemSold
	}
	return ItemSold
}

// StockMovement is an immutable ledger row. One row per unit, so Quantity is always 1.
type StockMovement struct {
	ID            string         `json:"id"`
	LaptopModelID string         `json:"laptopModelId"`
	SerialNumber  string         `json:"serialNumber,omitempty"`
	Type          MovementType   `json:"type"`
	Reason        MovementReason `json:"reason"`
	Quantity      int            `json:"quantity"`
	Date          time.Time      `json:"date"`
	Reference     string         `json:"reference,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	UserID        string         `json:"userId"`
}
