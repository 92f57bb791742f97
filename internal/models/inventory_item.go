package models

import "time"

type ItemStatus string

const (
	ItemAvailable   ItemStatus = "available"
	ItemSold        ItemStatus = "sold"
	ItemReserved    ItemStatus = "reserved"
	ItemDamaged     ItemStatus = "damaged"
	ItemConsignment ItemStatus = "consignment"
	ItemReturned    ItemStatus = "returned" // sent back to the supplier
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemAvailable, ItemSold, ItemReserved, ItemDamaged, ItemConsignment, ItemReturned:
		return true
	}
	return false
}

// InStock reports whether a unit in this status counts toward current stock.
func (s ItemStatus) InStock() bool {
	switch s {
	case ItemAvailable, ItemConsignment:
		return true
	case ItemSold, ItemReserved, ItemDamaged, ItemReturned:
		return false
	}
	return false
}

type InventoryItem struct {
	ID            string     `json:"id"`
	LaptopModelID string     `json:"laptopModelId"`
	SerialNumber  string     `json:"serialNumber"`
	Status        ItemStatus `json:"status"`
	DateAdded     time.Time  `json:"dateAdded"`
	InvoiceID     string     `json:"invoiceId,omitempty"`
	Location      string     `json:"location"`
}
