package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceCreated   InvoiceStatus = "created"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceCreated, InvoiceSent, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit-card"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentPayPal       PaymentMethod = "paypal"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCreditCard, PaymentBankTransfer, PaymentPayPal:
		return true
	}
	return false
}

// InvoiceLine is one product row. Lines that reference a laptop model move stock.
type InvoiceLine struct {
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	LaptopModelID string          `json:"laptopModelId,omitempty"`
	SerialNumbers []string        `json:"serialNumbers,omitempty"`
}

func (l InvoiceLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Invoice struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	Date          time.Time       `json:"date"`
	ClientName    string          `json:"clientName"`
	ClientEmail   string          `json:"clientEmail"`
	ClientAddress string          `json:"clientAddress"`
	Products      []InvoiceLine   `json:"products"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	IVA           decimal.Decimal `json:"iva"`
	Total         decimal.Decimal `json:"total"`
	Status        InvoiceStatus   `json:"status"`
	CancelledDate *time.Time      `json:"cancelledDate,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
}

type CreditNote struct {
	ID                    string           `json:"id"`
	Number                string           `json:"number"`
	Date                  time.Time        `json:"date"`
	OriginalInvoiceID     string           `json:"originalInvoiceId"`
	OriginalInvoiceNumber string           `json:"originalInvoiceNumber"`
	ClientName            string           `json:"clientName"`
	ClientEmail           string           `json:"clientEmail"`
	Products              []CreditNoteLine `json:"products"`
	Subtotal              decimal.Decimal  `json:"subtotal"`
	IVA                   decimal.Decimal  `json:"iva"`
	Total                 decimal.Decimal  `json:"total"`
	Reason                string           `json:"reason"`
}

// CreditNoteLine is a credited portion of one invoice line, identified by its index.
type CreditNoteLine struct {
	InvoiceLine
	SourceIndex int `json:"sourceIndex"`
}
