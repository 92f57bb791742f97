package invoicing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"laptop-inventory-backend/internal/auth"
	"laptop-inventory-backend/internal/inventory"
	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the part of the inventory service invoicing depends on.
type Ledger interface {
	Model(id string) (models.LaptopModel, bool)
	RecordExits(ctx context.Context, reqs []inventory.ExitRequest) error
	RecordEntry(ctx context.Context, req inventory.EntryRequest) error
	ItemsForReference(modelID, ref string) []models.InventoryItem
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

type Option func(*Service)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *Service) { s.taxRate = rate }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithActivity(r inventory.ActivityRecorder) Option {
	return func(s *Service) { s.activity = r }
}

type Service struct {
	mu       sync.Mutex
	store    store.Store
	log      *zap.Logger
	ledger   Ledger
	activity inventory.ActivityRecorder
	taxRate  decimal.Decimal
	now      func() time.Time

	invoices    []models.Invoice
	creditNotes []models.CreditNote
}

func New(ctx context.Context, st store.Store, ledger Ledger, log *zap.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		store:   st,
		log:     log,
		ledger:  ledger,
		taxRate: DefaultTaxRate,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := store.LoadJSON(ctx, st, store.KeyInvoices, &s.invoices); err != nil {
		return nil, err
	}
	if _, err := store.LoadJSON(ctx, st, store.KeyCreditNotes, &s.creditNotes); err != nil {
		return nil, err
	}
	if s.invoices == nil {
		s.invoices = []models.Invoice{}
	}
	if s.creditNotes == nil {
		s.creditNotes = []models.CreditNote{}
	}
	return s, nil
}

// MaxLineQuantity bounds the units of a single invoice line.
const MaxLineQuantity = 10000

type InvoiceRequest struct {
	ClientName    string               `json:"clientName"`
	ClientEmail   string               `json:"clientEmail"`
	ClientAddress string               `json:"clientAddress"`
	Products      []models.InvoiceLine `json:"products"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// CreateInvoice prices the request, takes laptop lines out of stock under the
// invoice number and stores the invoice. A stock shortfall on any line leaves
// nothing changed.
func (s *Service) CreateInvoice(ctx context.Context, req InvoiceRequest) (models.Invoice, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	if req.ClientName == "" {
		return models.Invoice{}, &inventory.ValidationError{Field: "clientName", Reason: "required"}
	}
	if !strings.Contains(req.ClientEmail, "@") {
		return models.Invoice{}, &inventory.ValidationError{Field: "clientEmail", Reason: "a valid email is required"}
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCreditCard
	}
	if !req.PaymentMethod.Valid() {
		return models.Invoice{}, &inventory.ValidationError{Field: "paymentMethod", Reason: fmt.Sprintf("%q is not supported", req.PaymentMethod)}
	}
	if len(req.Products) == 0 {
		return models.Invoice{}, &inventory.ValidationError{Field: "products", Reason: "at least one product is required"}
	}

	lines := make([]models.InvoiceLine, len(req.Products))
	for i, l := range req.Products {
		if l.LaptopModelID != "" {
			m, ok := s.ledger.Model(l.LaptopModelID)
			if !ok {
				return models.Invoice{}, &inventory.UnknownModelError{ModelID: l.LaptopModelID}
			}
			if strings.TrimSpace(l.Name) == "" {
				l.Name = m.DisplayName()
			}
			if l.Price.IsZero() {
				l.Price = m.Price
			}
			if len(l.SerialNumbers) > l.Quantity {
				return models.Invoice{}, &inventory.ValidationError{Field: fmt.Sprintf("products[%d].serialNumbers", i), Reason: "more serial numbers than units"}
			}
		}
		if strings.TrimSpace(l.Name) == "" {
			return models.Invoice{}, &inventory.ValidationError{Field: fmt.Sprintf("products[%d].name", i), Reason: "required"}
		}
		if l.Quantity <= 0 {
			return models.Invoice{}, &inventory.ValidationError{Field: fmt.Sprintf("products[%d].quantity", i), Reason: "must be greater than zero"}
		}
		if l.Quantity > MaxLineQuantity {
			return models.Invoice{}, &inventory.ValidationError{Field: fmt.Sprintf("products[%d].quantity", i), Reason: fmt.Sprintf("cannot exceed %d", MaxLineQuantity)}
		}
		if !l.Price.IsPositive() {
			return models.Invoice{}, &inventory.ValidationError{Field: fmt.Sprintf("products[%d].price", i), Reason: "must be greater than zero"}
		}
		lines[i] = l
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	number := s.uniqueNumber("INV", now)

	var exits []inventory.ExitRequest
	for _, l := range lines {
		if l.LaptopModelID == "" {
			continue
		}
		serials := make([]string, l.Quantity)
		copy(serials, l.SerialNumbers)
		exits = append(exits, inventory.ExitRequest{
			ModelID:       l.LaptopModelID,
			SerialNumbers: serials,
			Reason:        models.ReasonSale,
			Reference:     number,
		})
	}

	var errs []error
	if len(exits) > 0 {
		err := s.ledger.RecordExits(ctx, exits)
		if _, fatal := inventory.SplitPersistence(err); fatal != nil {
			return models.Invoice{}, fatal
		}
		errs = append(errs, err)
	}

	sold := map[string][]string{}
	for _, l := range lines {
		if l.LaptopModelID == "" || sold[l.LaptopModelID] != nil {
			continue
		}
		serials := []string{}
		for _, it := range s.ledger.ItemsForReference(l.LaptopModelID, number) {
			serials = append(serials, it.SerialNumber)
		}
		sold[l.LaptopModelID] = serials
	}
	assignSoldSerials(lines, sold)

	totals := CalculateTaxes(lines, s.taxRate)
	inv := models.Invoice{
		ID:            uuid.NewString(),
		Number:        number,
		Date:          now,
		ClientName:    req.ClientName,
		ClientEmail:   req.ClientEmail,
		ClientAddress: strings.TrimSpace(req.ClientAddress),
		Products:      lines,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      totals.Subtotal,
		IVA:           totals.IVA,
		Total:         totals.Total,
		Status:        models.InvoiceCreated,
	}
	s.invoices = append(s.invoices, inv)
	errs = append(errs, s.persist(ctx, store.KeyInvoices))

	s.record(ctx, models.ActivityEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID,
		Action:      models.ActivityCreate,
		Title:       "Invoice created",
		Description: fmt.Sprintf("Invoice %s for %s, total %s", inv.Number, inv.ClientName, inv.Total.StringFixed(2)),
	})
	return inv, errors.Join(errs...)
}

// assignSoldSerials replaces each laptop line's requested serials with the units
// actually sold for it. Named serials keep their line; the rest are handed out in
// item order.
func assignSoldSerials(lines []models.InvoiceLine, sold map[string][]string) {
	pool := map[string]map[string]int{}
	for id, serials := range sold {
		pool[id] = map[string]int{}
		for _, sn := range serials {
			pool[id][sn]++
		}
	}

	assigned := make([][]string, len(lines))
	for i, l := range lines {
		if l.LaptopModelID == "" {
			continue
		}
		for _, sn := range l.SerialNumbers {
			sn = strings.TrimSpace(sn)
			if sn != "" && pool[l.LaptopModelID][sn] > 0 {
				pool[l.LaptopModelID][sn]--
				assigned[i] = append(assigned[i], sn)
			}
		}
	}

	for i, l := range lines {
		if l.LaptopModelID == "" {
			continue
		}
		for _, sn := range sold[l.LaptopModelID] {
			if len(assigned[i]) >= l.Quantity {
				break
			}
			if pool[l.LaptopModelID][sn] > 0 {
				pool[l.LaptopModelID][sn]--
				assigned[i] = append(assigned[i], sn)
			}
		}
		lines[i].SerialNumbers = assigned[i]
	}
}

func (s *Service) uniqueNumber(prefix string, now time.Time) string {
	base := fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
	number := base
	for n := 2; s.numberTaken(number); n++ {
		number = fmt.Sprintf("%s-%d", base, n)
	}
	return number
}

func (s *Service) numberTaken(number string) bool {
	for _, inv := range s.invoices {
		if inv.Number == number {
			return true
		}
	}
	for _, cn := range s.creditNotes {
		if cn.Number == number {
			return true
		}
	}
	return false
}

// UpdateStatus moves an invoice to sent or paid. Cancelled invoices are final.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) (models.Invoice, error) {
	if status != models.InvoiceSent && status != models.InvoicePaid {
		return models.Invoice{}, &inventory.ValidationError{Field: "status", Reason: "must be sent or paid"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.invoiceIndex(id)
	if idx < 0 {
		return models.Invoice{}, &NotFoundError{Kind: "invoice", ID: id}
	}
	inv := &s.invoices[idx]
	if inv.Status == models.InvoiceCancelled {
		return models.Invoice{}, &inventory.ValidationError{Field: "status", Reason: "invoice is cancelled"}
	}

	before := inv.Status
	inv.Status = status
	err := s.persist(ctx, store.KeyInvoices)

	s.record(ctx, models.ActivityEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID,
		Action:      models.ActivityUpdate,
		Title:       "Invoice updated",
		Description: fmt.Sprintf("Invoice %s moved from %s to %s", inv.Number, before, status),
	})
	return *inv, err
}

// Cancel marks an invoice cancelled with a reason. Units sold on it stay sold;
// returns go through credit notes.
func (s *Service) Cancel(ctx context.Context, id, reason string) (models.Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Invoice{}, &inventory.ValidationError{Field: "reason", Reason: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.invoiceIndex(id)
	if idx < 0 {
		return models.Invoice{}, &NotFoundError{Kind: "invoice", ID: id}
	}
	inv := &s.invoices[idx]
	if inv.Status == models.InvoiceCancelled {
		return models.Invoice{}, &inventory.ValidationError{Field: "status", Reason: "invoice is already cancelled"}
	}

	now := s.now()
	inv.Status = models.InvoiceCancelled
	inv.CancelledDate = &now
	inv.CancelReason = reason
	err := s.persist(ctx, store.KeyInvoices)

	s.record(ctx, models.ActivityEntry{
		EntityType:  "invoice",
		EntityID:    inv.ID,
		Action:      models.ActivityCancel,
		Level:       models.LevelWarning,
		Title:       "Invoice cancelled",
		Description: fmt.Sprintf("Invoice %s cancelled: %s", inv.Number, reason),
	})
	return *inv, err
}

type CreditLine struct {
	Index    int `json:"index"`
	Quantity int `json:"quantity"`
}

type CreditNoteRequest struct {
	Reason string       `json:"reason"`
	Lines  []CreditLine `json:"lines"`
}

// CreateCreditNote credits part of an invoice. Each quantity is clamped to what is
// left of the line after earlier credit notes; laptop units come back into stock
// as returns under the credit note number.
func (s *Service) CreateCreditNote(ctx context.Context, invoiceID string, req CreditNoteRequest) (models.CreditNote, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return models.CreditNote{}, &inventory.ValidationError{Field: "reason", Reason: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.invoiceIndex(invoiceID)
	if idx < 0 {
		return models.CreditNote{}, &NotFoundError{Kind: "invoice", ID: invoiceID}
	}
	inv := s.invoices[idx]
	if inv.Status == models.InvoiceCancelled {
		return models.CreditNote{}, &inventory.ValidationError{Field: "invoice", Reason: "cancelled invoices cannot be credited"}
	}

	creditedQty, returned := s.creditedSoFar(inv.ID)
	requested := map[int]int{}
	for _, cl := range req.Lines {
		if cl.Index < 0 || cl.Index >= len(inv.Products) {
			return models.CreditNote{}, &inventory.ValidationError{Field: "lines", Reason: fmt.Sprintf("no product at index %d", cl.Index)}
		}
		if cl.Quantity > 0 {
			requested[cl.Index] += cl.Quantity
		}
	}

	var lines []models.CreditNoteLine
	for i, src := range inv.Products {
		q := requested[i]
		if left := src.Quantity - creditedQty[i]; q > left {
			q = left
		}
		if q <= 0 {
			continue
		}
		line := models.CreditNoteLine{InvoiceLine: src, SourceIndex: i}
		line.Quantity = q
		line.SerialNumbers = nil
		if src.LaptopModelID != "" {
			line.SerialNumbers = pendingSerials(src.SerialNumbers, returned[i], q)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return models.CreditNote{}, &inventory.ValidationError{Field: "lines", Reason: "nothing left to credit"}
	}

	now := s.now()
	number := s.uniqueNumber("NC", now)

	var errs []error
	for _, l := range lines {
		if l.LaptopModelID == "" {
			continue
		}
		serials := make([]string, l.Quantity)
		copy(serials, l.SerialNumbers)
		err := s.ledger.RecordEntry(ctx, inventory.EntryRequest{
			ModelID:       l.LaptopModelID,
			SerialNumbers: serials,
			Reason:        models.ReasonReturn,
			Reference:     number,
			Notes:         fmt.Sprintf("Credit note for invoice %s", inv.Number),
		})
		if _, fatal := inventory.SplitPersistence(err); fatal != nil {
			return models.CreditNote{}, fatal
		}
		errs = append(errs, err)
	}

	plain := make([]models.InvoiceLine, len(lines))
	for i, l := range lines {
		plain[i] = l.InvoiceLine
	}
	totals := CalculateTaxes(plain, s.taxRate)
	cn := models.CreditNote{
		ID:                    uuid.NewString(),
		Number:                number,
		Date:                  now,
		OriginalInvoiceID:     inv.ID,
		OriginalInvoiceNumber: inv.Number,
		ClientName:            inv.ClientName,
		ClientEmail:           inv.ClientEmail,
		Products:              lines,
		Subtotal:              totals.Subtotal,
		IVA:                   totals.IVA,
		Total:                 totals.Total,
		Reason:                req.Reason,
	}
	s.creditNotes = append(s.creditNotes, cn)
	errs = append(errs, s.persist(ctx, store.KeyCreditNotes))

	s.record(ctx, models.ActivityEntry{
		EntityType:  "credit_note",
		EntityID:    cn.ID,
		Action:      models.ActivityCreate,
		Title:       "Credit note created",
		Description: fmt.Sprintf("Credit note %s for invoice %s, total %s", cn.Number, inv.Number, cn.Total.StringFixed(2)),
	})
	return cn, errors.Join(errs...)
}

// creditedSoFar sums credited quantities and returned serials per invoice line.
func (s *Service) creditedSoFar(invoiceID string) (map[int]int, map[int][]string) {
	qty := map[int]int{}
	serials := map[int][]string{}
	for _, cn := range s.creditNotes {
		if cn.OriginalInvoiceID != invoiceID {
			continue
		}
		for _, l := range cn.Products {
			qty[l.SourceIndex] += l.Quantity
			serials[l.SourceIndex] = append(serials[l.SourceIndex], l.SerialNumbers...)
		}
	}
	return qty, serials
}

// pendingSerials returns up to n sold serials that have not been returned yet.
func pendingSerials(sold, returned []string, n int) []string {
	used := map[string]int{}
	for _, r := range returned {
		used[r]++
	}
	out := make([]string, 0, n)
	for _, sn := range sold {
		if len(out) == n {
			break
		}
		if used[sn] > 0 {
			used[sn]--
			continue
		}
		out = append(out, sn)
	}
	return out
}

func (s *Service) invoiceIndex(id string) int {
	for i := range s.invoices {
		if s.invoices[i].ID == id || s.invoices[i].Number == id {
			return i
		}
	}
	return -1
}

func (s *Service) Invoice(id string) (models.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.invoiceIndex(id)
	if idx < 0 {
		return models.Invoice{}, false
	}
	return s.invoices[idx], true
}

type ListFilter struct {
	Search string
	Status models.InvoiceStatus
	From   time.Time
	To     time.Time
}

func (f ListFilter) matchDate(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

func matchSearch(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ListInvoices returns matching invoices, newest first.
func (s *Service) ListInvoices(f ListFilter) []models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Invoice, 0)
	for _, inv := range s.invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if !f.matchDate(inv.Date) || !matchSearch(f.Search, inv.Number, inv.ClientName, inv.ClientEmail) {
			continue
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// ListCreditNotes returns matching credit notes, newest first.
func (s *Service) ListCreditNotes(f ListFilter) []models.CreditNote {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CreditNote, 0)
	for _, cn := range s.creditNotes {
		if !f.matchDate(cn.Date) {
			continue
		}
		if !matchSearch(f.Search, cn.Number, cn.OriginalInvoiceNumber, cn.ClientName, cn.ClientEmail) {
			continue
		}
		out = append(out, cn)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (s *Service) persist(ctx context.Context, key string) error {
	var v any
	switch key {
	case store.KeyInvoices:
		v = s.invoices
	case store.KeyCreditNotes:
		v = s.creditNotes
	default:
		return nil
	}
	if err := store.SaveJSON(ctx, s.store, key, v); err != nil {
		s.log.Warn("could not persist blob", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, entry models.ActivityEntry) {
	if s.activity == nil {
		return
	}
	if entry.UserID == "" {
		entry.UserID = auth.UserFromContext(ctx)
	}
	if entry.UserID == "" {
		entry.UserID = "current-user"
	}
	s.activity.Record(ctx, entry)
}
