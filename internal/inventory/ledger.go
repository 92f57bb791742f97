package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"
)

const defaultLocation = "Principal"

type EntryRequest struct {
	ModelID       string                `json:"laptopModelId"`
	SerialNumbers []string              `json:"serialNumbers"`
	Reason        models.MovementReason `json:"reason"`
	Reference     string                `json:"reference"`
	Notes         string                `json:"notes"`
	Location      string                `json:"location"`
	UserID        string                `json:"-"`
}

type ExitRequest struct {
	ModelID       string                `json:"laptopModelId"`
	SerialNumbers []string              `json:"serialNumbers"`
	Reason        models.MovementReason `json:"reason"`
	Reference     string                `json:"reference"`
	Notes         string                `json:"notes"`
	UserID        string                `json:"-"`
}

// RecordEntry creates one item and one entry movement per serial number, then
// re-evaluates the model's alert. Empty serial numbers are kept as unserialized units.
func (s *Service) RecordEntry(ctx context.Context, req EntryRequest) error {
	if !req.Reason.AllowedFor(models.MovementEntry) {
		return &ValidationError{Field: "reason", Reason: fmt.Sprintf("%q is not an entry reason", req.Reason)}
	}
	if len(req.SerialNumbers) == 0 {
		return &ValidationError{Field: "serialNumbers", Reason: "at least one unit is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.modelIndex(req.ModelID)
	if idx < 0 {
		return &UnknownModelError{ModelID: req.ModelID}
	}
	model := s.catalog[idx]

	location := firstNonEmpty(req.Location, defaultLocation)
	now := s.now()
	for _, raw := range req.SerialNumbers {
		serial := strings.TrimSpace(raw)
		s.items = append(s.items, models.InventoryItem{
			ID:            s.newID(),
			LaptopModelID: model.ID,
			SerialNumber:  serial,
			Status:        req.Reason.EntryStatus(),
			DateAdded:     now,
			Location:      location,
		})
		s.movements = append(s.movements, models.StockMovement{
			ID:            s.newID(),
			LaptopModelID: model.ID,
			SerialNumber:  serial,
			Type:          models.MovementEntry,
			Reason:        req.Reason,
			Quantity:      1,
			Date:          now,
			Reference:     req.Reference,
			Notes:         req.Notes,
			UserID:        s.userID(ctx, req.UserID),
		})
	}
	errs := []error{s.persist(ctx, store.KeyInventory, store.KeyStockMovements)}

	s.record(ctx, models.ActivityEntry{
		UserID:      req.UserID,
		EntityType:  "stock",
		EntityID:    model.ID,
		Action:      models.ActivityStockEntry,
		Title:       "Stock entry recorded",
		Description: fmt.Sprintf("%d unit(s) of %s added to inventory (%s)", len(req.SerialNumbers), model.DisplayName(), req.Reason),
	})

	_, err := s.evaluateLocked(ctx, idx)
	errs = append(errs, err)
	return errors.Join(errs...)
}

// RecordExit removes the named units from stock. See RecordExits.
func (s *Service) RecordExit(ctx context.Context, req ExitRequest) error {
	return s.RecordExits(ctx, []ExitRequest{req})
}

// RecordExits applies several exits as one unit. Named serials match the most recent
// in-stock item of the model with that serial; empty serials take the oldest
// unmatched in-stock item. Under ExitStrict an unmatched unit fails the whole batch
// with InsufficientStockError before anything changes.
func (s *Service) RecordExits(ctx context.Context, reqs []ExitRequest) error {
	for _, req := range reqs {
		if !req.Reason.AllowedFor(models.MovementExit) {
			return &ValidationError{Field: "reason", Reason: fmt.Sprintf("%q is not an exit reason", req.Reason)}
		}
		if len(req.SerialNumbers) == 0 {
			return &ValidationError{Field: "serialNumbers", Reason: "at least one unit is required"}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	modelIdx := make([]int, len(reqs))
	for i, req := range reqs {
		modelIdx[i] = s.modelIndex(req.ModelID)
		if modelIdx[i] < 0 {
			return &UnknownModelError{ModelID: req.ModelID}
		}
	}

	claimed := make(map[int]bool)
	plans := make([][]int, len(reqs))
	for i, req := range reqs {
		available := s.currentStockLocked(req.ModelID) - claimedFor(s.items, claimed, req.ModelID)
		plans[i] = s.matchExit(req.ModelID, req.SerialNumbers, claimed)
		if s.exitPolicy != ExitStrict {
			continue
		}
		var unmatched []string
		for j, itemIdx := range plans[i] {
			if itemIdx < 0 {
				unmatched = append(unmatched, strings.TrimSpace(req.SerialNumbers[j]))
			}
		}
		if len(unmatched) > 0 {
			return &InsufficientStockError{
				ModelID:   req.ModelID,
				Requested: len(req.SerialNumbers),
				Available: available,
				Unmatched: unmatched,
			}
		}
	}

	now := s.now()
	for i, req := range reqs {
		for j, raw := range req.SerialNumbers {
			serial := strings.TrimSpace(raw)
			if itemIdx := plans[i][j]; itemIdx >= 0 {
				item := &s.items[itemIdx]
				item.Status = req.Reason.ExitStatus()
				if req.Reference != "" {
					item.InvoiceID = req.Reference
				}
				serial = item.SerialNumber
			}
			s.movements = append(s.movements, models.StockMovement{
				ID:            s.newID(),
				LaptopModelID: req.ModelID,
				SerialNumber:  serial,
				Type:          models.MovementExit,
				Reason:        req.Reason,
				Quantity:      1,
				Date:          now,
				Reference:     req.Reference,
				Notes:         req.Notes,
				UserID:        s.userID(ctx, req.UserID),
			})
		}
	}
	errs := []error{s.persist(ctx, store.KeyInventory, store.KeyStockMovements)}

	evaluated := make(map[int]bool)
	for i, req := range reqs {
		model := s.catalog[modelIdx[i]]
		s.record(ctx, models.ActivityEntry{
			UserID:      req.UserID,
			EntityType:  "stock",
			EntityID:    model.ID,
			Action:      models.ActivityStockExit,
			Title:       "Stock exit recorded",
			Description: fmt.Sprintf("%d unit(s) of %s removed from inventory (%s)", len(req.SerialNumbers), model.DisplayName(), req.Reason),
		})
		if evaluated[modelIdx[i]] {
			continue
		}
		evaluated[modelIdx[i]] = true
		_, err := s.evaluateLocked(ctx, modelIdx[i])
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// matchExit returns, per serial, the index of the item it consumes or -1.
// Named serials are matched first so a blank cannot take a unit named later in the batch.
func (s *Service) matchExit(modelID string, serials []string, claimed map[int]bool) []int {
	plan := make([]int, len(serials))
	for j := range plan {
		plan[j] = -1
	}

	for j, raw := range serials {
		serial := strings.TrimSpace(raw)
		if serial == "" {
			continue
		}
		for k := len(s.items) - 1; k >= 0; k-- {
			it := s.items[k]
			if !claimed[k] && it.LaptopModelID == modelID && it.SerialNumber == serial && it.Status.InStock() {
				plan[j] = k
				claimed[k] = true
				break
			}
		}
	}

	for j, raw := range serials {
		if strings.TrimSpace(raw) != "" {
			continue
		}
		for k := range s.items {
			it := s.items[k]
			if !claimed[k] && it.LaptopModelID == modelID && it.Status.InStock() {
				plan[j] = k
				claimed[k] = true
				break
			}
		}
	}
	return plan
}

func claimedFor(items []models.InventoryItem, claimed map[int]bool, modelID string) int {
	n := 0
	for k := range claimed {
		if items[k].LaptopModelID == modelID {
			n++
		}
	}
	return n
}

// CurrentItems returns the items of one model, or every item when modelID is empty.
func (s *Service) CurrentItems(modelID string) []models.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.InventoryItem, 0)
	for _, it := range s.items {
		if modelID == "" || it.LaptopModelID == modelID {
			out = append(out, it)
		}
	}
	return out
}

// ItemsForReference lists the items of a model whose invoice id is ref.
func (s *Service) ItemsForReference(modelID, ref string) []models.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.InventoryItem, 0)
	for _, it := range s.items {
		if it.LaptopModelID == modelID && ref != "" && it.InvoiceID == ref {
			out = append(out, it)
		}
	}
	return out
}

type MovementFilter struct {
	ModelID string
	Type    models.MovementType
	Reason  models.MovementReason
}

// Movements lists ledger rows matching f, newest first.
func (s *Service) Movements(f MovementFilter) []models.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.StockMovement, 0)
	for _, m := range s.movements {
		if f.ModelID != "" && m.LaptopModelID != f.ModelID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Reason != "" && m.Reason != f.Reason {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
