package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"github.com/shopspring/decimal"
)

// ModelSpec holds every catalog field except the id.
type ModelSpec struct {
	Brand           string                `json:"brand"`
	Model           string                `json:"model"`
	Category        models.LaptopCategory `json:"category"`
	Processor       string                `json:"processor"`
	RAM             string                `json:"ram"`
	Storage         string                `json:"storage"`
	Screen          string                `json:"screen"`
	OperatingSystem string                `json:"operatingSystem"`
	Price           decimal.Decimal       `json:"price"`
	Cost            decimal.Decimal       `json:"cost"`
	MinimumStock    int                   `json:"minimumStock"`
	Location        string                `json:"location"`
}

// ModelUpdate carries the fields to merge; nil fields are left unchanged.
type ModelUpdate struct {
	Brand           *string                `json:"brand"`
	Model           *string                `json:"model"`
	Category        *models.LaptopCategory `json:"category"`
	Processor       *string                `json:"processor"`
	RAM             *string                `json:"ram"`
	Storage         *string                `json:"storage"`
	Screen          *string                `json:"screen"`
	OperatingSystem *string                `json:"operatingSystem"`
	Price           *decimal.Decimal       `json:"price"`
	Cost            *decimal.Decimal       `json:"cost"`
	MinimumStock    *int                   `json:"minimumStock"`
	Location        *string                `json:"location"`
}

func validateModel(m models.LaptopModel) error {
	if strings.TrimSpace(m.Brand) == "" {
		return &ValidationError{Field: "brand", Reason: "required"}
	}
	if strings.TrimSpace(m.Model) == "" {
		return &ValidationError{Field: "model", Reason: "required"}
	}
	if !m.Category.Valid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not one of gamer, office, ultrabook", m.Category)}
	}
	if m.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if m.Cost.IsNegative() {
		return &ValidationError{Field: "cost", Reason: "cannot be negative"}
	}
	if m.MinimumStock < 0 {
		return &ValidationError{Field: "minimumStock", Reason: "cannot be negative"}
	}
	return nil
}

func normalizeCategory(c models.LaptopCategory) models.LaptopCategory {
	if parsed, ok := models.ParseLaptopCategory(string(c)); ok {
		return parsed
	}
	return c
}

// AddModel appends a new catalog entry with a fresh id and returns it.
// The returned error may be a PersistenceError, in which case the model exists in memory.
func (s *Service) AddModel(ctx context.Context, spec ModelSpec) (models.LaptopModel, error) {
	m := models.LaptopModel{
		Brand:           strings.TrimSpace(spec.Brand),
		Model:           strings.TrimSpace(spec.Model),
		Category:        normalizeCategory(spec.Category),
		Processor:       spec.Processor,
		RAM:             spec.RAM,
		Storage:         spec.Storage,
		Screen:          spec.Screen,
		OperatingSystem: spec.OperatingSystem,
		Price:           spec.Price,
		Cost:            spec.Cost,
		MinimumStock:    spec.MinimumStock,
		Location:        spec.Location,
	}
	if err := validateModel(m); err != nil {
		return models.LaptopModel{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.newID()
	s.catalog = append(s.catalog, m)
	err := s.persist(ctx, store.KeyLaptopModels)

	s.record(ctx, models.ActivityEntry{
		EntityType:  "laptop_model",
		EntityID:    m.ID,
		Action:      models.ActivityCreate,
		Title:       "Model added",
		Description: fmt.Sprintf("%s added to the catalog", m.DisplayName()),
		AfterData:   snapshot(m),
	})
	return m, err
}

// UpdateModel merges upd into the model with the given id. A changed minimum
// stock re-evaluates the model's alert.
func (s *Service) UpdateModel(ctx context.Context, id string, upd ModelUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.modelIndex(id)
	if idx < 0 {
		return &UnknownModelError{ModelID: id}
	}

	before := s.catalog[idx]
	after := mergeModel(before, upd)
	if err := validateModel(after); err != nil {
		return err
	}

	s.catalog[idx] = after
	errs := []error{s.persist(ctx, store.KeyLaptopModels)}

	s.record(ctx, models.ActivityEntry{
		EntityType:  "laptop_model",
		EntityID:    id,
		Action:      models.ActivityUpdate,
		Title:       "Model updated",
		Description: fmt.Sprintf("%s updated", after.DisplayName()),
		BeforeData:  snapshot(before),
		AfterData:   snapshot(after),
	})

	if before.MinimumStock != after.MinimumStock {
		_, err := s.evaluateLocked(ctx, idx)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func mergeModel(m models.LaptopModel, upd ModelUpdate) models.LaptopModel {
	if upd.Brand != nil {
		m.Brand = strings.TrimSpace(*upd.Brand)
	}
	if upd.Model != nil {
		m.Model = strings.TrimSpace(*upd.Model)
	}
	if upd.Category != nil {
		m.Category = normalizeCategory(*upd.Category)
	}
	if upd.Processor != nil {
		m.Processor = *upd.Processor
	}
	if upd.RAM != nil {
		m.RAM = *upd.RAM
	}
	if upd.Storage != nil {
		m.Storage = *upd.Storage
	}
	if upd.Screen != nil {
		m.Screen = *upd.Screen
	}
	if upd.OperatingSystem != nil {
		m.OperatingSystem = *upd.OperatingSystem
	}
	if upd.Price != nil {
		m.Price = *upd.Price
	}
	if upd.Cost != nil {
		m.Cost = *upd.Cost
	}
	if upd.MinimumStock != nil {
		m.MinimumStock = *upd.MinimumStock
	}
	if upd.Location != nil {
		m.Location = *upd.Location
	}
	return m
}

// ListModels returns the catalog in insertion order.
func (s *Service) ListModels() []models.LaptopModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.LaptopModel{}, s.catalog...)
}

func (s *Service) Model(id string) (models.LaptopModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.modelIndex(id)
	if idx < 0 {
		return models.LaptopModel{}, false
	}
	return s.catalog[idx], true
}

// Brands lists distinct brands in first-seen catalog order.
func (s *Service) Brands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	brands := make([]string, 0)
	for _, m := range s.catalog {
		if !seen[m.Brand] {
			seen[m.Brand] = true
			brands = append(brands, m.Brand)
		}
	}
	return brands
}

func snapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
