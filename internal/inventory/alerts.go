package inventory

import (
	"context"
	"errors"
	"fmt"

	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"go.uber.org/zap"
)

// Evaluate checks one model against its minimum stock. It returns the alert raised by
// this call, or nil when none was created.
func (s *Service) Evaluate(ctx context.Context, modelID string) (*models.StockAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.modelIndex(modelID)
	if idx < 0 {
		return nil, &UnknownModelError{ModelID: modelID}
	}
	return s.evaluateLocked(ctx, idx)
}

// EvaluateAll runs Evaluate over the whole catalog.
func (s *Service) EvaluateAll(ctx context.Context) ([]models.StockAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		raised []models.StockAlert
		errs   []error
	)
	for idx := range s.catalog {
		a, err := s.evaluateLocked(ctx, idx)
		errs = append(errs, err)
		if a != nil {
			raised = append(raised, *a)
		}
	}
	return raised, errors.Join(errs...)
}

func (s *Service) evaluateLocked(ctx context.Context, idx int) (*models.StockAlert, error) {
	model := s.catalog[idx]
	stock := s.currentStockLocked(model.ID)
	active := s.activeAlertIndex(model.ID)

	if stock > model.MinimumStock {
		if active < 0 || !s.autoClear {
			return nil, nil
		}
		closed := s.now()
		s.alerts[active].IsActive = false
		s.alerts[active].ClosedAt = &closed
		err := s.persist(ctx, store.KeyStockAlerts)

		s.log.Info("stock recovered",
			zap.String("model_id", model.ID),
			zap.Int("current_stock", stock),
			zap.Int("minimum_stock", model.MinimumStock),
		)
		s.record(ctx, models.ActivityEntry{
			EntityType:  "stock_alert",
			EntityID:    s.alerts[active].ID,
			Action:      models.ActivityClear,
			Title:       "Stock recovered",
			Description: fmt.Sprintf("%s is back to %d units (minimum %d)", model.DisplayName(), stock, model.MinimumStock),
		})
		return nil, err
	}

	if active >= 0 {
		return nil, nil
	}

	alert := models.StockAlert{
		ID:            s.newID(),
		LaptopModelID: model.ID,
		CurrentStock:  stock,
		MinimumStock:  model.MinimumStock,
		AlertDate:     s.now(),
		IsActive:      true,
	}
	s.alerts = append(s.alerts, alert)
	err := s.persist(ctx, store.KeyStockAlerts)

	s.log.Warn("low stock",
		zap.String("model_id", model.ID),
		zap.String("model", model.DisplayName()),
		zap.Int("current_stock", stock),
		zap.Int("minimum_stock", model.MinimumStock),
	)
	s.record(ctx, models.ActivityEntry{
		EntityType:  "stock_alert",
		EntityID:    alert.ID,
		Action:      models.ActivityAlert,
		Level:       models.LevelWarning,
		Title:       "Low stock alert",
		Description: fmt.Sprintf("%s has only %d units available", model.DisplayName(), stock),
	})
	return &alert, err
}

func (s *Service) activeAlertIndex(modelID string) int {
	for i := range s.alerts {
		if s.alerts[i].LaptopModelID == modelID && s.alerts[i].IsActive {
			return i
		}
	}
	return -1
}

// Dismiss deactivates an alert. Unknown or already inactive ids are a no-op.
func (s *Service) Dismiss(ctx context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID != alertID || !s.alerts[i].IsActive {
			continue
		}
		closed := s.now()
		s.alerts[i].IsActive = false
		s.alerts[i].ClosedAt = &closed
		err := s.persist(ctx, store.KeyStockAlerts)

		s.record(ctx, models.ActivityEntry{
			EntityType:  "stock_alert",
			EntityID:    alertID,
			Action:      models.ActivityDismiss,
			Title:       "Alert dismissed",
			Description: fmt.Sprintf("Low stock alert for model %s dismissed", s.alerts[i].LaptopModelID),
		})
		return err
	}
	return nil
}

func (s *Service) ActiveAlerts() []models.StockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.StockAlert, 0)
	for _, a := range s.alerts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}

// Alerts returns the full alert history, closed alerts included.
func (s *Service) Alerts() []models.StockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.StockAlert{}, s.alerts...)
}
