package inventory

import (
	"errors"
	"fmt"
	"strings"

	"laptop-inventory-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type UnknownModelError struct {
	ModelID string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown laptop model %q", e.ModelID)
}

// InsufficientStockError is returned when an exit names more units than can be matched
// to available or consignment items. Nothing is changed when it is returned.
type InsufficientStockError struct {
	ModelID   string
	Requested int
	Available int
	Unmatched []string
}

func (e *InsufficientStockError) Error() string {
	msg := fmt.Sprintf("insufficient stock for model %q: requested %d, available %d", e.ModelID, e.Requested, e.Available)
	if named := nonEmpty(e.Unmatched); len(named) > 0 {
		msg += "; no available unit for serial(s) " + strings.Join(named, ", ")
	}
	return msg
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

const persistenceWarning = "Changes are applied but could not be saved; they may not survive a restart"

// SplitPersistence separates a non-fatal persistence failure from a real error.
// warning is set when err only carries PersistenceErrors.
func SplitPersistence(err error) (warning string, fatal error) {
	if err == nil {
		return "", nil
	}
	if onlyPersistence(err) {
		return persistenceWarning, nil
	}
	return "", err
}

func onlyPersistence(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !onlyPersistence(e) {
				return false
			}
		}
		return true
	}
	return store.IsPersistenceError(err)
}

// ToHTTPError maps core errors onto fiber errors for the JSON error handler.
func ToHTTPError(err error) error {
	var (
		ve *ValidationError
		ue *UnknownModelError
		ie *InsufficientStockError
	)
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Error())
	case errors.As(err, &ue):
		return fiber.NewError(fiber.StatusNotFound, ue.Error())
	case errors.As(err, &ie):
		return fiber.NewError(fiber.StatusConflict, ie.Error())
	}
	return err
}
