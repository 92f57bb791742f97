package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Blob keys. Each holds one JSON array and is read and written independently.
const (
	KeyLaptopModels   = "laptopModels"
	KeyInventory      = "inventory"
	KeyStockMovements = "stockMovements"
	KeyStockAlerts    = "stockAlerts"
	KeyInvoices       = "invoices"
	KeyCreditNotes    = "creditNotes"
	KeyActivityLog    = "activityLog"
)

var ErrNotFound = errors.New("blob not found")

// Store is an opaque named-blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// PersistenceError means the store could not be read or written. In-memory state
// is still valid; the change may not survive a restart.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// LoadJSON decodes the blob under key into dst. found is false when the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, dst any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, &PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return &PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}
