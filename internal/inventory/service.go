package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"laptop-inventory-backend/internal/auth"
	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExitPolicy int

const (
	// ExitStrict rejects an exit when any unit cannot be matched.
	ExitStrict ExitPolicy = iota
	// ExitPermissive records the movement for every serial and transitions only matched units.
	ExitPermissive
)

const defaultUserID = "current-user"

// ActivityRecorder receives a human readable record of every state change.
type ActivityRecorder interface {
	Record(ctx context.Context, entry models.ActivityEntry)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, models.ActivityEntry) {}

type Option func(*Service)

func WithExitPolicy(p ExitPolicy) Option {
	return func(s *Service) { s.exitPolicy = p }
}

func WithAlertAutoClear(on bool) Option {
	return func(s *Service) { s.autoClear = on }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func WithActivity(r ActivityRecorder) Option {
	return func(s *Service) { s.activity = r }
}

// WithSeedCatalog replaces the built-in catalog used on first run.
func WithSeedCatalog(seed []models.LaptopModel) Option {
	return func(s *Service) { s.seed = seed }
}

// Service owns the catalog, the stock ledger and the alert set of one tenant.
// Every exported method runs under a single mutex; derived views are computed
// from the item set on each call.
type Service struct {
	mu sync.Mutex

	store    store.Store
	log      *zap.Logger
	activity ActivityRecorder

	now        func() time.Time
	newID      func() string
	exitPolicy ExitPolicy
	autoClear  bool
	seed       []models.LaptopModel

	catalog   []models.LaptopModel
	items     []models.InventoryItem
	movements []models.StockMovement
	alerts    []models.StockAlert
}

// New loads state from st, seeding the built-in catalog and its minimum stock on first run.
// Read failures are returned because continuing would overwrite unread data; write
// failures while seeding are logged and the service runs in memory.
func New(ctx context.Context, st store.Store, log *zap.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		store:     st,
		log:       log,
		activity:  nopRecorder{},
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		autoClear: true,
		seed:      DefaultCatalog(),
	}
	for _, opt := range opts {
		opt(s)
	}

	modelsFound, err := store.LoadJSON(ctx, st, store.KeyLaptopModels, &s.catalog)
	if err != nil {
		return nil, err
	}
	itemsFound, err := store.LoadJSON(ctx, st, store.KeyInventory, &s.items)
	if err != nil {
		return nil, err
	}
	if _, err := store.LoadJSON(ctx, st, store.KeyStockMovements, &s.movements); err != nil {
		return nil, err
	}
	if _, err := store.LoadJSON(ctx, st, store.KeyStockAlerts, &s.alerts); err != nil {
		return nil, err
	}

	var seedErr error
	if !modelsFound {
		s.catalog = append([]models.LaptopModel(nil), s.seed...)
		seedErr = errors.Join(seedErr, s.persist(ctx, store.KeyLaptopModels))
		if !itemsFound {
			s.items = SeedInventory(s.catalog, s.now())
			seedErr = errors.Join(seedErr, s.persist(ctx, store.KeyInventory))
		}
		log.Info("seeded initial catalog", zap.Int("models", len(s.catalog)), zap.Int("items", len(s.items)))
	}
	if seedErr != nil {
		log.Warn("initial seed kept in memory only", zap.Error(seedErr))
	}

	s.ensureSlices()
	return s, nil
}

func (s *Service) ensureSlices() {
	if s.catalog == nil {
		s.catalog = []models.LaptopModel{}
	}
	if s.items == nil {
		s.items = []models.InventoryItem{}
	}
	if s.movements == nil {
		s.movements = []models.StockMovement{}
	}
	if s.alerts == nil {
		s.alerts = []models.StockAlert{}
	}
}

// persist writes the named collections. Failures are logged and returned as
// PersistenceErrors; in-memory state is kept either way.
func (s *Service) persist(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		var v any
		switch key {
		case store.KeyLaptopModels:
			v = s.catalog
		case store.KeyInventory:
			v = s.items
		case store.KeyStockMovements:
			v = s.movements
		case store.KeyStockAlerts:
			v = s.alerts
		default:
			continue
		}
		if err := store.SaveJSON(ctx, s.store, key, v); err != nil {
			s.log.Warn("could not persist blob", zap.String("key", key), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) record(ctx context.Context, entry models.ActivityEntry) {
	entry.UserID = s.userID(ctx, entry.UserID)
	if entry.Level == "" {
		entry.Level = models.LevelInfo
	}
	s.activity.Record(ctx, entry)
}

// userID resolves the acting user: explicit id, then the request context, then the default.
func (s *Service) userID(ctx context.Context, explicit string) string {
	return firstNonEmpty(explicit, auth.UserFromContext(ctx), defaultUserID)
}

func (s *Service) modelIndex(id string) int {
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			return i
		}
	}
	return -1
}
