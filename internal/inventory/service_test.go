package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"laptop-inventory-backend/internal/models"
	"laptop-inventory-backend/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testCatalog() []models.LaptopModel {
	return []models.LaptopModel{
		{
			ID: "m-1", Brand: "Lenovo", Model: "ThinkPad E14", Category: models.CategoryOffice,
			Processor: "Intel Core i5", Price: decimal.NewFromInt(800), Cost: decimal.NewFromInt(500),
			MinimumStock: 5, Location: "Principal",
		},
		{
			ID: "m-2", Brand: "ASUS", Model: "TUF A15", Category: models.CategoryGamer,
			Processor: "AMD Ryzen 7", Price: decimal.NewFromInt(1200), Cost: decimal.NewFromInt(900),
			MinimumStock: 1, Location: "Bodega",
		},
	}
}

// tickingClock advances one minute per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := testEpoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

type recorder struct {
	mu      sync.Mutex
	entries []models.ActivityEntry
}

func (r *recorder) Record(_ context.Context, e models.ActivityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recorder) actions() []models.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ActivityAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestService(t *testing.T, st store.Store, opts ...Option) *Service {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	base := []Option{
		WithSeedCatalog(testCatalog()),
		WithClock(tickingClock()),
		WithIDGenerator(sequentialIDs()),
	}
	svc, err := New(context.Background(), st, zap.NewNop(), append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestNewSeedsOnFirstRun(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newTestService(t, st)

	items := svc.CurrentItems("m-1")
	require.Len(t, items, 5)
	for i, it := range items {
		want := fmt.Sprintf("m-1-SN%d", i+1)
		assert.Equal(t, want, it.ID)
		assert.Equal(t, want, it.SerialNumber)
		assert.Equal(t, models.ItemAvailable, it.Status)
		assert.Equal(t, "Principal", it.Location)
	}
	assert.Len(t, svc.CurrentItems(""), 6)

	var persisted []models.LaptopModel
	found, err := store.LoadJSON(context.Background(), st, store.KeyLaptopModels, &persisted)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, persisted, 2)
}

func TestNewDoesNotReseed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(t, st)

	_, err := svc.AddModel(ctx, ModelSpec{
		Brand: "Dell", Model: "Vostro", Category: models.CategoryOffice,
		Price: decimal.NewFromInt(700), Cost: decimal.NewFromInt(450),
	})
	require.NoError(t, err)
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-2", SerialNumbers: []string{"m-2-SN1"}, Reason: models.ReasonSale}))

	reloaded := newTestService(t, st)
	assert.Len(t, reloaded.ListModels(), 3)
	assert.Equal(t, 0, reloaded.CurrentStock("m-2"))
	assert.Len(t, reloaded.Movements(MovementFilter{}), 1)
}

func TestNewKeepsExistingInventoryWithoutCatalog(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, store.SaveJSON(ctx, st, store.KeyInventory, []models.InventoryItem{
		{ID: "x", LaptopModelID: "m-1", SerialNumber: "ABC", Status: models.ItemAvailable},
	}))

	svc := newTestService(t, st)
	assert.Len(t, svc.ListModels(), 2)
	assert.Equal(t, 1, svc.CurrentStock("m-1"))
	assert.Equal(t, 0, svc.CurrentStock("m-2"))
}

func TestNewFailsOnUnreadableBlob(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyStockAlerts, []byte(`{broken`)))

	_, err := New(ctx, st, zap.NewNop())
	require.Error(t, err)
	assert.True(t, store.IsPersistenceError(err))
}

func TestSeededModelAtMinimumRaisesAlert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	rows := svc.InventoryByModel(StockFilter{})
	require.Len(t, rows, 2)
	m := rows[0]
	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, 5, m.CurrentStock)
	assert.True(t, m.TotalValue.Equal(decimal.NewFromInt(2500)), m.TotalValue.String())
	assert.True(t, m.ProjectedSaleValue.Equal(decimal.NewFromInt(4000)), m.ProjectedSaleValue.String())
	assert.True(t, m.LowStock)

	alert, err := svc.Evaluate(ctx, "m-1")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, 5, alert.CurrentStock)
	assert.Equal(t, 5, alert.MinimumStock)
	assert.True(t, alert.IsActive)
}

func TestExitEntryAndDismissLifecycle(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	svc := newTestService(t, nil, WithActivity(rec))

	err := svc.RecordExit(ctx, ExitRequest{
		ModelID:       "m-1",
		SerialNumbers: []string{"m-1-SN1", "m-1-SN2", "m-1-SN3"},
		Reason:        models.ReasonSale,
		Reference:     "INV-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.CurrentStock("m-1"))

	active := svc.ActiveAlerts()
	require.Len(t, active, 1)
	assert.Equal(t, "m-1", active[0].LaptopModelID)
	assert.Equal(t, 2, active[0].CurrentStock)
	assert.Equal(t, 5, active[0].MinimumStock)

	again, err := svc.Evaluate(ctx, "m-1")
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, svc.ActiveAlerts(), 1)

	serials := make([]string, 10)
	for i := range serials {
		serials[i] = fmt.Sprintf("NEW-%d", i)
	}
	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-1", SerialNumbers: serials, Reason: models.ReasonPurchase}))
	assert.Equal(t, 12, svc.CurrentStock("m-1"))
	assert.Empty(t, svc.ActiveAlerts())

	require.NoError(t, svc.Dismiss(ctx, active[0].ID))
	assert.Empty(t, svc.ActiveAlerts())

	history := svc.Alerts()
	require.Len(t, history, 1)
	assert.False(t, history[0].IsActive)
	assert.NotNil(t, history[0].ClosedAt)

	assert.Equal(t, []models.ActivityAction{
		models.ActivityStockExit, models.ActivityAlert, models.ActivityStockEntry, models.ActivityClear,
	}, rec.actions())
}

func TestDismissWithoutAutoClear(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, WithAlertAutoClear(false))

	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{"", ""}, Reason: models.ReasonSale}))
	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-1", SerialNumbers: []string{"A", "B", "C", "D"}, Reason: models.ReasonPurchase}))
	assert.Equal(t, 7, svc.CurrentStock("m-1"))

	active := svc.ActiveAlerts()
	require.Len(t, active, 1)

	require.NoError(t, svc.Dismiss(ctx, active[0].ID))
	assert.Empty(t, svc.ActiveAlerts())
	require.NoError(t, svc.Dismiss(ctx, active[0].ID))
	require.NoError(t, svc.Dismiss(ctx, "no-such-alert"))
	assert.Empty(t, svc.ActiveAlerts())
	assert.Len(t, svc.Alerts(), 1)
}

func TestAtMostOneActiveAlertPerModel(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil, WithAlertAutoClear(false))

	for i := 0; i < 5; i++ {
		_, err := svc.EvaluateAll(ctx)
		require.NoError(t, err)
		require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{""}, Reason: models.ReasonSale}))
	}

	perModel := map[string]int{}
	for _, a := range svc.ActiveAlerts() {
		perModel[a.LaptopModelID]++
	}
	for id, n := range perModel {
		assert.Equal(t, 1, n, id)
	}
	assert.Equal(t, 1, perModel["m-1"])
	assert.Equal(t, 1, perModel["m-2"])
}

func TestStrictExitShortfallChangesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	before := svc.CurrentItems("")
	err := svc.RecordExit(ctx, ExitRequest{ModelID: "m-2", SerialNumbers: []string{"", "", ""}, Reason: models.ReasonSale})

	var ie *InsufficientStockError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "m-2", ie.ModelID)
	assert.Equal(t, 3, ie.Requested)
	assert.Equal(t, 1, ie.Available)
	assert.Equal(t, before, svc.CurrentItems(""))
	assert.Empty(t, svc.Movements(MovementFilter{}))
	assert.Empty(t, svc.ActiveAlerts())
}

func TestStrictExitUnknownSerial(t *testing.T) {
	svc := newTestService(t, nil)

	err := svc.RecordExit(context.Background(), ExitRequest{
		ModelID:       "m-1",
		SerialNumbers: []string{"m-1-SN1", "NOPE"},
		Reason:        models.ReasonSale,
	})
	var ie *InsufficientStockError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []string{"NOPE"}, ie.Unmatched)
	assert.Contains(t, err.Error(), "NOPE")
	assert.Equal(t, 5, svc.CurrentStock("m-1"))
}

func TestStrictBatchIsAtomic(t *testing.T) {
	svc := newTestService(t, nil)

	err := svc.RecordExits(context.Background(), []ExitRequest{
		{ModelID: "m-1", SerialNumbers: []string{"", ""}, Reason: models.ReasonSale},
		{ModelID: "m-2", SerialNumbers: []string{"", ""}, Reason: models.ReasonSale},
	})
	require.Error(t, err)
	assert.Equal(t, 5, svc.CurrentStock("m-1"))
	assert.Equal(t, 1, svc.CurrentStock("m-2"))
}

func TestPermissiveExitRecordsEveryUnit(t *testing.T) {
	svc := newTestService(t, nil, WithExitPolicy(ExitPermissive))

	err := svc.RecordExit(context.Background(), ExitRequest{
		ModelID:       "m-2",
		SerialNumbers: []string{"", "GHOST", ""},
		Reason:        models.ReasonPromotion,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, svc.CurrentStock("m-2"))

	moves := svc.Movements(MovementFilter{ModelID: "m-2"})
	require.Len(t, moves, 3)
	serials := []string{moves[0].SerialNumber, moves[1].SerialNumber, moves[2].SerialNumber}
	assert.ElementsMatch(t, []string{"m-2-SN1", "GHOST", ""}, serials)
}

func TestBlankSerialsConsumeOldestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	require.NoError(t, svc.RecordExit(ctx, ExitRequest{
		ModelID:       "m-1",
		SerialNumbers: []string{"", "m-1-SN1"},
		Reason:        models.ReasonSale,
	}))

	status := map[string]models.ItemStatus{}
	for _, it := range svc.CurrentItems("m-1") {
		status[it.SerialNumber] = it.Status
	}
	assert.Equal(t, models.ItemSold, status["m-1-SN1"])
	assert.Equal(t, models.ItemSold, status["m-1-SN2"])
	assert.Equal(t, models.ItemAvailable, status["m-1-SN3"])

	var got []string
	for _, m := range svc.Movements(MovementFilter{ModelID: "m-1", Type: models.MovementExit}) {
		got = append(got, m.SerialNumber)
	}
	assert.ElementsMatch(t, []string{"m-1-SN1", "m-1-SN2"}, got)
}

func TestNamedSerialMatchesMostRecentUnit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-2", SerialNumbers: []string{"m-2-SN1"}, Reason: models.ReasonReturn}))
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-2", SerialNumbers: []string{"m-2-SN1"}, Reason: models.ReasonSale}))

	items := svc.CurrentItems("m-2")
	require.Len(t, items, 2)
	assert.Equal(t, models.ItemAvailable, items[0].Status)
	assert.Equal(t, models.ItemSold, items[1].Status)
}

func TestExitReasonsSetStatusAndReference(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{"m-1-SN1"}, Reason: models.ReasonSale, Reference: "INV-9"}))
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{"m-1-SN2"}, Reason: models.ReasonSupplierReturn}))
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{"m-1-SN3"}, Reason: models.ReasonAdjustment}))

	items := svc.CurrentItems("m-1")
	assert.Equal(t, models.ItemSold, items[0].Status)
	assert.Equal(t, "INV-9", items[0].InvoiceID)
	assert.Equal(t, models.ItemReturned, items[1].Status)
	assert.Equal(t, models.ItemDamaged, items[2].Status)
	assert.Equal(t, 2, svc.CurrentStock("m-1"))

	sold := svc.ItemsForReference("m-1", "INV-9")
	require.Len(t, sold, 1)
	assert.Equal(t, "m-1-SN1", sold[0].SerialNumber)
}

func TestConsignmentCountsAsStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-2", SerialNumbers: []string{"C1", ""}, Reason: models.ReasonConsignment}))
	assert.Equal(t, 3, svc.CurrentStock("m-2"))

	items := svc.CurrentItems("m-2")
	assert.Equal(t, models.ItemConsignment, items[1].Status)
	assert.Equal(t, models.ItemConsignment, items[2].Status)
	assert.Equal(t, "", items[2].SerialNumber)
	assert.Equal(t, defaultLocation, items[2].Location)

	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-2", SerialNumbers: []string{"C1"}, Reason: models.ReasonSale}))
	assert.Equal(t, 2, svc.CurrentStock("m-2"))
}

func TestLedgerValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	var ve *ValidationError
	err := svc.RecordEntry(ctx, EntryRequest{ModelID: "m-1", SerialNumbers: []string{"A"}, Reason: models.ReasonSale})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reason", ve.Field)

	err = svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{"m-1-SN1"}, Reason: models.ReasonPurchase})
	require.ErrorAs(t, err, &ve)

	err = svc.RecordEntry(ctx, EntryRequest{ModelID: "m-1", Reason: models.ReasonPurchase})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "serialNumbers", ve.Field)

	var ue *UnknownModelError
	err = svc.RecordEntry(ctx, EntryRequest{ModelID: "ghost", SerialNumbers: []string{"A"}, Reason: models.ReasonPurchase})
	require.ErrorAs(t, err, &ue)
	err = svc.RecordExit(ctx, ExitRequest{ModelID: "ghost", SerialNumbers: []string{"A"}, Reason: models.ReasonSale})
	require.ErrorAs(t, err, &ue)
	_, err = svc.Evaluate(ctx, "ghost")
	require.ErrorAs(t, err, &ue)

	assert.Equal(t, 0, svc.CurrentStock("ghost"))
	assert.Empty(t, svc.Movements(MovementFilter{}))
}

func TestAdjustmentAllowedBothWays(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-2", SerialNumbers: []string{"ADJ"}, Reason: models.ReasonAdjustment}))
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-2", SerialNumbers: []string{"ADJ"}, Reason: models.ReasonAdjustment}))
	assert.Equal(t, 1, svc.CurrentStock("m-2"))
}

func TestMovementsNewestFirstAndFiltered(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-1", SerialNumbers: []string{"A"}, Reason: models.ReasonPurchase, UserID: "admin"}))
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-2", SerialNumbers: []string{""}, Reason: models.ReasonSale, Notes: "walk-in"}))

	all := svc.Movements(MovementFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, models.MovementExit, all[0].Type)
	assert.Equal(t, "walk-in", all[0].Notes)
	assert.Equal(t, defaultUserID, all[0].UserID)
	assert.Equal(t, "admin", all[1].UserID)
	assert.Equal(t, 1, all[1].Quantity)

	assert.Len(t, svc.Movements(MovementFilter{Type: models.MovementEntry}), 1)
	assert.Len(t, svc.Movements(MovementFilter{Reason: models.ReasonSale}), 1)
	assert.Empty(t, svc.Movements(MovementFilter{ModelID: "m-1", Reason: models.ReasonSale}))
}

func TestValuationsTrackStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	check := func() {
		for _, row := range svc.InventoryByModel(StockFilter{}) {
			qty := decimal.NewFromInt(int64(row.CurrentStock))
			assert.True(t, row.TotalValue.Equal(qty.Mul(row.Cost)), row.ID)
			assert.True(t, row.ProjectedSaleValue.Equal(qty.Mul(row.Price)), row.ID)
			assert.Equal(t, svc.CurrentStock(row.ID), row.CurrentStock)
		}
	}

	check()
	require.NoError(t, svc.RecordEntry(ctx, EntryRequest{ModelID: "m-2", SerialNumbers: []string{"A", "B"}, Reason: models.ReasonPurchase}))
	check()
	require.NoError(t, svc.RecordExit(ctx, ExitRequest{ModelID: "m-1", SerialNumbers: []string{"", ""}, Reason: models.ReasonSale}))
	check()
	price := decimal.RequireFromString("849.99")
	require.NoError(t, svc.UpdateModel(ctx, "m-1", ModelUpdate{Price: &price}))
	check()
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStore) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestWriteFailureKeepsStateAndWarns(t *testing.T) {
	ctx := context.Background()
	st := &mockStore{}
	st.On("Get", mock.Anything, mock.Anything).Return(nil, store.ErrNotFound)
	st.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := newTestService(t, st)
	assert.Equal(t, 5, svc.CurrentStock("m-1"))

	err := svc.RecordEntry(ctx, EntryRequest{ModelID: "m-1", SerialNumbers: []string{"A"}, Reason: models.ReasonPurchase})
	require.Error(t, err)
	assert.True(t, store.IsPersistenceError(err))
	assert.Equal(t, 6, svc.CurrentStock("m-1"))

	warning, fatal := SplitPersistence(err)
	assert.NoError(t, fatal)
	assert.NotEmpty(t, warning)

	st.AssertCalled(t, "Set", mock.Anything, store.KeyInventory, mock.Anything)
	st.AssertCalled(t, "Set", mock.Anything, store.KeyStockMovements, mock.Anything)
}

func TestReadFailureIsFatal(t *testing.T) {
	st := &mockStore{}
	st.On("Get", mock.Anything, store.KeyLaptopModels).Return(nil, errors.New("connection refused"))

	_, err := New(context.Background(), st, zap.NewNop())
	require.Error(t, err)
	assert.True(t, store.IsPersistenceError(err))
	st.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
