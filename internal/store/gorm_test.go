package store

import (
	"context"
	"os"
	"testing"

	"laptop-inventory-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Runs against a real Postgres when TEST_DATABASE_DSN is set.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Blob{}))
	return db
}

func TestGormStore(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(openTestDB(t))
	key := "test-" + uuid.NewString()[:8]
	t.Cleanup(func() { _ = s.Remove(ctx, key) })

	tests := []struct {
		name  string
		value string
	}{
		{"insert", `[{"id":"1"}]`},
		{"overwrite", `[{"id":"1"},{"id":"2"}]`},
		{"empty array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, key, []byte(tt.value)))
			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, tt.value, string(got))
		})
	}

	var rows int64
	require.NoError(t, s.db.Model(&models.Blob{}).Where("key = ?", key).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	require.NoError(t, s.Remove(ctx, key))
	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "missing-"+key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreThroughSaveJSON(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(openTestDB(t))
	key := "test-" + uuid.NewString()[:8]
	t.Cleanup(func() { _ = s.Remove(ctx, key) })

	want := []row{{ID: "a", Name: "Latitude"}}
	require.NoError(t, SaveJSON(ctx, s, key, want))

	var got []row
	found, err := LoadJSON(ctx, s, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}
