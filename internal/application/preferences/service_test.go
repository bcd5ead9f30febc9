package preferences

import (
	"context"
	"testing"

	"canopy-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPreferences(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AutoMatchPreference{}))
	return &Service{DB: db}
}

func TestSetAndGet(t *testing.T) {
	svc := setupPreferences(t)
	caller := uuid.New()

	saved, err := svc.Set(context.Background(), caller, []string{"PRJ-A", "PRJ-B"}, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, caller, saved.CallerID)
	assert.Equal(t, []string{"PRJ-A", "PRJ-B"}, saved.Projects())
	assert.Equal(t, int64(100), saved.MinCreditsPerProject)
	assert.Equal(t, int64(5), saved.MaxFee)

	got, err := svc.Get(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, saved.PreferenceID, got.PreferenceID)
}

func TestSet_OverwritesExisting(t *testing.T) {
	svc := setupPreferences(t)
	caller := uuid.New()

	first, err := svc.Set(context.Background(), caller, []string{"PRJ-A"}, 0, 0)
	require.NoError(t, err)
	second, err := svc.Set(context.Background(), caller, []string{"PRJ-B", "PRJ-C"}, 50, 2)
	require.NoError(t, err)

	assert.Equal(t, first.PreferenceID, second.PreferenceID)

	got, err := svc.Get(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, []string{"PRJ-B", "PRJ-C"}, got.Projects())
	assert.Equal(t, int64(50), got.MinCreditsPerProject)

	var count int64
	svc.DB.Model(&domain.AutoMatchPreference{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSet_Bounds(t *testing.T) {
	svc := setupPreferences(t)
	caller := uuid.New()

	_, err := svc.Set(context.Background(), caller, nil, 0, 0)
	require.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = svc.Set(context.Background(), caller, []string{"PRJ-A", "PRJ-B", "PRJ-C", "PRJ-D", "PRJ-E", "PRJ-F"}, 0, 0)
	require.ErrorIs(t, err, domain.ErrInvalidProject)

	_, err = svc.Set(context.Background(), caller, []string{"PRJ-A"}, -1, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Set(context.Background(), caller, []string{"PRJ-A"}, 0, -1)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestGet_CallerScoped(t *testing.T) {
	svc := setupPreferences(t)
	owner := uuid.New()

	_, err := svc.Set(context.Background(), owner, []string{"PRJ-A"}, 0, 0)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNoPreference)
}
