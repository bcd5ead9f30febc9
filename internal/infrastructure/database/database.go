package database

import (
	"canopy-backend/internal/config"
	"canopy-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers
// (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all engine models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.MatchRecord{},
		&domain.MatchHistoryEntry{},
		&domain.PendingProposal{},
		&domain.AutoMatchPreference{},
		&domain.SystemSettings{},
	)
}

// EnsureSettings creates the singleton settings row if it does not exist,
// seeded from config. Existing rows are left untouched; runtime mutation
// goes through the governance-gated setters.
func EnsureSettings(db *gorm.DB, cfg *config.Config) (*domain.SystemSettings, error) {
	s, err := domain.LoadSettings(db)
	if err == nil {
		return s, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	ownerID := uuid.Nil
	if cfg.OwnerUserID != "" {
		if parsed, perr := uuid.Parse(cfg.OwnerUserID); perr == nil {
			ownerID = parsed
		}
	}
	seed := &domain.SystemSettings{
		ID:                domain.SettingsRowID,
		OwnerID:           ownerID,
		EmissionSourceURL: cfg.EmissionSourceURL,
		CreditLedgerURL:   cfg.CreditLedgerURL,
		TokenIssuerURL:    cfg.TokenIssuerURL,
		AuthzServiceURL:   cfg.AuthzServiceURL,
		CalculatorURL:     cfg.CalculatorURL,
	}
	if err := db.Create(seed).Error; err != nil {
		return nil, err
	}
	return seed, nil
}
