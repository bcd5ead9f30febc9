package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettingsRowID is the primary key of the singleton settings row.
const SettingsRowID = 1

// SystemSettings is the single global configuration row: owner, pause flag,
// fee, auto-match threshold, the logical clock, the match counter, and the
// collaborator endpoint references. Mutated only through authorization-gated
// setters; the clock advances once per committed mutating operation.
type SystemSettings struct {
	ID                 uint      `gorm:"column:id;primaryKey" json:"id"`
	OwnerID            uuid.UUID `gorm:"column:owner_id;type:uuid;not null" json:"owner_id"`
	Paused             bool      `gorm:"column:paused;not null;default:false" json:"paused"`
	MatchFee           int64     `gorm:"column:match_fee;not null;default:0" json:"match_fee"`
	AutoMatchThreshold int64     `gorm:"column:auto_match_threshold;not null;default:0" json:"auto_match_threshold"`
	LogicalClock       int64     `gorm:"column:logical_clock;not null;default:0" json:"logical_clock"`
	TotalMatches       int64     `gorm:"column:total_matches;not null;default:0" json:"total_matches"`
	EmissionSourceURL  string    `gorm:"column:emission_source_url" json:"emission_source_url"`
	CreditLedgerURL    string    `gorm:"column:credit_ledger_url" json:"credit_ledger_url"`
	TokenIssuerURL     string    `gorm:"column:token_issuer_url" json:"token_issuer_url"`
	AuthzServiceURL    string    `gorm:"column:authz_service_url" json:"authz_service_url"`
	CalculatorURL      string    `gorm:"column:calculator_url" json:"calculator_url"`
	CreatedAt          time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (SystemSettings) TableName() string {
	return "SystemSettings"
}

// LoadSettings fetches the singleton settings row.
func LoadSettings(db *gorm.DB) (*SystemSettings, error) {
	var s SystemSettings
	if err := db.First(&s, "id = ?", SettingsRowID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
