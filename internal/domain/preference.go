package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AutoMatchPreference is a caller's saved project list for automatic
// matching. One row per caller, overwritten on update. Consulted only at
// auto-match time; staleness is expected.
type AutoMatchPreference struct {
	PreferenceID         uuid.UUID      `gorm:"column:preference_id;type:uuid;primaryKey" json:"preference_id"`
	CallerID             uuid.UUID      `gorm:"column:caller_id;type:uuid;not null;uniqueIndex" json:"caller_id"`
	ProjectIDs           datatypes.JSON `gorm:"column:project_ids;not null" json:"project_ids"`
	MinCreditsPerProject int64          `gorm:"column:min_credits_per_project;not null;default:0" json:"min_credits_per_project"`
	MaxFee               int64          `gorm:"column:max_fee;not null;default:0" json:"max_fee"`
	CreatedAt            time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt            time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (AutoMatchPreference) TableName() string {
	return "AutoMatchPreferences"
}

func (p *AutoMatchPreference) BeforeCreate(tx *gorm.DB) error {
	if p.PreferenceID == uuid.Nil {
		p.PreferenceID = uuid.New()
	}
	return nil
}

// Projects decodes the stored project-ID list.
func (p *AutoMatchPreference) Projects() []string {
	var ids []string
	_ = json.Unmarshal(p.ProjectIDs, &ids)
	return ids
}
