package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Match modes.
const (
	ModeAuto   = "AUTO"
	ModeManual = "MANUAL"
)

// Bounds enforced by the matching engine.
const (
	MaxProjectsPerMatch   = 10
	MaxPreferenceProjects = 5
	MaxMetadataLen        = 500
)

// MatchRecord is the authoritative record of a finalized match, one per
// emitter. Never deleted; Retired flips false->true exactly once.
type MatchRecord struct {
	MatchID        uuid.UUID      `gorm:"column:match_id;type:uuid;primaryKey" json:"match_id"`
	EmitterID      string         `gorm:"column:emitter_id;type:varchar(64);not null;uniqueIndex" json:"emitter_id"`
	ProjectIDs     datatypes.JSON `gorm:"column:project_ids;not null" json:"project_ids"`
	TotalCredits   int64          `gorm:"column:total_credits;not null;default:0" json:"total_credits"`
	MatchedAtClock int64          `gorm:"column:matched_at_clock;not null" json:"matched_at_clock"`
	MatcherID      uuid.UUID      `gorm:"column:matcher_id;type:uuid;not null" json:"matcher_id"`
	Mode           string         `gorm:"column:mode;type:varchar(6);not null" json:"mode"`
	Metadata       string         `gorm:"column:metadata;type:varchar(500)" json:"metadata"`
	Retired        bool           `gorm:"column:retired;not null;default:false" json:"retired"`
	CreatedAt      time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (MatchRecord) TableName() string {
	return "MatchRecords"
}

func (m *MatchRecord) BeforeCreate(tx *gorm.DB) error {
	if m.MatchID == uuid.Nil {
		m.MatchID = uuid.New()
	}
	return nil
}

// Projects decodes the stored project-ID list.
func (m *MatchRecord) Projects() []string {
	var ids []string
	_ = json.Unmarshal(m.ProjectIDs, &ids)
	return ids
}

// ProjectList encodes a project-ID slice for a JSON column.
func ProjectList(ids []string) datatypes.JSON {
	b, _ := json.Marshal(ids)
	return datatypes.JSON(b)
}
