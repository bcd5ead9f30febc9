package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchHistoryEntry is an append-only audit row, one per (match, project
// occurrence). No update or delete path exists.
type MatchHistoryEntry struct {
	EntryID   uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	MatchID   uuid.UUID `gorm:"column:match_id;type:uuid;not null;index" json:"match_id"`
	EmitterID string    `gorm:"column:emitter_id;type:varchar(64);not null;index" json:"emitter_id"`
	ProjectID string    `gorm:"column:project_id;type:varchar(64);not null" json:"project_id"`
	Credits   int64     `gorm:"column:credits;not null" json:"credits"`
	Clock     int64     `gorm:"column:clock;not null" json:"clock"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (MatchHistoryEntry) TableName() string {
	return "MatchHistory"
}

func (e *MatchHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	return nil
}
