package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PendingProposal is a time-boxed, unapproved candidate match. One per
// emitter, last write wins. SnapshotCredits is informational only and is
// not re-validated at approval time.
type PendingProposal struct {
	ProposalID      uuid.UUID      `gorm:"column:proposal_id;type:uuid;primaryKey" json:"proposal_id"`
	EmitterID       string         `gorm:"column:emitter_id;type:varchar(64);not null;uniqueIndex" json:"emitter_id"`
	ProjectIDs      datatypes.JSON `gorm:"column:project_ids;not null" json:"project_ids"`
	SnapshotCredits int64          `gorm:"column:snapshot_credits;not null;default:0" json:"snapshot_credits"`
	ProposerID      uuid.UUID      `gorm:"column:proposer_id;type:uuid;not null" json:"proposer_id"`
	ExpiresAtClock  int64          `gorm:"column:expires_at_clock;not null" json:"expires_at_clock"`
	CreatedAt       time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (PendingProposal) TableName() string {
	return "PendingProposals"
}

func (p *PendingProposal) BeforeCreate(tx *gorm.DB) error {
	if p.ProposalID == uuid.Nil {
		p.ProposalID = uuid.New()
	}
	return nil
}

// Projects decodes the stored project-ID list.
func (p *PendingProposal) Projects() []string {
	var ids []string
	_ = json.Unmarshal(p.ProjectIDs, &ids)
	return ids
}
