package proposals

import (
	"context"

	"canopy-backend/internal/application/authz"
	"canopy-backend/internal/application/matching"
	"canopy-backend/internal/collaborators"
	"canopy-backend/internal/domain"
	"canopy-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns PendingProposal writes. Approval promotes a proposal into a
// MatchRecord by delegating to the matching engine.
type Service struct {
	DB       *gorm.DB
	Ledger   collaborators.CreditLedger
	Matching *matching.Service
	Caps     authz.Capability
}

// Propose stages a time-boxed candidate match. A proposal for the same
// emitter is overwritten (last write wins); a finalized match blocks the
// emitter permanently. The credit total is an informational snapshot taken
// now and not re-validated at approval time.
func (s *Service) Propose(ctx context.Context, emitterID string, projectIDs []string, ttl int64, proposerID uuid.UUID) (*domain.PendingProposal, error) {
	if ttl <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if len(projectIDs) == 0 || len(projectIDs) > domain.MaxProjectsPerMatch {
		return nil, domain.ErrInvalidProject
	}

	// The match check, the snapshot reads, and the commit all run under the
	// engine lock so a match cannot settle the emitter mid-propose.
	var proposal *domain.PendingProposal
	err := s.Matching.Sequence(func() error {
		var existing domain.MatchRecord
		err := s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).First(&existing).Error
		if err == nil {
			return domain.ErrAlreadyMatched
		}
		if err != gorm.ErrRecordNotFound {
			return domain.ErrOperationFailed
		}

		var snapshot int64
		for _, pid := range projectIDs {
			balance, err := s.Ledger.AvailableCredits(ctx, pid)
			if err != nil {
				return domain.ErrOperationFailed
			}
			snapshot += balance
		}

		txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			settings, err := domain.LoadSettings(tx)
			if err != nil {
				return err
			}
			settings.LogicalClock++
			if err := tx.Save(settings).Error; err != nil {
				return err
			}
			if err := tx.Where("emitter_id = ?", emitterID).Delete(&domain.PendingProposal{}).Error; err != nil {
				return err
			}
			p := &domain.PendingProposal{
				EmitterID:       emitterID,
				ProjectIDs:      domain.ProjectList(projectIDs),
				SnapshotCredits: snapshot,
				ProposerID:      proposerID,
				ExpiresAtClock:  settings.LogicalClock + ttl,
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			proposal = p
			return nil
		})
		if txErr != nil {
			return domain.ErrOperationFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("emitter_id", emitterID).
		Int64("snapshot_credits", proposal.SnapshotCredits).
		Int64("expires_at_clock", proposal.ExpiresAtClock).
		Msg("Match proposed")

	return proposal, nil
}

// Approve promotes a pending proposal into a finalized match. Only the
// original proposer or the system owner may approve. An expired proposal
// always fails and is left in place; a failed delegated match also retains
// the proposal so approval can be retried before expiry. A successful match
// consumes the proposal inside the match transaction.
func (s *Service) Approve(ctx context.Context, emitterID, metadata string, callerID uuid.UUID) (*domain.MatchRecord, error) {
	var proposal domain.PendingProposal
	if err := s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).First(&proposal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoPendingMatch
		}
		return nil, domain.ErrOperationFailed
	}

	settings, err := domain.LoadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	if settings.LogicalClock > proposal.ExpiresAtClock {
		return nil, domain.ErrNoPendingMatch
	}
	if callerID != proposal.ProposerID && callerID != settings.OwnerID {
		return nil, domain.ErrUnauthorized
	}

	return s.Matching.ManualMatch(ctx, emitterID, proposal.Projects(), metadata, callerID)
}

// Get returns the pending proposal for an emitter, expired or not.
func (s *Service) Get(ctx context.Context, emitterID string) (*domain.PendingProposal, error) {
	var proposal domain.PendingProposal
	if err := s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).First(&proposal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoPendingMatch
		}
		return nil, domain.ErrOperationFailed
	}
	return &proposal, nil
}

// PurgeExpired deletes proposals whose deadline has passed. Expired
// proposals are otherwise kept queryable; purging is an explicit
// governance-gated maintenance action.
func (s *Service) PurgeExpired(ctx context.Context, callerID uuid.UUID) (int64, error) {
	allowed, err := s.Caps.Allows(ctx, callerID, constants.PurgeProposals)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	if !allowed {
		return 0, domain.ErrGovernanceDenied
	}

	settings, err := domain.LoadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	res := s.DB.WithContext(ctx).Where("expires_at_clock < ?", settings.LogicalClock).Delete(&domain.PendingProposal{})
	if res.Error != nil {
		return 0, domain.ErrOperationFailed
	}
	return res.RowsAffected, nil
}
