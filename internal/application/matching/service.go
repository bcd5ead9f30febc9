package matching

import (
	"context"
	"errors"
	"sync"

	"canopy-backend/internal/collaborators"
	"canopy-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service is the matching engine: the only component that writes MatchRecords
// and history rows. Mutating entry points are serialized behind mu so each
// operation runs to completion or is fully discarded; no other operation
// observes intermediate state.
type Service struct {
	DB        *gorm.DB
	Emissions collaborators.EmissionSource
	Ledger    collaborators.CreditLedger
	Tokens    collaborators.TokenIssuer

	mu sync.Mutex
}

// Sequence runs fn under the lock that serializes the engine's own mutating
// operations. Writers outside the engine that advance the logical clock run
// through here, so the settings row only ever sees one operation at a time.
func (s *Service) Sequence(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// draw is one project occurrence consumed by a match: the full balance
// observed during the read pass, deducted verbatim during the write pass.
type draw struct {
	projectID string
	credits   int64
}

// AutoMatch matches an emitter against the caller's saved preference list.
// Preferred projects whose balance is below the caller's per-project minimum
// (or the global auto-match threshold, whichever is higher) are skipped.
// Preference lists are pre-vetted self-declarations, so projects are not
// re-verified here; manual matching is the stricter path.
func (s *Service) AutoMatch(ctx context.Context, emitterID, metadata string, callerID uuid.UUID) (*domain.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := domain.LoadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	if settings.Paused {
		return nil, domain.ErrSystemPaused
	}

	var pref domain.AutoMatchPreference
	if err := s.DB.WithContext(ctx).Where("caller_id = ?", callerID).First(&pref).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoPreference
		}
		return nil, domain.ErrOperationFailed
	}
	if settings.MatchFee > pref.MaxFee {
		return nil, domain.ErrInvalidAmount
	}

	minPerProject := pref.MinCreditsPerProject
	if settings.AutoMatchThreshold > minPerProject {
		minPerProject = settings.AutoMatchThreshold
	}

	return s.performMatch(ctx, emitterID, pref.Projects(), domain.ModeAuto, metadata, callerID, minPerProject, false)
}

// ManualMatch matches an emitter against a caller-supplied project list.
// Every listed project must be independently verified before aggregation.
func (s *Service) ManualMatch(ctx context.Context, emitterID string, projectIDs []string, metadata string, callerID uuid.UUID) (*domain.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := domain.LoadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	if settings.Paused {
		return nil, domain.ErrSystemPaused
	}

	return s.performMatch(ctx, emitterID, projectIDs, domain.ModeManual, metadata, callerID, 0, true)
}

// performMatch runs the settlement: validation, read-only aggregation,
// deduction with a rollback log, then a single transaction committing the
// record, history rows, counter, and clock advance. The token mint happens
// inside that transaction so a mint failure rolls back every ledger write;
// external deductions are unwound with compensating refunds. Callers must
// hold mu.
func (s *Service) performMatch(ctx context.Context, emitterID string, projectIDs []string, mode, metadata string, matcherID uuid.UUID, minPerProject int64, verifyProjects bool) (*domain.MatchRecord, error) {
	if mode != domain.ModeAuto && mode != domain.ModeManual {
		return nil, domain.ErrInvalidMode
	}
	if len(metadata) > domain.MaxMetadataLen {
		return nil, domain.ErrMetadataTooLong
	}
	if len(projectIDs) == 0 || len(projectIDs) > domain.MaxProjectsPerMatch {
		return nil, domain.ErrInvalidProject
	}

	registered, err := s.Emissions.IsRegistered(ctx, emitterID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	if !registered {
		return nil, domain.ErrInvalidEmitter
	}

	var existing domain.MatchRecord
	err = s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).First(&existing).Error
	if err == nil {
		return nil, domain.ErrAlreadyMatched
	}
	if err != gorm.ErrRecordNotFound {
		return nil, domain.ErrOperationFailed
	}

	required, err := s.Emissions.RequiredOffset(ctx, emitterID)
	if err != nil {
		if errors.Is(err, collaborators.ErrEmitterNotFound) {
			return nil, domain.ErrInvalidEmitter
		}
		return nil, domain.ErrOperationFailed
	}

	if verifyProjects {
		for _, pid := range projectIDs {
			verified, err := s.Ledger.IsVerified(ctx, pid)
			if err != nil {
				return nil, domain.ErrOperationFailed
			}
			if !verified {
				return nil, domain.ErrInvalidProject
			}
		}
	}

	// Pass 1: read-only aggregation in list order, duplicates summed per
	// occurrence. No ledger write may happen before the sufficiency check.
	draws := make([]draw, 0, len(projectIDs))
	var total int64
	for _, pid := range projectIDs {
		balance, err := s.Ledger.AvailableCredits(ctx, pid)
		if err != nil {
			return nil, domain.ErrOperationFailed
		}
		if balance < 0 {
			return nil, domain.ErrOperationFailed
		}
		if minPerProject > 0 && balance < minPerProject {
			continue
		}
		draws = append(draws, draw{projectID: pid, credits: balance})
		total += balance
	}
	if total < required {
		return nil, domain.ErrInsufficientCredits
	}

	// Pass 2: deduct each project's observed balance in full, keeping a
	// rollback log. Any failure refunds what was already taken.
	applied := make([]draw, 0, len(draws))
	for _, d := range draws {
		if d.credits == 0 {
			continue
		}
		if err := s.Ledger.DeductCredits(ctx, d.projectID, d.credits); err != nil {
			s.refund(ctx, applied)
			return nil, domain.ErrOperationFailed
		}
		applied = append(applied, d)
	}

	consumed := make([]string, len(draws))
	for i, d := range draws {
		consumed[i] = d.projectID
	}

	var record *domain.MatchRecord
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := domain.LoadSettings(tx)
		if err != nil {
			return err
		}
		settings.LogicalClock++
		settings.TotalMatches++
		if err := tx.Save(settings).Error; err != nil {
			return err
		}

		rec := &domain.MatchRecord{
			EmitterID:      emitterID,
			ProjectIDs:     domain.ProjectList(consumed),
			TotalCredits:   total,
			MatchedAtClock: settings.LogicalClock,
			MatcherID:      matcherID,
			Mode:           mode,
			Metadata:       metadata,
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		for _, d := range draws {
			entry := &domain.MatchHistoryEntry{
				MatchID:   rec.MatchID,
				EmitterID: emitterID,
				ProjectID: d.projectID,
				Credits:   d.credits,
				Clock:     settings.LogicalClock,
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		// A finalized match supersedes any pending proposal for the emitter;
		// consuming it in the same transaction keeps the two from coexisting.
		if err := tx.Where("emitter_id = ?", emitterID).Delete(&domain.PendingProposal{}).Error; err != nil {
			return err
		}

		// Mint inside the transaction: a mint failure discards the record
		// and counter while the deductions are refunded below.
		if err := s.Tokens.Mint(ctx, total, matcherID.String(), metadata); err != nil {
			return err
		}
		record = rec
		return nil
	})
	if txErr != nil {
		s.refund(ctx, applied)
		return nil, domain.ErrOperationFailed
	}

	log.Info().
		Str("emitter_id", emitterID).
		Strs("projects", consumed).
		Int64("credits", total).
		Str("mode", mode).
		Str("matcher_id", matcherID.String()).
		Msg("Match created")

	return record, nil
}

// refund unwinds applied deductions. Refund failures are logged, not
// surfaced: the operation is already failing and the caller sees one error.
func (s *Service) refund(ctx context.Context, applied []draw) {
	for _, d := range applied {
		if err := s.Ledger.RefundCredits(ctx, d.projectID, d.credits); err != nil {
			log.Error().
				Str("project_id", d.projectID).
				Int64("credits", d.credits).
				Err(err).
				Msg("Refund failed, ledger needs reconciliation")
		}
	}
}

// Retire requests token retirement of the record's matched credits and flips
// the retired flag, exactly once. Only the original matcher may retire.
func (s *Service) Retire(ctx context.Context, emitterID string, callerID uuid.UUID) (*domain.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var record domain.MatchRecord
	if err := s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrInvalidEmitter
		}
		return nil, domain.ErrOperationFailed
	}
	if record.MatcherID != callerID {
		return nil, domain.ErrUnauthorized
	}
	if record.Retired {
		return nil, domain.ErrAlreadyRetired
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
		record.Retired = true
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return s.Tokens.Retire(ctx, record.TotalCredits, callerID.String())
	})
	if txErr != nil {
		return nil, domain.ErrOperationFailed
	}

	log.Info().
		Str("emitter_id", emitterID).
		Int64("credits", record.TotalCredits).
		Msg("Match retired")

	return &record, nil
}

// GetMatch returns the finalized match for an emitter. Read-only, not
// blocked by pause.
func (s *Service) GetMatch(ctx context.Context, emitterID string) (*domain.MatchRecord, error) {
	var record domain.MatchRecord
	if err := s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrInvalidEmitter
		}
		return nil, domain.ErrOperationFailed
	}
	return &record, nil
}

// History returns the audit rows for an emitter in insertion order.
func (s *Service) History(ctx context.Context, emitterID string) ([]domain.MatchHistoryEntry, error) {
	var entries []domain.MatchHistoryEntry
	if err := s.DB.WithContext(ctx).Where("emitter_id = ?", emitterID).Order("\"createdAt\" asc").Find(&entries).Error; err != nil {
		return nil, domain.ErrOperationFailed
	}
	return entries, nil
}

// Stats exposes the global match counter, clock, and pause flag.
type Stats struct {
	TotalMatches int64 `json:"total_matches"`
	LogicalClock int64 `json:"logical_clock"`
	Paused       bool  `json:"paused"`
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	settings, err := domain.LoadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	return &Stats{
		TotalMatches: settings.TotalMatches,
		LogicalClock: settings.LogicalClock,
		Paused:       settings.Paused,
	}, nil
}
