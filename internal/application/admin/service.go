package admin

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

// Service owns the governance-gated configuration setters. Every setter
// requires the caller to be the configured owner or to hold manage_system
// from the Authorization Service.
type Service struct {
	DB       *gorm.DB
	Caps     authz.Capability
	Matching *matching.Service
	Registry *collaborators.Registry
}

func (s *Service) authorize(ctx context.Context, callerID uuid.UUID) error {
	allowed, err := s.Caps.Allows(ctx, callerID, constants.ManageSystem)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if !allowed {
		return domain.ErrGovernanceDenied
	}
	return nil
}

// mutate applies fn to the settings row in one transaction, advancing the
// logical clock with it. Configuration writes share the engine lock so two
// writers can never both read clock N and commit N+1.
func (s *Service) mutate(ctx context.Context, fn func(settings *domain.SystemSettings)) (*domain.SystemSettings, error) {
	var out *domain.SystemSettings
	err := s.Matching.Sequence(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			settings, err := domain.LoadSettings(tx)
			if err != nil {
				return err
			}
			settings.LogicalClock++
			fn(settings)
			if err := tx.Save(settings).Error; err != nil {
				return err
			}
			out = settings
			return nil
		})
	})
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

// Pause blocks auto and manual matching until Unpause.
func (s *Service) Pause(ctx context.Context, callerID uuid.UUID) error {
	if err := s.authorize(ctx, callerID); err != nil {
		return err
	}
	_, err := s.mutate(ctx, func(settings *domain.SystemSettings) {
		settings.Paused = true
	})
	if err == nil {
		log.Warn().Str("caller_id", callerID.String()).Msg("Matching paused")
	}
	return err
}

func (s *Service) Unpause(ctx context.Context, callerID uuid.UUID) error {
	if err := s.authorize(ctx, callerID); err != nil {
		return err
	}
	_, err := s.mutate(ctx, func(settings *domain.SystemSettings) {
		settings.Paused = false
	})
	if err == nil {
		log.Info().Str("caller_id", callerID.String()).Msg("Matching unpaused")
	}
	return err
}

func (s *Service) SetFee(ctx context.Context, callerID uuid.UUID, fee int64) error {
	if err := s.authorize(ctx, callerID); err != nil {
		return err
	}
	if fee < 0 {
		return domain.ErrInvalidAmount
	}
	_, err := s.mutate(ctx, func(settings *domain.SystemSettings) {
		settings.MatchFee = fee
	})
	return err
}

func (s *Service) SetThreshold(ctx context.Context, callerID uuid.UUID, threshold int64) error {
	if err := s.authorize(ctx, callerID); err != nil {
		return err
	}
	if threshold < 0 {
		return domain.ErrInvalidAmount
	}
	_, err := s.mutate(ctx, func(settings *domain.SystemSettings) {
		settings.AutoMatchThreshold = threshold
	})
	return err
}

// UpdateCollaborators overwrites the five endpoint references in settings
// and in the live registry.
func (s *Service) UpdateCollaborators(ctx context.Context, callerID uuid.UUID, endpoints collaborators.Endpoints) error {
	if err := s.authorize(ctx, callerID); err != nil {
		return err
	}
	_, err := s.mutate(ctx, func(settings *domain.SystemSettings) {
		settings.EmissionSourceURL = endpoints.EmissionSource
		settings.CreditLedgerURL = endpoints.CreditLedger
		settings.TokenIssuerURL = endpoints.TokenIssuer
		settings.AuthzServiceURL = endpoints.Authorization
		settings.CalculatorURL = endpoints.Calculator
	})
	if err != nil {
		return err
	}
	if s.Registry != nil {
		s.Registry.Update(endpoints)
	}
	log.Info().Str("caller_id", callerID.String()).Msg("Collaborator references updated")
	return nil
}

// Settings returns the configuration row (read accessor, no gate).
func (s *Service) Settings(ctx context.Context) (*domain.SystemSettings, error) {
	settings, err := domain.LoadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	return settings, nil
}
