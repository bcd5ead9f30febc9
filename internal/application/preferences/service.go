package preferences

import (
	"context"

	"canopy-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service owns AutoMatchPreference rows. Strictly caller-scoped: a caller
// can only read and write its own preference.
type Service struct {
	DB *gorm.DB
}

// Set upserts the caller's preference. Values are not validated against
// external state; they are only consulted at auto-match time, so staleness
// is expected and tolerated.
func (s *Service) Set(ctx context.Context, callerID uuid.UUID, projectIDs []string, minCreditsPerProject, maxFee int64) (*domain.AutoMatchPreference, error) {
	if len(projectIDs) == 0 || len(projectIDs) > domain.MaxPreferenceProjects {
		return nil, domain.ErrInvalidProject
	}
	if minCreditsPerProject < 0 || maxFee < 0 {
		return nil, domain.ErrInvalidAmount
	}

	var pref domain.AutoMatchPreference
	err := s.DB.WithContext(ctx).Where("caller_id = ?", callerID).First(&pref).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, domain.ErrOperationFailed
	}

	pref.CallerID = callerID
	pref.ProjectIDs = domain.ProjectList(projectIDs)
	pref.MinCreditsPerProject = minCreditsPerProject
	pref.MaxFee = maxFee

	if err == gorm.ErrRecordNotFound {
		if err := s.DB.WithContext(ctx).Create(&pref).Error; err != nil {
			return nil, domain.ErrOperationFailed
		}
	} else {
		if err := s.DB.WithContext(ctx).Save(&pref).Error; err != nil {
			return nil, domain.ErrOperationFailed
		}
	}
	return &pref, nil
}

// Get returns the caller's saved preference.
func (s *Service) Get(ctx context.Context, callerID uuid.UUID) (*domain.AutoMatchPreference, error) {
	var pref domain.AutoMatchPreference
	if err := s.DB.WithContext(ctx).Where("caller_id = ?", callerID).First(&pref).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNoPreference
		}
		return nil, domain.ErrOperationFailed
	}
	return &pref, nil
}
