package authz

import (
	"context"

	"canopy-backend/internal/collaborators"
	"canopy-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Capability answers whether a caller may perform a named governance action.
type Capability interface {
	Allows(ctx context.Context, callerID uuid.UUID, permission string) (bool, error)
}

// Owner allows the configured system owner, regardless of permission name.
type Owner struct {
	DB *gorm.DB
}

func (o *Owner) Allows(ctx context.Context, callerID uuid.UUID, permission string) (bool, error) {
	settings, err := domain.LoadSettings(o.DB.WithContext(ctx))
	if err != nil {
		return false, err
	}
	return settings.OwnerID != uuid.Nil && settings.OwnerID == callerID, nil
}

// Remote delegates to the external Authorization Service.
type Remote struct {
	Client collaborators.AuthorizationService
}

func (r *Remote) Allows(ctx context.Context, callerID uuid.UUID, permission string) (bool, error) {
	return r.Client.HasPermission(ctx, callerID.String(), permission)
}

// AnyOf allows when any member allows. A member error is held back until
// all members have been tried, so an authorization-service outage does not
// lock out the owner path.
type AnyOf []Capability

func (caps AnyOf) Allows(ctx context.Context, callerID uuid.UUID, permission string) (bool, error) {
	var firstErr error
	for _, cap := range caps {
		ok, err := cap.Allows(ctx, callerID, permission)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, firstErr
}
