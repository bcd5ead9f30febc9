// Package fake provides in-memory collaborator implementations for tests.
package fake

import (
	"context"
	"sync"

	"canopy-backend/internal/collaborators"
)

// EmissionSource is an in-memory emission source. Emitters map to their
// required offset; only emitters present in the map are registered.
type EmissionSource struct {
	Required map[string]int64
	Err      error
}

func (f *EmissionSource) RequiredOffset(ctx context.Context, emitterID string) (int64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	credits, ok := f.Required[emitterID]
	if !ok {
		return 0, collaborators.ErrEmitterNotFound
	}
	return credits, nil
}

func (f *EmissionSource) IsRegistered(ctx context.Context, emitterID string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.Required[emitterID]
	return ok, nil
}

// CreditLedger is an in-memory credit ledger with per-project balances and
// verification flags. FailDeductFor forces a deduction failure for one
// project to exercise rollback paths; ReadHook, when set, runs before each
// balance read so tests can coordinate interleavings.
type CreditLedger struct {
	mu            sync.Mutex
	Balances      map[string]int64
	Unverified    map[string]bool
	FailDeductFor string
	ReadErr       error
	ReadHook      func(projectID string)
	Refunds       []string
}

func (f *CreditLedger) AvailableCredits(ctx context.Context, projectID string) (int64, error) {
	if f.ReadHook != nil {
		f.ReadHook(projectID)
	}
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Balances[projectID], nil
}

func (f *CreditLedger) DeductCredits(ctx context.Context, projectID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if projectID == f.FailDeductFor {
		return collaborators.ErrInsufficientBalance
	}
	if f.Balances[projectID] < amount {
		return collaborators.ErrInsufficientBalance
	}
	f.Balances[projectID] -= amount
	return nil
}

func (f *CreditLedger) RefundCredits(ctx context.Context, projectID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Balances[projectID] += amount
	f.Refunds = append(f.Refunds, projectID)
	return nil
}

func (f *CreditLedger) IsVerified(ctx context.Context, projectID string) (bool, error) {
	return !f.Unverified[projectID], nil
}

// TokenIssuer records mint/retire calls; Fail* force failures.
type TokenIssuer struct {
	mu         sync.Mutex
	FailMint   error
	FailRetire error
	Minted     []MintCall
	Retired    []RetireCall
}

type MintCall struct {
	Amount    int64
	Recipient string
	Metadata  string
}

type RetireCall struct {
	Amount int64
	Owner  string
}

func (f *TokenIssuer) Mint(ctx context.Context, amount int64, recipient, metadata string) error {
	if f.FailMint != nil {
		return f.FailMint
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Minted = append(f.Minted, MintCall{Amount: amount, Recipient: recipient, Metadata: metadata})
	return nil
}

func (f *TokenIssuer) Retire(ctx context.Context, amount int64, owner string) error {
	if f.FailRetire != nil {
		return f.FailRetire
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Retired = append(f.Retired, RetireCall{Amount: amount, Owner: owner})
	return nil
}

// AuthorizationService grants the permissions listed per identity.
type AuthorizationService struct {
	Grants map[string][]string
	Err    error
}

func (f *AuthorizationService) HasPermission(ctx context.Context, identity, permission string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	for _, p := range f.Grants[identity] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}
