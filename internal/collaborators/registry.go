package collaborators

import "sync"

// Endpoints holds the five collaborator base URLs. The calculator endpoint
// is carried in configuration but never called by the matching logic.
type Endpoints struct {
	EmissionSource string
	CreditLedger   string
	TokenIssuer    string
	Authorization  string
	Calculator     string
}

// Registry is the mutable home of collaborator endpoint references. The
// HTTP clients read base URLs through it so /admin/update-collaborators
// takes effect without rebuilding clients.
type Registry struct {
	mu        sync.RWMutex
	endpoints Endpoints
}

func NewRegistry(e Endpoints) *Registry {
	return &Registry{endpoints: e}
}

// Update replaces all endpoint references (total overwrite).
func (r *Registry) Update(e Endpoints) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = e
}

// Endpoints returns a snapshot of the current references.
func (r *Registry) Endpoints() Endpoints {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endpoints
}

func (r *Registry) emissionSourceURL() string { return r.Endpoints().EmissionSource }
func (r *Registry) creditLedgerURL() string   { return r.Endpoints().CreditLedger }
func (r *Registry) tokenIssuerURL() string    { return r.Endpoints().TokenIssuer }
func (r *Registry) authorizationURL() string  { return r.Endpoints().Authorization }
