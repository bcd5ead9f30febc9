package collaborators

import (
	"context"
	"net/http"
)

// TokenIssuer is the collaborator owning the fungible receipt-token ledger.
type TokenIssuer interface {
	Mint(ctx context.Context, amount int64, recipient, metadata string) error
	Retire(ctx context.Context, amount int64, owner string) error
}

// HTTPTokenIssuer is a TokenIssuer backed by the collaborator's HTTP API.
type HTTPTokenIssuer struct {
	Registry *Registry
	APIKey   string
	Client   *http.Client
}

func (c *HTTPTokenIssuer) Mint(ctx context.Context, amount int64, recipient, metadata string) error {
	return httpJSON(ctx, c.Client, c.APIKey, http.MethodPost, c.Registry.tokenIssuerURL(), "/v1/tokens/mint", map[string]interface{}{
		"amount":    amount,
		"recipient": recipient,
		"metadata":  metadata,
	}, nil)
}

func (c *HTTPTokenIssuer) Retire(ctx context.Context, amount int64, owner string) error {
	return httpJSON(ctx, c.Client, c.APIKey, http.MethodPost, c.Registry.tokenIssuerURL(), "/v1/tokens/retire", map[string]interface{}{
		"amount": amount,
		"owner":  owner,
	}, nil)
}
