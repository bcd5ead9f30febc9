package collaborators

import (
	"context"
	"net/http"
	"net/url"
)

// AuthorizationService is the collaborator answering delegated permission
// queries for governance-gated operations.
type AuthorizationService interface {
	HasPermission(ctx context.Context, identity, permission string) (bool, error)
}

// HTTPAuthorizationService is an AuthorizationService backed by the
// collaborator's HTTP API.
type HTTPAuthorizationService struct {
	Registry *Registry
	APIKey   string
	Client   *http.Client
}

func (c *HTTPAuthorizationService) HasPermission(ctx context.Context, identity, permission string) (bool, error) {
	var out struct {
		Allowed bool `json:"allowed"`
	}
	path := "/v1/permissions/" + url.PathEscape(identity) + "/" + url.PathEscape(permission)
	err := httpJSON(ctx, c.Client, c.APIKey, http.MethodGet, c.Registry.authorizationURL(), path, nil, &out)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return out.Allowed, nil
}
