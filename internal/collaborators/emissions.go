package collaborators

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrEmitterNotFound is returned when the emission source has no record
// of the emitter.
var ErrEmitterNotFound = errors.New("Emitter not found")

// EmissionSource is the read-only collaborator owning emitter registration
// and required offset amounts.
type EmissionSource interface {
	RequiredOffset(ctx context.Context, emitterID string) (int64, error)
	IsRegistered(ctx context.Context, emitterID string) (bool, error)
}

// HTTPEmissionSource is an EmissionSource backed by the collaborator's
// HTTP API.
type HTTPEmissionSource struct {
	Registry *Registry
	APIKey   string
	Client   *http.Client
}

func (c *HTTPEmissionSource) RequiredOffset(ctx context.Context, emitterID string) (int64, error) {
	var out struct {
		Credits int64 `json:"credits"`
	}
	path := "/v1/emitters/" + url.PathEscape(emitterID) + "/required-offset"
	err := httpJSON(ctx, c.Client, c.APIKey, http.MethodGet, c.Registry.emissionSourceURL(), path, nil, &out)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return 0, ErrEmitterNotFound
		}
		return 0, err
	}
	return out.Credits, nil
}

func (c *HTTPEmissionSource) IsRegistered(ctx context.Context, emitterID string) (bool, error) {
	var out struct {
		Registered bool `json:"registered"`
	}
	path := "/v1/emitters/" + url.PathEscape(emitterID) + "/registered"
	err := httpJSON(ctx, c.Client, c.APIKey, http.MethodGet, c.Registry.emissionSourceURL(), path, nil, &out)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return out.Registered, nil
}
