package collaborators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPEmissionSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/v1/emitters/FLT-1/required-offset":
			json.NewEncoder(w).Encode(map[string]int64{"credits": 5000})
		case "/v1/emitters/FLT-1/registered":
			json.NewEncoder(w).Encode(map[string]bool{"registered": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	registry := NewRegistry(Endpoints{EmissionSource: srv.URL})
	src := &HTTPEmissionSource{Registry: registry, APIKey: "test-key"}
	ctx := context.Background()

	credits, err := src.RequiredOffset(ctx, "FLT-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), credits)

	registered, err := src.IsRegistered(ctx, "FLT-1")
	require.NoError(t, err)
	assert.True(t, registered)

	_, err = src.RequiredOffset(ctx, "FLT-NONE")
	assert.ErrorIs(t, err, ErrEmitterNotFound)

	registered, err = src.IsRegistered(ctx, "FLT-NONE")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestHTTPCreditLedger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/projects/PRJ-A/credits":
			json.NewEncoder(w).Encode(map[string]int64{"available": 2000})
		case "/v1/projects/PRJ-A/deduct":
			var body map[string]int64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(2000), body["amount"])
			w.WriteHeader(http.StatusOK)
		case "/v1/projects/PRJ-POOR/deduct":
			w.WriteHeader(http.StatusConflict)
		case "/v1/projects/PRJ-A/refund":
			w.WriteHeader(http.StatusOK)
		case "/v1/projects/PRJ-A/verified":
			json.NewEncoder(w).Encode(map[string]bool{"verified": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	registry := NewRegistry(Endpoints{CreditLedger: srv.URL})
	ledger := &HTTPCreditLedger{Registry: registry}
	ctx := context.Background()

	available, err := ledger.AvailableCredits(ctx, "PRJ-A")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), available)

	require.NoError(t, ledger.DeductCredits(ctx, "PRJ-A", 2000))
	assert.ErrorIs(t, ledger.DeductCredits(ctx, "PRJ-POOR", 10), ErrInsufficientBalance)
	require.NoError(t, ledger.RefundCredits(ctx, "PRJ-A", 2000))

	verified, err := ledger.IsVerified(ctx, "PRJ-A")
	require.NoError(t, err)
	assert.True(t, verified)

	verified, err = ledger.IsVerified(ctx, "PRJ-NONE")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestHTTPTokenIssuer(t *testing.T) {
	var minted, retired map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/tokens/mint":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&minted))
		case "/v1/tokens/retire":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&retired))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	registry := NewRegistry(Endpoints{TokenIssuer: srv.URL})
	issuer := &HTTPTokenIssuer{Registry: registry}
	ctx := context.Background()

	require.NoError(t, issuer.Mint(ctx, 6000, "matcher-1", "route offset"))
	assert.Equal(t, float64(6000), minted["amount"])
	assert.Equal(t, "matcher-1", minted["recipient"])

	require.NoError(t, issuer.Retire(ctx, 6000, "matcher-1"))
	assert.Equal(t, "matcher-1", retired["owner"])
}

func TestHTTPAuthorizationService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/permissions/user-1/manage_system" {
			json.NewEncoder(w).Encode(map[string]bool{"allowed": true})
			return
		}
		json.NewEncoder(w).Encode(map[string]bool{"allowed": false})
	}))
	defer srv.Close()

	registry := NewRegistry(Endpoints{Authorization: srv.URL})
	authz := &HTTPAuthorizationService{Registry: registry}
	ctx := context.Background()

	allowed, err := authz.HasPermission(ctx, "user-1", "manage_system")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = authz.HasPermission(ctx, "user-2", "manage_system")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRegistryUpdateRedirectsClients(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"available": 1})
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int64{"available": 2})
	}))
	defer second.Close()

	registry := NewRegistry(Endpoints{CreditLedger: first.URL})
	ledger := &HTTPCreditLedger{Registry: registry}
	ctx := context.Background()

	available, err := ledger.AvailableCredits(ctx, "PRJ-A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), available)

	registry.Update(Endpoints{CreditLedger: second.URL})
	available, err = ledger.AvailableCredits(ctx, "PRJ-A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), available)
}
