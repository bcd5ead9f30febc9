package collaborators

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrInsufficientBalance is returned when a deduction exceeds the project's
// current balance on the ledger side.
var ErrInsufficientBalance = errors.New("Insufficient project balance")

// CreditLedger is the collaborator owning project credit balances.
// RefundCredits is the compensating write used to unwind partially applied
// deductions when a match aborts mid-settlement.
type CreditLedger interface {
	AvailableCredits(ctx context.Context, projectID string) (int64, error)
	DeductCredits(ctx context.Context, projectID string, amount int64) error
	RefundCredits(ctx context.Context, projectID string, amount int64) error
	IsVerified(ctx context.Context, projectID string) (bool, error)
}

// HTTPCreditLedger is a CreditLedger backed by the collaborator's HTTP API.
type HTTPCreditLedger struct {
	Registry *Registry
	APIKey   string
	Client   *http.Client
}

func (c *HTTPCreditLedger) AvailableCredits(ctx context.Context, projectID string) (int64, error) {
	var out struct {
		Available int64 `json:"available"`
	}
	path := "/v1/projects/" + url.PathEscape(projectID) + "/credits"
	if err := httpJSON(ctx, c.Client, c.APIKey, http.MethodGet, c.Registry.creditLedgerURL(), path, nil, &out); err != nil {
		return 0, err
	}
	return out.Available, nil
}

func (c *HTTPCreditLedger) DeductCredits(ctx context.Context, projectID string, amount int64) error {
	path := "/v1/projects/" + url.PathEscape(projectID) + "/deduct"
	err := httpJSON(ctx, c.Client, c.APIKey, http.MethodPost, c.Registry.creditLedgerURL(), path, map[string]interface{}{
		"amount": amount,
	}, nil)
	if err != nil && statusCode(err) == http.StatusConflict {
		return ErrInsufficientBalance
	}
	return err
}

func (c *HTTPCreditLedger) RefundCredits(ctx context.Context, projectID string, amount int64) error {
	path := "/v1/projects/" + url.PathEscape(projectID) + "/refund"
	return httpJSON(ctx, c.Client, c.APIKey, http.MethodPost, c.Registry.creditLedgerURL(), path, map[string]interface{}{
		"amount": amount,
	}, nil)
}

func (c *HTTPCreditLedger) IsVerified(ctx context.Context, projectID string) (bool, error) {
	var out struct {
		Verified bool `json:"verified"`
	}
	path := "/v1/projects/" + url.PathEscape(projectID) + "/verified"
	err := httpJSON(ctx, c.Client, c.APIKey, http.MethodGet, c.Registry.creditLedgerURL(), path, nil, &out)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return out.Verified, nil
}
