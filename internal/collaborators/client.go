package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// errStatus marks a non-2xx collaborator response; callers inspect the code.
type errStatus struct {
	code int
	body string
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("collaborator error: status %d body: %s", e.code, e.body)
}

func statusCode(err error) int {
	var se *errStatus
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}

// httpJSON performs a JSON request against a collaborator service and
// decodes the response into out (skipped when out is nil).
func httpJSON(ctx context.Context, client *http.Client, apiKey, method, baseURL, path string, payload, out interface{}) error {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		return fmt.Errorf("collaborator base URL is not set")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	url := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("collaborator request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errStatus{code: resp.StatusCode, body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("collaborator response decode: %w", err)
	}
	return nil
}
