package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// strategy is one named attempt at an operation against the target site.
// Attempts report (false, nil) when the strategy does not apply and an error
// when the attempt itself blew up; either way the next strategy in line runs.
type strategy struct {
	name    string
	attempt func(ctx context.Context) (bool, error)
}

// tryStrategies runs the strategies in order and stops at the first one that
// reports success. Strategy errors are logged, never propagated; a failing
// strategy only means the next one gets its turn.
func (p *Poster) tryStrategies(ctx context.Context, op string, strategies []strategy) bool {
	for _, s := range strategies {
		ok, err := s.attempt(ctx)
		if err != nil {
			p.logger.Printf("%s: %s strategy failed: %v", op, s.name, err)
			continue
		}
		if ok {
			p.logger.Printf("%s: %s strategy succeeded", op, s.name)
			return true
		}
		p.logger.Printf("%s: %s strategy rejected", op, s.name)
	}
	return false
}

// is2xx reports whether status is a success status.
func is2xx(status int) bool {
	return status >= 200 && status < 300
}

// postForm performs a form-encoded POST against the site.
func (p *Poster) postForm(ctx context.Context, target string, values url.Values) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target,
		strings.NewReader(values.Encode()))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req)
}

// postJSON performs a JSON POST against the site.
func (p *Poster) postJSON(ctx context.Context, target string, payload any) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req)
}

// do sends the request with the session client and drains the body.
func (p *Poster) do(req *http.Request) (int, string, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, string(body), nil
}

// successField reports whether a JSON response body carries a truthy
// "success" field.
func successField(body string) bool {
	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return false
	}
	return result.Success
}
