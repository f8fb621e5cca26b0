package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
	"github.com/Belphemur/EpisodeRelay/internal/config"
)

// maxBodySize caps how much of a response body is read into memory.
const maxBodySize = 32 << 20

// get issues an idempotent GET through the retrying client.
func (c *client) get(ctx context.Context, op, target string) (*response, error) {
	return failsafe.With(c.retryPolicy).WithContext(ctx).Get(func() (*response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: create request: %w", op, err)
		}
		return c.do(c.readClient, req, op)
	})
}

// call issues a single non-retried request bounded by timeout. A non-nil payload is
// sent as a JSON body.
func (c *client) call(ctx context.Context, op, method, target string, payload any, timeout time.Duration) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(c.callClient, req, op)
}

func (c *client) do(httpClient *http.Client, req *http.Request, op string) (*response, error) {
	req.Header.Set("User-Agent", config.GetUserAgent())

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewNotFoundError(op, req.URL.Path)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.NewStatusError(op, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.NewTransportError(op, err)
	}
	return &response{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}

// decodeJSON unmarshals a JSON response body, reporting failures as parse errors.
func decodeJSON(op string, resp *response, target any) error {
	if err := json.Unmarshal(resp.body, target); err != nil {
		return apperrors.NewParseError(op, snippet(resp.body), err)
	}
	return nil
}

func snippet(body []byte) string {
	const limit = 120
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
