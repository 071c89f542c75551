// Package keys provides clients to obtain the credential for the search API.
package keys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/exp/slog"
)

// Path is the url path of the key endpoint.
const Path = "/api/key"

// ErrEmptyKey is returned when the provider responded without a key.
var ErrEmptyKey = errors.New("empty api key")

// StatusError is returned when the provider responds with a non-200 status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status code %d for %s", e.StatusCode, e.URL)
}

// Response is a body of the key endpoint.
type Response struct {
	APIKey string `json:"apiKey"`
}

// Client fetches the key from the key provider.
type Client struct {
	log  *slog.Logger
	cl   *http.Client
	base string
}

// NewClient makes new Client for the provider at baseURL.
func NewClient(lg *slog.Logger, cl *http.Client, baseURL string) *Client {
	return &Client{log: lg, cl: cl, base: strings.TrimSuffix(baseURL, "/")}
}

// Key requests the key from the provider.
func (c *Client) Key(ctx context.Context) (string, error) {
	u := c.base + Path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	var body Response
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if body.APIKey == "" {
		return "", ErrEmptyKey
	}

	return body.APIKey, nil
}

// Static is a key source that always returns the same key.
type Static string

// Key returns the key, or ErrEmptyKey if it is not set.
func (s Static) Key(context.Context) (string, error) {
	if s == "" {
		return "", ErrEmptyKey
	}
	return string(s), nil
}
