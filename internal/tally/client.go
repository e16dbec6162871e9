// Package tally talks to the bookkeeping system's HTTP XML gateway.
package tally

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cleared-dev/tallymis/internal/buildinfo"
	"github.com/cleared-dev/tallymis/internal/log"
)

// DefaultURL is where the gateway listens unless configured otherwise.
const DefaultURL = "http://127.0.0.1:9000"

// ErrUnavailable wraps every failure to reach the gateway.
var ErrUnavailable = errors.New("tally: gateway unavailable")

// Client posts XML requests to the gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a new client. A zero timeout leaves deadlines to the
// caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent(logger, log.ComponentTally),
	}
}

// post sends one request envelope and returns the cleaned response body.
func (c *Client) post(ctx context.Context, what, envelope string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, what, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, what, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, what, err)
	}

	c.logger.Debug("tally request",
		"request", what,
		log.FieldURL, c.baseURL,
		"bytes", len(body),
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	return Clean(body), nil
}
