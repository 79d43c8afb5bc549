// Package nflverse reads the nflverse-data release tables.
//
// Assets are gzip CSV files published under GitHub releases. Requests are
// paced by a token bucket limiter and guarded by a circuit breaker so a
// failing host is not hammered across a multi-season backfill.
package nflverse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for release assets.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a release client with rate limiting and a circuit breaker.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	rps := float64(requestsPerMinute) / 60.0

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nflverse",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		breaker:    cb,
		logger:     logger,
	}
}

// Fetch downloads a release asset ("pbp/play_by_play_2024.csv.gz") and
// returns its decompressed contents.
func (c *Client) Fetch(ctx context.Context, asset string) (io.Reader, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, asset)
	})
	if err != nil {
		return nil, err
	}
	body := out.([]byte)
	c.logger.Debug("Fetched asset", "asset", asset, "bytes", len(body), "duration", time.Since(start).Round(time.Millisecond))

	return decompress(asset, bytes.NewReader(body))
}

func (c *Client) get(ctx context.Context, asset string) ([]byte, error) {
	u := c.baseURL + "/" + asset
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", asset, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nflverse %s returned %d: %s", asset, resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// decompress wraps r in a gzip reader when name carries a .gz suffix.
func decompress(name string, r io.Reader) (io.Reader, error) {
	if !strings.HasSuffix(name, ".gz") {
		return r, nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip %s: %w", name, err)
	}
	return zr, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
