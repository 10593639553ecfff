// Package orders implements ports.OrderGateway against Polymarket's CLOB:
// signed order submission, order-book reads, and on-chain USDC balance
// checks. Market discovery (events, search, trending) lives in
// internal/adapters/marketdata instead.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase = "https://clob.polymarket.com"

	// CLOB /books: 500/10s documented → run at 60%.
	booksRatePerSec = 30
	// CLOB general (order placement, balance checks): run well under the
	// documented ceiling.
	generalRatePerSec = 50

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// httpClient is the rate-limited, retrying CLOB HTTP client shared by
// the public and authenticated surfaces.
type httpClient struct {
	http         *http.Client
	base         string
	generalLimiter *rate.Limiter
	booksLimiter   *rate.Limiter
}

func newHTTPClient(base string) *httpClient {
	if base == "" {
		base = defaultCLOBBase
	}
	return &httpClient{
		http:           &http.Client{Timeout: 10 * time.Second},
		base:           base,
		generalLimiter: rate.NewLimiter(generalRatePerSec, 20),
		booksLimiter:   rate.NewLimiter(booksRatePerSec, 5),
	}
}

func (c *httpClient) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

func (c *httpClient) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("clob rate limited", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func (c *httpClient) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
