// Package overtime is the REST client for the per-network market-data
// endpoint. It normalizes the endpoint's two response shapes to a flat
// market list and falls back to a pass-through proxy mirror when the
// primary host is unreachable.
package overtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/oddslane/sportsbook/internal/domain"
)

// Client fetches open markets for a network. Each request tries the primary
// base URL first and the proxy mirror second; the chain is bounded to those
// two hosts, there is no further retry.
type Client struct {
	baseURL    string
	proxyURL   string // optional mirror, "" disables the fallback
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a market-data client. baseURL is the endpoint root,
// e.g. "https://api.overtimemarkets.xyz/overtime". proxyURL may be empty.
func NewClient(baseURL, proxyURL string, rps float64, logger *slog.Logger) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL:  baseURL,
		proxyURL: proxyURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger.With(slog.String("component", "overtime_client")),
	}
}

// MarketsForNetwork returns every market the endpoint reports for the given
// chain, already normalized to the flat domain shape. Records with
// malformed odds are skipped, not fatal.
func (c *Client) MarketsForNetwork(ctx context.Context, networkID uint64) ([]domain.Market, error) {
	path := "/networks/" + strconv.FormatUint(networkID, 10) + "/markets"

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("overtime: get markets for network %d: %w", networkID, err)
	}

	var payload marketPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("overtime: decode markets for network %d: %w", networkID, err)
	}

	apiMarkets := payload.Flatten()
	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		m, err := apiMarkets[i].ToDomainMarket(networkID)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed market record",
				slog.String("address", apiMarkets[i].Address),
				slog.Uint64("network_id", networkID),
				slog.String("error", err.Error()),
			)
			continue
		}
		markets = append(markets, m)
	}

	return markets, nil
}

// doGet performs one rate-limited GET with the primary-then-proxy fallback
// chain.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, primaryErr := c.getFrom(ctx, c.baseURL+path)
	if primaryErr == nil {
		return body, nil
	}
	if c.proxyURL == "" {
		return nil, primaryErr
	}

	c.logger.WarnContext(ctx, "primary endpoint failed, trying proxy",
		slog.String("path", path),
		slog.String("error", primaryErr.Error()),
	)

	body, proxyErr := c.getFrom(ctx, c.proxyURL+path)
	if proxyErr != nil {
		return nil, errors.Join(primaryErr, proxyErr)
	}
	return body, nil
}

func (c *Client) getFrom(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
