// Package quote is the REST client for the external pricing endpoint. A
// quote is computed for one exact (market, side, stake) triple; prices move
// with trade size on the AMM curve, so quotes are never cached or reused.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/oddslane/sportsbook/internal/domain"
)

// Request is the body submitted to the pricing endpoint. Odds are the
// market's side-ordered decimal multipliers (home, away, optional draw).
type Request struct {
	NetworkID uint64    `json:"networkId"`
	Market    string    `json:"market"`
	GameID    string    `json:"gameId"`
	Position  uint8     `json:"position"`
	Stake     string    `json:"stake"` // decimal token amount
	Odds      []float64 `json:"odds"`
}

// Response is the pricing endpoint's answer. Numbers arrive as
// json.Number so a non-numeric payout is detected rather than silently
// zeroed.
type Response struct {
	PayoutMultiplier   json.Number `json:"payoutMultiplier"`
	ImpliedProbability json.Number `json:"impliedProbability"`
}

// Client talks to the pricing endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a pricing client for the given endpoint root.
func NewClient(baseURL string, rps float64) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Quote submits the request and returns the validated payout multiplier and
// implied probability. Every failure mode wraps domain.ErrQuoteUnavailable:
// the caller must never substitute a stale or guessed price, because that
// could authorize a trade at an economically wrong price.
func (c *Client) Quote(ctx context.Context, req Request) (payoutMultiplier, impliedProbability float64, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("%w: rate limiter: %w", domain.ErrQuoteUnavailable, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: encode request: %w", domain.ErrQuoteUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quote", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: create request: %w", domain.ErrQuoteUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: http request: %w", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read response: %w", domain.ErrQuoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: unexpected status %d", domain.ErrQuoteUnavailable, resp.StatusCode)
	}

	var qr Response
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return 0, 0, fmt.Errorf("%w: decode response: %w", domain.ErrQuoteUnavailable, err)
	}

	payoutMultiplier, err = qr.PayoutMultiplier.Float64()
	if err != nil || payoutMultiplier <= 1.0 || math.IsInf(payoutMultiplier, 0) || math.IsNaN(payoutMultiplier) {
		return 0, 0, fmt.Errorf("%w: non-numeric or invalid payout multiplier %q", domain.ErrQuoteUnavailable, qr.PayoutMultiplier.String())
	}
	impliedProbability, err = qr.ImpliedProbability.Float64()
	if err != nil || impliedProbability <= 0 || impliedProbability >= 1 {
		// Derivable from the multiplier when the endpoint omits or mangles it.
		impliedProbability = 1 / payoutMultiplier
	}

	return payoutMultiplier, impliedProbability, nil
}
