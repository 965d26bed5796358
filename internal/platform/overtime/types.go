package overtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/odds"
)

// APIMarket represents one market as returned by the market-data endpoint.
type APIMarket struct {
	Address      string   `json:"address"`
	GameID       string   `json:"gameId"`
	Sport        string   `json:"sport"`
	HomeTeam     string   `json:"homeTeam"`
	AwayTeam     string   `json:"awayTeam"`
	MaturityDate int64    `json:"maturityDate"` // unix seconds of event start
	IsOpen       bool     `json:"isOpen"`
	IsPaused     bool     `json:"isPaused"`
	IsCanceled   bool     `json:"isCanceled"`
	IsResolved   bool     `json:"isResolved"`
	HomeOdds     float64  `json:"homeOdds"` // decimal multipliers
	AwayOdds     float64  `json:"awayOdds"`
	DrawOdds     *float64 `json:"drawOdds,omitempty"` // absent for two-way markets
}

// ToDomainMarket converts an APIMarket to a domain.Market on the given
// network. Markets whose odds cannot form a consistent triple are reported
// as an error so the caller can skip them.
func (m *APIMarket) ToDomainMarket(networkID uint64) (domain.Market, error) {
	status := domain.MarketStatusOpen
	switch {
	case m.IsResolved:
		status = domain.MarketStatusResolved
	case m.IsCanceled:
		status = domain.MarketStatusCanceled
	case m.IsPaused:
		status = domain.MarketStatusPaused
	}

	home, err := odds.FromDecimal(m.HomeOdds)
	if err != nil {
		return domain.Market{}, fmt.Errorf("home odds: %w", err)
	}
	away, err := odds.FromDecimal(m.AwayOdds)
	if err != nil {
		return domain.Market{}, fmt.Errorf("away odds: %w", err)
	}
	priced := []domain.Odds{home, away}
	if m.DrawOdds != nil {
		draw, err := odds.FromDecimal(*m.DrawOdds)
		if err != nil {
			return domain.Market{}, fmt.Errorf("draw odds: %w", err)
		}
		priced = append(priced, draw)
	}

	return domain.Market{
		Address:   m.Address,
		GameID:    m.GameID,
		Sport:     m.Sport,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Maturity:  time.Unix(m.MaturityDate, 0).UTC(),
		Status:    status,
		Odds:      priced,
		NetworkID: networkID,
	}, nil
}

// marketPayload is the tagged variant of the two response shapes the
// endpoint serves: either a flat array of markets, or a two-level grouping
// by sport and then league. Decode resolves the shape once, immediately
// after the HTTP call, so everything downstream only ever sees a flat list.
type marketPayload struct {
	flat   []APIMarket
	nested map[string]map[string][]APIMarket
}

// UnmarshalJSON detects the payload shape from the leading token.
func (p *marketPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("empty market payload")
	}
	switch trimmed[0] {
	case '[':
		return json.Unmarshal(data, &p.flat)
	case '{':
		return json.Unmarshal(data, &p.nested)
	default:
		return fmt.Errorf("unexpected market payload shape starting with %q", trimmed[0])
	}
}

// Flatten returns every market in the payload as one list. Nested payloads
// are flattened sport by sport, league by league.
func (p *marketPayload) Flatten() []APIMarket {
	if p.nested == nil {
		return p.flat
	}
	var out []APIMarket
	for _, leagues := range p.nested {
		for _, markets := range leagues {
			out = append(out, markets...)
		}
	}
	return out
}
