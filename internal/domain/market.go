package domain

import "time"

// MarketStatus represents the lifecycle state of a wagering market.
type MarketStatus string

const (
	MarketStatusOpen     MarketStatus = "open"
	MarketStatusPaused   MarketStatus = "paused"
	MarketStatusCanceled MarketStatus = "canceled"
	MarketStatusResolved MarketStatus = "resolved"
)

// Side identifies the outcome a wager backs. The numeric values match the
// position indices of the on-chain AMM (0 = home, 1 = away, 2 = draw).
type Side uint8

const (
	SideHome Side = 0
	SideAway Side = 1
	SideDraw Side = 2
)

// String returns the lowercase name of the side.
func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	case SideDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// ParseSide converts a user-facing side name to a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "home":
		return SideHome, true
	case "away":
		return SideAway, true
	case "draw":
		return SideDraw, true
	default:
		return 0, false
	}
}

// Market represents one open wagering opportunity on a single sporting event.
// A Market is immutable once fetched: price and status changes are observed
// only by re-fetching, never by mutating a held value.
type Market struct {
	Address   string // on-chain market contract, unique per market
	GameID    string // opaque identifier from the data source
	Sport     string
	HomeTeam  string
	AwayTeam  string
	Maturity  time.Time // event start
	Status    MarketStatus
	Odds      []Odds // index 0 = home, 1 = away, optional 2 = draw
	NetworkID uint64 // chain the market contract lives on
}

// OddsFor returns the odds entry for the given side. ok is false when the
// market does not carry that side (e.g. a two-way market has no draw).
func (m Market) OddsFor(side Side) (Odds, bool) {
	i := int(side)
	if i >= len(m.Odds) {
		return Odds{}, false
	}
	return m.Odds[i], true
}

// Started reports whether the event has begun as of now.
func (m Market) Started(now time.Time) bool {
	return !m.Maturity.After(now)
}

// Odds carries one price in three equivalent representations. None is
// authoritative over another; all three are views of a single underlying
// probability and must agree.
type Odds struct {
	Decimal  float64 `json:"decimal"`  // decimal multiplier, > 1.0
	American int64   `json:"american"` // sign-prefixed integer form
	Implied  float64 `json:"implied"`  // normalized implied probability in (0, 1)
}
