package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/networks"
	"github.com/oddslane/sportsbook/internal/platform/quote"
)

// QuoteEndpoint is the pricing capability the service depends on. It is
// implemented by quote.Client and by fakes in tests.
type QuoteEndpoint interface {
	Quote(ctx context.Context, req quote.Request) (payoutMultiplier, impliedProbability float64, err error)
}

// QuoteService prices a specific wager against the external pricing
// endpoint. It never caches: liquidity shifts between requests, so each
// trade attempt gets a fresh quote for its exact stake.
type QuoteService struct {
	endpoint QuoteEndpoint
	catalog  *networks.Catalog
	logger   *slog.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(endpoint QuoteEndpoint, catalog *networks.Catalog, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		endpoint: endpoint,
		catalog:  catalog,
		logger:   logger.With(slog.String("component", "quote_service")),
	}
}

// GetQuote asks the pricing endpoint for the payout at which the AMM would
// currently execute this exact trade size. stake is in base units of the
// market network's settlement token and must be strictly positive.
func (s *QuoteService) GetQuote(ctx context.Context, market domain.Market, side domain.Side, stake *big.Int) (domain.Quote, error) {
	if stake == nil || stake.Sign() <= 0 {
		return domain.Quote{}, fmt.Errorf("quote_service: stake must be strictly positive")
	}
	if _, ok := market.OddsFor(side); !ok {
		return domain.Quote{}, fmt.Errorf("quote_service: market %s has no %s side", market.Address, side)
	}

	net, err := s.catalog.ByID(market.NetworkID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote_service: market network %d: %w", market.NetworkID, err)
	}

	sideOdds := make([]float64, len(market.Odds))
	for i, o := range market.Odds {
		sideOdds[i] = o.Decimal
	}

	multiplier, implied, err := s.endpoint.Quote(ctx, quote.Request{
		NetworkID: market.NetworkID,
		Market:    market.Address,
		GameID:    market.GameID,
		Position:  uint8(side),
		Stake:     domain.FormatUnits(stake, net.TokenDecimals),
		Odds:      sideOdds,
	})
	if err != nil {
		return domain.Quote{}, fmt.Errorf("quote_service: %w", err)
	}

	s.logger.DebugContext(ctx, "quote received",
		slog.String("market", market.Address),
		slog.String("side", side.String()),
		slog.Float64("payout_multiplier", multiplier),
	)

	return domain.Quote{
		PayoutMultiplier:   multiplier,
		ImpliedProbability: implied,
		Stake:              new(big.Int).Set(stake),
	}, nil
}
