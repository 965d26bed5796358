// Package aggregator discovers open markets across candidate networks. It
// queries networks strictly sequentially in priority order and stops at the
// first network with at least one open market: a wallet can only reach one
// chain at a time, so a lower-priority market found "faster" by a parallel
// fan-out would be a dead end, not a win.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oddslane/sportsbook/internal/cache"
	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/networks"
)

// MarketFetcher is the external market-data capability. Implemented by the
// overtime platform client.
type MarketFetcher interface {
	MarketsForNetwork(ctx context.Context, networkID uint64) ([]domain.Market, error)
}

// Service aggregates markets from the candidate networks into the cache.
type Service struct {
	catalog *networks.Catalog
	fetcher MarketFetcher
	cache   *cache.MarketCache
	ttl     time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// New creates a Service. ttl bounds how long a cached entry answers
// repeated calls without touching the network.
func New(catalog *networks.Catalog, fetcher MarketFetcher, mc *cache.MarketCache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		fetcher: fetcher,
		cache:   mc,
		ttl:     ttl,
		logger:  logger.With(slog.String("component", "aggregator")),
	}
}

// ActiveMarkets returns the open markets of the highest-priority network
// that has any. Calls within the cache TTL return the cached list without a
// network call. Concurrent refreshes collapse into a single fetch pass;
// callers holding the previous entry are never blocked by a refresh.
func (s *Service) ActiveMarkets(ctx context.Context) ([]domain.Market, error) {
	if s.cache.IsFresh(s.ttl) {
		entry, _ := s.cache.Read()
		return entry.Markets, nil
	}

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		// A concurrent caller may have completed the refresh while this one
		// waited on the flight group.
		if s.cache.IsFresh(s.ttl) {
			entry, _ := s.cache.Read()
			return entry.Markets, nil
		}
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Market), nil
}

// refresh walks the priority list one network at a time. A failing fetch is
// treated as "no markets on this network" and the walk continues; only when
// every candidate is exhausted does the refresh fail.
func (s *Service) refresh(ctx context.Context) ([]domain.Market, error) {
	for _, net := range s.catalog.Ordered() {
		markets, err := s.fetcher.MarketsForNetwork(ctx, net.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "market fetch failed, trying next network",
				slog.String("network", net.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if len(markets) == 0 {
			continue
		}

		s.cache.Write(cache.Entry{
			FetchedAt: s.cache.Now(),
			NetworkID: net.ID,
			Markets:   markets,
		})
		s.logger.InfoContext(ctx, "markets refreshed",
			slog.String("network", net.Name),
			slog.Int("count", len(markets)),
		)
		return markets, nil
	}
	return nil, domain.ErrNoMarketsAvailable
}

// FeaturedMarket picks one market from the active list: open status before
// any other status, then the soonest-to-start upcoming event, else the most
// recently started event already underway.
func (s *Service) FeaturedMarket(ctx context.Context) (domain.Market, error) {
	markets, err := s.ActiveMarkets(ctx)
	if err != nil {
		return domain.Market{}, fmt.Errorf("aggregator: featured market: %w", err)
	}
	if len(markets) == 0 {
		return domain.Market{}, domain.ErrNoMarketsAvailable
	}

	now := s.cache.Now()
	ranked := make([]domain.Market, len(markets))
	copy(ranked, markets)

	sort.SliceStable(ranked, func(i, j int) bool {
		mi, mj := ranked[i], ranked[j]
		openI := mi.Status == domain.MarketStatusOpen
		openJ := mj.Status == domain.MarketStatusOpen
		if openI != openJ {
			return openI
		}
		upI := !mi.Started(now)
		upJ := !mj.Started(now)
		if upI != upJ {
			return upI
		}
		if upI {
			// Both upcoming: soonest start first.
			return mi.Maturity.Before(mj.Maturity)
		}
		// Both underway: most recently started first.
		return mi.Maturity.After(mj.Maturity)
	})

	return ranked[0], nil
}
