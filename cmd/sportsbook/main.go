// Command sportsbook is a reference host for the wagering client core. It
// loads configuration, wires the aggregator, quote service, and executor,
// and exposes three subcommands: markets, featured, and bet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oddslane/sportsbook/internal/aggregator"
	"github.com/oddslane/sportsbook/internal/cache"
	"github.com/oddslane/sportsbook/internal/config"
	"github.com/oddslane/sportsbook/internal/crypto"
	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/executor"
	"github.com/oddslane/sportsbook/internal/networks"
	"github.com/oddslane/sportsbook/internal/platform/overtime"
	"github.com/oddslane/sportsbook/internal/platform/quote"
	"github.com/oddslane/sportsbook/internal/service"
	"github.com/oddslane/sportsbook/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	marketAddr := flag.String("market", "", "market contract address (bet)")
	sideName := flag.String("side", "home", "side to back: home, away, draw (bet)")
	stakeStr := flag.String("stake", "", "stake in settlement-token units (bet)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := networks.NewCatalog(cfg.ToNetworks())
	marketsClient := overtime.NewClient(cfg.Markets.BaseURL, cfg.Markets.ProxyURL, cfg.Markets.RequestsPerSecond, logger)
	agg := aggregator.New(catalog, marketsClient, cache.New(nil), cfg.Markets.CacheTTL.Duration, logger)

	switch flag.Arg(0) {
	case "markets":
		err = runMarkets(ctx, agg, catalog)
	case "featured":
		err = runFeatured(ctx, agg, catalog)
	case "bet":
		err = runBet(ctx, cfg, agg, catalog, *marketAddr, *sideName, *stakeStr, logger)
	default:
		fmt.Fprintln(os.Stderr, "usage: sportsbook [flags] markets|featured|bet")
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runMarkets(ctx context.Context, agg *aggregator.Service, catalog *networks.Catalog) error {
	markets, err := agg.ActiveMarkets(ctx)
	if err != nil {
		return err
	}
	for _, m := range markets {
		printMarket(m, catalog)
	}
	return nil
}

func runFeatured(ctx context.Context, agg *aggregator.Service, catalog *networks.Catalog) error {
	m, err := agg.FeaturedMarket(ctx)
	if err != nil {
		return err
	}
	printMarket(m, catalog)
	return nil
}

func runBet(
	ctx context.Context,
	cfg *config.Config,
	agg *aggregator.Service,
	catalog *networks.Catalog,
	marketAddr, sideName, stakeStr string,
	logger *slog.Logger,
) error {
	if marketAddr == "" || stakeStr == "" {
		return fmt.Errorf("bet requires -market and -stake")
	}
	side, ok := domain.ParseSide(sideName)
	if !ok {
		return fmt.Errorf("unknown side %q (valid: home, away, draw)", sideName)
	}

	markets, err := agg.ActiveMarkets(ctx)
	if err != nil {
		return err
	}
	var market domain.Market
	found := false
	for _, m := range markets {
		if m.Address == marketAddr {
			market, found = m, true
			break
		}
	}
	if !found {
		return fmt.Errorf("market %s is not in the active list", marketAddr)
	}

	net, err := catalog.ByID(market.NetworkID)
	if err != nil {
		return err
	}
	stake, err := domain.ParseStake(stakeStr, net.TokenDecimals)
	if err != nil {
		return err
	}

	keyHex, err := crypto.LoadKey(crypto.KeyConfig{
		RawPrivateKey:    cfg.Wallet.PrivateKey,
		EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
		KeyPassword:      cfg.Wallet.KeyPassword,
	})
	if err != nil {
		return err
	}
	provider, err := wallet.NewLocalProvider(ctx, keyHex, cfg.ToNetworks(), market.NetworkID)
	if err != nil {
		return err
	}
	defer provider.Close()

	quoteSvc := service.NewQuoteService(quote.NewClient(cfg.Quote.BaseURL, cfg.Quote.RequestsPerSecond), catalog, logger)
	exec := executor.New(quoteSvc, catalog, executor.Config{
		SlippageTolerance: cfg.Trade.SlippageTolerance,
		ConfirmInterval:   cfg.Trade.ConfirmInterval.Duration,
		ConfirmTimeout:    cfg.Trade.ConfirmTimeout.Duration,
	}, logger)

	result := exec.PlaceBet(ctx, market, side, stake, provider)
	if !result.Success {
		return fmt.Errorf("bet not placed: %s", result.Message)
	}
	fmt.Printf("bet placed: %s\n", result.TxHash)
	return nil
}

func printMarket(m domain.Market, catalog *networks.Catalog) {
	line := fmt.Sprintf("%s  %s vs %s  [%s]  starts %s  on %s",
		m.Address, m.HomeTeam, m.AwayTeam, m.Status,
		m.Maturity.Format("2006-01-02 15:04 MST"),
		catalog.Name(m.NetworkID),
	)
	for i, o := range m.Odds {
		line += fmt.Sprintf("  %s %.2f", domain.Side(i), o.Decimal)
	}
	fmt.Println(line)
}
