// Package executor drives the on-chain bet sequence: wallet precondition,
// network check, quote, balance check, token approval, trade submission,
// confirmation. The sequence is a straight line with one conditional skip
// (approval); a failed attempt is reported, never resubmitted — silently
// retrying a financial transaction without user confirmation is unsafe.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/oddslane/sportsbook/internal/chain"
	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/networks"
	"github.com/oddslane/sportsbook/internal/wallet"
)

// Quoter prices a wager. Implemented by service.QuoteService.
type Quoter interface {
	GetQuote(ctx context.Context, market domain.Market, side domain.Side, stake *big.Int) (domain.Quote, error)
}

// Config carries the executor's tunables.
type Config struct {
	// SlippageTolerance is the fraction by which the quoted payout is
	// reduced to form the minimum acceptable payout. Applied once per
	// attempt, never compounded.
	SlippageTolerance float64

	// ConfirmInterval is the receipt polling interval.
	ConfirmInterval time.Duration

	// ConfirmTimeout bounds every confirmation wait. The wait always
	// resolves to confirmation or failure within this bound.
	ConfirmTimeout time.Duration
}

// Executor places bets against on-chain sports AMMs.
type Executor struct {
	quoter  Quoter
	catalog *networks.Catalog
	cfg     Config
	logger  *slog.Logger
	guard   *inflightGuard
}

// New creates an Executor.
func New(quoter Quoter, catalog *networks.Catalog, cfg Config, logger *slog.Logger) *Executor {
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = 2 * time.Second
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 2 * time.Minute
	}
	return &Executor{
		quoter:  quoter,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "executor")),
		guard:   newInflightGuard(),
	}
}

// PlaceBet runs the bet sequence for stake base units of the settlement
// token on the given market and side. Every failure is converted into a
// TradeResult; the executor never lets a fault escape its boundary and
// never partially reports success.
func (e *Executor) PlaceBet(ctx context.Context, market domain.Market, side domain.Side, stake *big.Int, provider wallet.Provider) domain.TradeResult {
	attemptID := uuid.New().String()
	log := e.logger.With(
		slog.String("attempt_id", attemptID),
		slog.String("market", market.Address),
		slog.String("side", side.String()),
	)

	fail := func(msg string) domain.TradeResult {
		log.WarnContext(ctx, "bet failed", slog.String("reason", msg))
		return domain.TradeResult{Success: false, Message: msg, AttemptID: attemptID}
	}

	if stake == nil || stake.Sign() <= 0 {
		return fail("stake must be strictly positive")
	}

	// Step 1: the wallet must report a connected account.
	accounts, err := provider.Accounts(ctx)
	if err != nil || len(accounts) == 0 {
		return fail(domain.ErrWalletNotConnected.Error())
	}
	account := accounts[0]

	// One bet in flight per account. A second overlapping call fails fast
	// instead of racing the first one's nonce and allowance.
	release, ok := e.guard.acquire(account)
	if !ok {
		return fail(fmt.Sprintf("%v: %s", domain.ErrBetInFlight, account.Hex()))
	}
	defer release()

	// Step 2: the wallet's active chain must match the market's chain.
	// Submitting a transaction formatted for one chain against another
	// would revert at best and hit an unrelated contract at worst.
	chainID, err := provider.ChainID(ctx)
	if err != nil {
		return fail(fmt.Sprintf("read wallet network: %v", err))
	}
	if chainID != market.NetworkID {
		return fail(fmt.Sprintf("%v: market requires %s, wallet is on %s",
			domain.ErrNetworkMismatch,
			e.catalog.Name(market.NetworkID),
			e.catalog.Name(chainID),
		))
	}

	net, err := e.catalog.ByID(market.NetworkID)
	if err != nil {
		return fail(fmt.Sprintf("market network %d: %v", market.NetworkID, err))
	}

	// Step 3: no trade without a live quote.
	qt, err := e.quoter.GetQuote(ctx, market, side, stake)
	if err != nil {
		return fail(err.Error())
	}

	token := chain.NewToken(net.SettlementToken)
	amm := chain.NewSportsAMM(net.MarketMaker)

	// Step 4: settlement-token balance must cover the stake.
	balance, err := token.BalanceOf(ctx, provider, account)
	if err != nil {
		return fail(fmt.Sprintf("read %s balance: %v", net.TokenSymbol, err))
	}
	if balance.Cmp(stake) < 0 {
		return fail(fmt.Sprintf("%v: have %s %s, need %s %s",
			domain.ErrInsufficientFunds,
			domain.FormatUnits(balance, net.TokenDecimals), net.TokenSymbol,
			domain.FormatUnits(stake, net.TokenDecimals), net.TokenSymbol,
		))
	}

	// Step 5: ensure the AMM may move the stake. Skipped entirely when a
	// sufficient prior authorization exists.
	allowance, err := token.Allowance(ctx, provider, account, amm.Address())
	if err != nil {
		return fail(fmt.Sprintf("read %s allowance: %v", net.TokenSymbol, err))
	}
	if allowance.Cmp(stake) < 0 {
		approveHash, err := token.Approve(ctx, provider, amm.Address(), stake)
		if err != nil {
			return fail(fmt.Sprintf("%v: approval: %v", domain.ErrTransactionFailed, err))
		}
		log.InfoContext(ctx, "approval submitted", slog.String("tx", approveHash.Hex()))
		if _, err := chain.WaitMined(ctx, provider, approveHash, e.cfg.ConfirmInterval, e.cfg.ConfirmTimeout); err != nil {
			return fail(fmt.Sprintf("approval confirmation: %v", err))
		}
	}

	// Step 6: submit with the quoted payout shaved by the slippage
	// tolerance as the floor, and wait for the trade to mine.
	minPayout := applySlippage(qt.ExpectedPayout(), e.cfg.SlippageTolerance)
	txHash, err := amm.Buy(ctx, provider, common.HexToAddress(market.Address), side, stake, minPayout, token.Address())
	if err != nil {
		return fail(fmt.Sprintf("%v: submit: %v", domain.ErrTransactionFailed, err))
	}
	log.InfoContext(ctx, "trade submitted", slog.String("tx", txHash.Hex()))

	if _, err := chain.WaitMined(ctx, provider, txHash, e.cfg.ConfirmInterval, e.cfg.ConfirmTimeout); err != nil {
		return fail(fmt.Sprintf("trade confirmation: %v", err))
	}

	log.InfoContext(ctx, "bet confirmed",
		slog.String("tx", txHash.Hex()),
		slog.String("stake", domain.FormatUnits(stake, net.TokenDecimals)),
		slog.Float64("payout_multiplier", qt.PayoutMultiplier),
	)

	return domain.TradeResult{
		Success:   true,
		Message:   fmt.Sprintf("bet confirmed in tx %s", txHash.Hex()),
		TxHash:    txHash.Hex(),
		AttemptID: attemptID,
	}
}

// applySlippage reduces payout by the tolerance fraction, truncating toward
// zero.
func applySlippage(payout *big.Int, tolerance float64) *big.Int {
	if tolerance <= 0 {
		return payout
	}
	f := new(big.Float).SetInt(payout)
	f.Mul(f, big.NewFloat(1-tolerance))
	out, _ := f.Int(nil)
	return out
}
