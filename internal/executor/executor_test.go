package executor

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/networks"
)

var (
	tokenAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	ammAddr   = common.HexToAddress("0x2000000000000000000000000000000000000002")
	userAddr  = common.HexToAddress("0x3000000000000000000000000000000000000003")

	selBalanceOf = ethcrypto.Keccak256([]byte("balanceOf(address)"))[:4]
	selAllowance = ethcrypto.Keccak256([]byte("allowance(address,address)"))[:4]
	selApprove   = ethcrypto.Keccak256([]byte("approve(address,uint256)"))[:4]
)

// fakeProvider simulates the wallet plus the token and AMM contracts. It
// records every call so tests can assert which contracts were touched.
type fakeProvider struct {
	mu        sync.Mutex
	accounts  []common.Address
	chainID   uint64
	balance   *big.Int
	allowance *big.Int

	calls     []common.Address // CallContract targets in order
	sent      []sentTx
	nextNonce uint64

	receiptStatus uint64 // status for every mined receipt
	neverMine     bool
	sendErr       error
}

type sentTx struct {
	to       common.Address
	selector [4]byte
	data     []byte
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts:      []common.Address{userAddr},
		chainID:       10,
		balance:       big.NewInt(0),
		allowance:     big.NewInt(0),
		receiptStatus: types.ReceiptStatusSuccessful,
	}
}

func (p *fakeProvider) Accounts(context.Context) ([]common.Address, error) {
	return p.accounts, nil
}

func (p *fakeProvider) ChainID(context.Context) (uint64, error) {
	return p.chainID, nil
}

func (p *fakeProvider) SwitchChain(_ context.Context, chainID uint64) error {
	p.chainID = chainID
	return nil
}

func (p *fakeProvider) CallContract(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, to)

	pad := func(v *big.Int) []byte { return common.LeftPadBytes(v.Bytes(), 32) }
	switch {
	case string(data[:4]) == string(selBalanceOf):
		return pad(p.balance), nil
	case string(data[:4]) == string(selAllowance):
		return pad(p.allowance), nil
	}
	return nil, errors.New("unexpected call")
}

func (p *fakeProvider) SendTransaction(_ context.Context, to common.Address, data []byte, _ *big.Int) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return common.Hash{}, p.sendErr
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	p.sent = append(p.sent, sentTx{to: to, selector: sel, data: data})

	// Approvals take effect once submitted.
	if string(sel[:]) == string(selApprove) {
		p.allowance = new(big.Int).SetBytes(data[len(data)-32:])
	}

	p.nextNonce++
	var h common.Hash
	binary.BigEndian.PutUint64(h[:8], p.nextNonce)
	return h, nil
}

func (p *fakeProvider) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	if p.neverMine {
		return nil, errors.New("not found")
	}
	return &types.Receipt{Status: p.receiptStatus, TxHash: hash}, nil
}

func (p *fakeProvider) sentTo(addr common.Address) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, tx := range p.sent {
		if tx.to == addr {
			n++
		}
	}
	return n
}

// fakeQuoter returns a fixed multiplier or error; gate, when set, blocks
// the quote until the channel closes.
type fakeQuoter struct {
	multiplier float64
	err        error
	gate       chan struct{}
	entered    chan struct{}
}

func (q *fakeQuoter) GetQuote(ctx context.Context, _ domain.Market, _ domain.Side, stake *big.Int) (domain.Quote, error) {
	if q.entered != nil {
		close(q.entered)
		q.entered = nil
	}
	if q.gate != nil {
		<-q.gate
	}
	if q.err != nil {
		return domain.Quote{}, q.err
	}
	return domain.Quote{
		PayoutMultiplier:   q.multiplier,
		ImpliedProbability: 1 / q.multiplier,
		Stake:              new(big.Int).Set(stake),
	}, nil
}

func testCatalog() *networks.Catalog {
	return networks.NewCatalog([]networks.Network{
		{ID: 10, Name: "Optimism", SettlementToken: tokenAddr, MarketMaker: ammAddr, TokenSymbol: "sUSD", TokenDecimals: 6},
		{ID: 42161, Name: "Arbitrum", SettlementToken: tokenAddr, MarketMaker: ammAddr, TokenSymbol: "USDC", TokenDecimals: 6},
	})
}

func testMarket() domain.Market {
	return domain.Market{
		Address:   "0x4000000000000000000000000000000000000004",
		GameID:    "g1",
		Status:    domain.MarketStatusOpen,
		Maturity:  time.Now().Add(time.Hour),
		Odds:      []domain.Odds{{Decimal: 1.8, American: -125, Implied: 0.5556}, {Decimal: 2.2, American: 120, Implied: 0.4545}},
		NetworkID: 10,
	}
}

func newExecutor(q Quoter) *Executor {
	return New(q, testCatalog(), Config{
		SlippageTolerance: 0.05,
		ConfirmInterval:   time.Millisecond,
		ConfirmTimeout:    time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func stakeUnits(tokens int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(tokens), big.NewInt(1_000_000))
}

func TestPlaceBet_WalletNotConnected(t *testing.T) {
	p := newFakeProvider()
	p.accounts = nil
	e := newExecutor(&fakeQuoter{multiplier: 1.8})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "wallet not connected")
	assert.Empty(t, p.calls)
	assert.Empty(t, p.sent)
}

func TestPlaceBet_NetworkMismatch(t *testing.T) {
	p := newFakeProvider()
	p.chainID = 42161
	e := newExecutor(&fakeQuoter{multiplier: 1.8})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Optimism")
	assert.Contains(t, res.Message, "Arbitrum")
	assert.Empty(t, p.calls, "no token or AMM contract may be touched")
	assert.Empty(t, p.sent)
}

func TestPlaceBet_QuoteUnavailableAbortsBeforeChain(t *testing.T) {
	p := newFakeProvider()
	e := newExecutor(&fakeQuoter{err: domain.ErrQuoteUnavailable})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "quote unavailable")
	assert.Empty(t, p.sent)
}

func TestPlaceBet_InsufficientFunds(t *testing.T) {
	p := newFakeProvider()
	p.balance = stakeUnits(5)
	e := newExecutor(&fakeQuoter{multiplier: 1.8})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "5")
	assert.Contains(t, res.Message, "10")
	assert.Zero(t, p.sentTo(ammAddr), "market maker must never be called")
	assert.Empty(t, p.sent)
}

func TestPlaceBet_ApprovalSkippedWhenAllowanceSufficient(t *testing.T) {
	p := newFakeProvider()
	p.balance = stakeUnits(100)
	p.allowance = stakeUnits(50)
	e := newExecutor(&fakeQuoter{multiplier: 1.8})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	require.True(t, res.Success, res.Message)
	assert.NotEmpty(t, res.TxHash)
	assert.Zero(t, p.sentTo(tokenAddr), "no approval transaction expected")
	assert.Equal(t, 1, p.sentTo(ammAddr))
}

func TestPlaceBet_ApprovesThenTrades(t *testing.T) {
	p := newFakeProvider()
	p.balance = stakeUnits(100)
	e := newExecutor(&fakeQuoter{multiplier: 1.8})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	require.True(t, res.Success, res.Message)
	require.Len(t, p.sent, 2)
	assert.Equal(t, tokenAddr, p.sent[0].to, "approval first")
	assert.Equal(t, ammAddr, p.sent[1].to, "trade second")
}

func TestPlaceBet_RevertedTradeFails(t *testing.T) {
	p := newFakeProvider()
	p.balance = stakeUnits(100)
	p.allowance = stakeUnits(100)
	p.receiptStatus = types.ReceiptStatusFailed
	e := newExecutor(&fakeQuoter{multiplier: 1.8})

	res := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "reverted")
	assert.Empty(t, res.TxHash)
}

func TestPlaceBet_ConfirmationTimeoutNeverHangs(t *testing.T) {
	p := newFakeProvider()
	p.balance = stakeUnits(100)
	p.allowance = stakeUnits(100)
	p.neverMine = true
	e := New(&fakeQuoter{multiplier: 1.8}, testCatalog(), Config{
		SlippageTolerance: 0.05,
		ConfirmInterval:   time.Millisecond,
		ConfirmTimeout:    50 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan domain.TradeResult, 1)
	go func() {
		done <- e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	}()
	select {
	case res := <-done:
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "confirmation")
	case <-time.After(5 * time.Second):
		t.Fatal("confirmation wait hung")
	}
}

func TestPlaceBet_RejectsOverlappingAttemptForSameAccount(t *testing.T) {
	p := newFakeProvider()
	p.balance = stakeUnits(100)
	p.allowance = stakeUnits(100)

	gate := make(chan struct{})
	entered := make(chan struct{})
	q := &fakeQuoter{multiplier: 1.8, gate: gate, entered: entered}
	e := newExecutor(q)

	first := make(chan domain.TradeResult, 1)
	go func() {
		first <- e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	}()
	<-entered

	second := e.PlaceBet(context.Background(), testMarket(), domain.SideAway, stakeUnits(10), p)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "in flight")

	close(gate)
	res := <-first
	assert.True(t, res.Success, res.Message)

	// Once the first attempt finishes the account is free again.
	third := e.PlaceBet(context.Background(), testMarket(), domain.SideHome, stakeUnits(10), p)
	assert.True(t, third.Success, third.Message)
}

func TestApplySlippage(t *testing.T) {
	payout := big.NewInt(1_000_000)
	assert.Equal(t, big.NewInt(950_000), applySlippage(payout, 0.05))
	assert.Equal(t, payout, applySlippage(payout, 0))
}

func TestInflightGuard(t *testing.T) {
	g := newInflightGuard()

	release, ok := g.acquire(userAddr)
	require.True(t, ok)

	_, ok = g.acquire(userAddr)
	assert.False(t, ok)

	other := common.HexToAddress("0x5000000000000000000000000000000000000005")
	releaseOther, ok := g.acquire(other)
	assert.True(t, ok)
	releaseOther()

	release()
	_, ok = g.acquire(userAddr)
	assert.True(t, ok)
}
