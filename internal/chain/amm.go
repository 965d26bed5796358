package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/wallet"
)

const sportsAMMABI = `[
  {"name":"buyFromAMMWithCollateral","type":"function","stateMutability":"nonpayable",
   "inputs":[
     {"name":"market","type":"address"},
     {"name":"position","type":"uint8"},
     {"name":"amount","type":"uint256"},
     {"name":"expectedPayout","type":"uint256"},
     {"name":"collateral","type":"address"}],
   "outputs":[]}
]`

// SportsAMM wraps the market-maker contract that prices and executes
// trades against a market's liquidity.
type SportsAMM struct {
	address common.Address
	abi     abi.ABI
}

// NewSportsAMM creates a SportsAMM bound to the given contract address.
func NewSportsAMM(address common.Address) *SportsAMM {
	parsed, err := abi.JSON(strings.NewReader(sportsAMMABI))
	if err != nil {
		panic(fmt.Sprintf("chain: parse sports amm abi: %v", err))
	}
	return &SportsAMM{address: address, abi: parsed}
}

// Address returns the market-maker contract address.
func (a *SportsAMM) Address() common.Address {
	return a.address
}

// Buy submits the trade transaction: back side on market with stake tokens
// of collateral, accepting no less than minPayout. The minimum payout is
// the slippage floor; the AMM reverts rather than fill below it.
func (a *SportsAMM) Buy(ctx context.Context, provider wallet.Provider, market common.Address, side domain.Side, stake, minPayout *big.Int, collateral common.Address) (common.Hash, error) {
	data, err := a.abi.Pack("buyFromAMMWithCollateral", market, uint8(side), stake, minPayout, collateral)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: pack buyFromAMMWithCollateral: %w", err)
	}
	hash, err := provider.SendTransaction(ctx, a.address, data, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: buy from amm: %w", err)
	}
	return hash, nil
}
