// Package networks holds the static table of chains the client can wager
// on: display names, settlement-token and market-maker contract addresses,
// and the priority order used during market discovery.
package networks

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/oddslane/sportsbook/internal/domain"
)

// Network describes one chain and the contracts needed to trade on it.
// Loaded at startup, never mutated.
type Network struct {
	ID              uint64
	Name            string
	SettlementToken common.Address
	MarketMaker     common.Address
	TokenSymbol     string
	TokenDecimals   int
	RPCURL          string
}

// Chain IDs of the supported networks.
const (
	OptimismID uint64 = 10
	ArbitrumID uint64 = 42161
	BaseID     uint64 = 8453
)

// Defaults returns the built-in network descriptors in discovery priority
// order. Callers may substitute their own ordered list; the aggregator
// treats priority as data, not control flow.
func Defaults() []Network {
	return []Network{
		{
			ID:              OptimismID,
			Name:            "Optimism",
			SettlementToken: common.HexToAddress("0x8c6f28f2F1A3C87F0f938b96d27520d9751ec8d9"),
			MarketMaker:     common.HexToAddress("0x170a5714112daEfF20E798B6e92e25B86Ea603C1"),
			TokenSymbol:     "sUSD",
			TokenDecimals:   18,
			RPCURL:          "https://mainnet.optimism.io",
		},
		{
			ID:              ArbitrumID,
			Name:            "Arbitrum",
			SettlementToken: common.HexToAddress("0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8"),
			MarketMaker:     common.HexToAddress("0x2Bb7D689780e7a34dD365359bD7333ab24903268"),
			TokenSymbol:     "USDC",
			TokenDecimals:   6,
			RPCURL:          "https://arb1.arbitrum.io/rpc",
		},
		{
			ID:              BaseID,
			Name:            "Base",
			SettlementToken: common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
			MarketMaker:     common.HexToAddress("0xbC6fcBCBbd3b4527132e7a9Fb2Ef45b8aB9aFEe2"),
			TokenSymbol:     "USDC",
			TokenDecimals:   6,
			RPCURL:          "https://mainnet.base.org",
		},
	}
}

// Catalog answers network lookups by chain ID while preserving the
// priority order it was constructed with.
type Catalog struct {
	ordered []Network
	byID    map[uint64]Network
}

// NewCatalog builds a Catalog from an ordered network list.
func NewCatalog(nets []Network) *Catalog {
	byID := make(map[uint64]Network, len(nets))
	for _, n := range nets {
		byID[n.ID] = n
	}
	return &Catalog{ordered: nets, byID: byID}
}

// Ordered returns the networks in discovery priority order.
func (c *Catalog) Ordered() []Network {
	return c.ordered
}

// ByID looks up a network by chain ID.
func (c *Catalog) ByID(id uint64) (Network, error) {
	n, ok := c.byID[id]
	if !ok {
		return Network{}, domain.ErrUnknownNetwork
	}
	return n, nil
}

// Name returns the display name for a chain ID, or the decimal ID when the
// chain is not in the catalog (mismatch errors still need a label).
func (c *Catalog) Name(id uint64) string {
	if n, ok := c.byID[id]; ok {
		return n.Name
	}
	return "chain " + strconv.FormatUint(id, 10)
}
