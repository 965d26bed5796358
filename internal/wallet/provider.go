// Package wallet defines the wallet-provider capability the trade executor
// consumes and a go-ethereum backed implementation for hosts that hold a
// local key. The capability mirrors the injected-wallet request protocol
// (accounts, chain id, chain switch, call, send); the core never assumes a
// specific implementation.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Provider is the opaque wallet capability.
type Provider interface {
	// Accounts returns the connected account addresses. An empty slice
	// means no wallet is connected.
	Accounts(ctx context.Context) ([]common.Address, error)

	// ChainID returns the chain the wallet is currently attached to.
	ChainID(ctx context.Context) (uint64, error)

	// SwitchChain asks the wallet to attach to another chain. Hosts may use
	// this to resolve a network mismatch before retrying a bet; the
	// executor itself never switches chains on the user's behalf.
	SwitchChain(ctx context.Context, chainID uint64) error

	// CallContract performs a read-only contract call on the active chain.
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)

	// SendTransaction signs and broadcasts a contract call and returns the
	// transaction hash. Once broadcast, the transaction proceeds on-chain
	// regardless of what the caller does next.
	SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)

	// TransactionReceipt returns the receipt for a mined transaction, or an
	// error while it is still pending.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}
