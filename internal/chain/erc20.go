// Package chain packs and decodes the contract calls the trade sequence
// needs: settlement-token reads and approvals, AMM trade submission, and
// the bounded confirmation wait. All calls go through the wallet-provider
// capability, so the package works against any provider implementation.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/oddslane/sportsbook/internal/wallet"
)

const erc20ABI = `[
  {"name":"balanceOf","type":"function","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"name":"allowance","type":"function","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"name":"approve","type":"function","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]}
]`

// Token wraps the settlement-token (ERC-20) contract on one network.
type Token struct {
	address common.Address
	abi     abi.ABI
}

// NewToken creates a Token bound to the given contract address.
func NewToken(address common.Address) *Token {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		// The ABI literal is compiled in; failing to parse it is a bug.
		panic(fmt.Sprintf("chain: parse erc20 abi: %v", err))
	}
	return &Token{address: address, abi: parsed}
}

// Address returns the token contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// BalanceOf reads the token balance of account.
func (t *Token) BalanceOf(ctx context.Context, provider wallet.Provider, account common.Address) (*big.Int, error) {
	data, err := t.abi.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("chain: pack balanceOf: %w", err)
	}
	out, err := provider.CallContract(ctx, t.address, data)
	if err != nil {
		return nil, fmt.Errorf("chain: balanceOf: %w", err)
	}
	return unpackUint256(t.abi, "balanceOf", out)
}

// Allowance reads the spending authorization owner has granted to spender.
func (t *Token) Allowance(ctx context.Context, provider wallet.Provider, owner, spender common.Address) (*big.Int, error) {
	data, err := t.abi.Pack("allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("chain: pack allowance: %w", err)
	}
	out, err := provider.CallContract(ctx, t.address, data)
	if err != nil {
		return nil, fmt.Errorf("chain: allowance: %w", err)
	}
	return unpackUint256(t.abi, "allowance", out)
}

// Approve submits an authorization transaction granting spender the right
// to move amount tokens and returns the transaction hash.
func (t *Token) Approve(ctx context.Context, provider wallet.Provider, spender common.Address, amount *big.Int) (common.Hash, error) {
	data, err := t.abi.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: pack approve: %w", err)
	}
	hash, err := provider.SendTransaction(ctx, t.address, data, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain: approve: %w", err)
	}
	return hash, nil
}

func unpackUint256(parsed abi.ABI, method string, out []byte) (*big.Int, error) {
	vals, err := parsed.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("chain: unpack %s: %w", method, err)
	}
	v, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("chain: %s returned unexpected type %T", method, vals[0])
	}
	return v, nil
}
