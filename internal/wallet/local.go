package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/networks"
)

// LocalProvider implements Provider with a locally held ECDSA key and one
// RPC client per configured network. SwitchChain re-points the provider at
// another already-dialed network; it never dials lazily, so a bet attempt
// cannot stall on a cold connection mid-sequence.
type LocalProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address

	mu      sync.RWMutex
	active  uint64
	clients map[uint64]*ethclient.Client
}

// NewLocalProvider dials every network in the catalog and attaches to
// active. privateKeyHex may carry an optional 0x prefix.
func NewLocalProvider(ctx context.Context, privateKeyHex string, nets []networks.Network, active uint64) (*LocalProvider, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid private key: %w", err)
	}

	clients := make(map[uint64]*ethclient.Client, len(nets))
	for _, n := range nets {
		client, err := ethclient.DialContext(ctx, n.RPCURL)
		if err != nil {
			for _, c := range clients {
				c.Close()
			}
			return nil, fmt.Errorf("wallet: dial %s: %w", n.Name, err)
		}
		clients[n.ID] = client
	}
	if _, ok := clients[active]; !ok {
		for _, c := range clients {
			c.Close()
		}
		return nil, fmt.Errorf("wallet: active chain %d: %w", active, domain.ErrUnknownNetwork)
	}

	return &LocalProvider{
		key:     key,
		address: ethcrypto.PubkeyToAddress(key.PublicKey),
		active:  active,
		clients: clients,
	}, nil
}

// Address returns the provider's account address.
func (p *LocalProvider) Address() common.Address {
	return p.address
}

// Accounts implements Provider.
func (p *LocalProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{p.address}, nil
}

// ChainID implements Provider.
func (p *LocalProvider) ChainID(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active, nil
}

// SwitchChain implements Provider.
func (p *LocalProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[chainID]; !ok {
		return fmt.Errorf("wallet: switch to chain %d: %w", chainID, domain.ErrUnknownNetwork)
	}
	p.active = chainID
	return nil
}

// CallContract implements Provider.
func (p *LocalProvider) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	client, _ := p.activeClient()
	out, err := client.CallContract(ctx, ethereum.CallMsg{
		From: p.address,
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("wallet: call %s: %w", to.Hex(), err)
	}
	return out, nil
}

// SendTransaction implements Provider. It fills in nonce, gas, and fee
// fields, signs with the local key, and broadcasts.
func (p *LocalProvider) SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	client, chainID := p.activeClient()
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := client.PendingNonceAt(ctx, p.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: pending nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: suggest gas price: %w", err)
	}
	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  p.address,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)), p.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: sign transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("wallet: broadcast transaction: %w", err)
	}
	return signed.Hash(), nil
}

// TransactionReceipt implements Provider.
func (p *LocalProvider) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	client, _ := p.activeClient()
	return client.TransactionReceipt(ctx, hash)
}

// Close releases every RPC connection.
func (p *LocalProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.clients {
		c.Close()
	}
}

func (p *LocalProvider) activeClient() (*ethclient.Client, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clients[p.active], p.active
}
