package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/oddslane/sportsbook/internal/domain"
	"github.com/oddslane/sportsbook/internal/wallet"
)

// WaitMined polls for the receipt of hash until it is mined or timeout
// elapses. It resolves to either confirmation or failure; it never leaves
// the caller hanging. A receipt with a failed status yields
// domain.ErrTransactionFailed.
func WaitMined(ctx context.Context, provider wallet.Provider, hash common.Hash, interval, timeout time.Duration) (*types.Receipt, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := provider.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("chain: %w: transaction %s reverted", domain.ErrTransactionFailed, hash.Hex())
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("chain: %w: confirmation wait for %s: %w", domain.ErrTransactionFailed, hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
