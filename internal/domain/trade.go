package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// Quote is a momentary price for executing a specific stake against a
// specific market's pricing curve. Quotes are never cached: on-chain
// liquidity shifts between requests, so a quote is valid only for the
// (market, side, stake) triple it was computed for.
type Quote struct {
	PayoutMultiplier   float64 // decimal payout per unit staked
	ImpliedProbability float64
	Stake              *big.Int // base units the quote was computed for
}

// ExpectedPayout returns the quoted payout for the stake in base units,
// truncated toward zero.
func (q Quote) ExpectedPayout() *big.Int {
	payout := new(big.Float).SetInt(q.Stake)
	payout.Mul(payout, big.NewFloat(q.PayoutMultiplier))
	out, _ := payout.Int(nil)
	return out
}

// TradeResult is the terminal value of one bet attempt. It is returned to
// the caller and never retried automatically.
type TradeResult struct {
	Success   bool
	Message   string
	TxHash    string // set only on success
	AttemptID string
}

// ParseStake converts a decimal token amount such as "12.5" into base units
// for a token with the given number of decimals.
func ParseStake(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("stake must be a positive decimal amount, got %q", s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("stake %q has more than %d decimal places", s, decimals)
	}
	frac = frac + strings.Repeat("0", decimals-len(frac))
	amt, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid stake %q", s)
	}
	if amt.Sign() <= 0 {
		return nil, fmt.Errorf("stake must be strictly positive, got %q", s)
	}
	return amt, nil
}

// FormatUnits renders a base-unit amount as a decimal token amount string.
func FormatUnits(amt *big.Int, decimals int) string {
	if amt == nil {
		return "0"
	}
	s := amt.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], s[len(s)-decimals:]
	frac = strings.TrimRight(frac, "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
