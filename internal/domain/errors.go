package domain

import "errors"

var (
	ErrNoMarketsAvailable = errors.New("no markets available on any network")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrNetworkMismatch    = errors.New("wallet network does not match market network")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrInsufficientFunds  = errors.New("insufficient settlement-token balance")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrBetInFlight        = errors.New("bet already in flight for account")
	ErrUnknownNetwork     = errors.New("unknown network")
)
