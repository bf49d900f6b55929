package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid wallet input")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)
