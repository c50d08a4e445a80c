package database

import "errors"

// Failure kinds surfaced to the API layer, which maps them onto HTTP status
// codes with errors.Is. Anything not in this list is a server error.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPortfolioNotFound    = errors.New("portfolio not found")
	ErrHoldingNotFound      = errors.New("no holdings found for this symbol")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrPriceUnavailable     = errors.New("unable to resolve market price")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrInsufficientHoldings = errors.New("not enough holdings to sell")
)
