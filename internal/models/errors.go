package models

import "errors"

// Custom errors
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrInstrumentNotFound   = errors.New("instrument not found")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrScheduleExhausted    = errors.New("trading schedule exhausted")
)
