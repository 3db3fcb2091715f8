package services

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrPaymentProvider = errors.New("payment provider error")
)
