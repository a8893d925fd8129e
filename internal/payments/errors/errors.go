package errors

import "errors"

var (
	ErrCostShareNotFound   = errors.New("cost share not found")
	ErrDetailNotFound      = errors.New("cost share detail not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidID           = errors.New("invalid ID format")
)
