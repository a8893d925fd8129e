package errors

import "errors"

var (
	ErrUsageNotFound = errors.New("usage record not found")

	ErrCostNotFound = errors.New("cost record not found")

	ErrInvalidID = errors.New("invalid history record ID format")
)
