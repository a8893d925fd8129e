package errors

import "errors"

var (
	ErrGroupNotFound = errors.New("group not found")

	ErrVoteNotFound = errors.New("vote not found")

	ErrInvalidID = errors.New("invalid group ID format")
)
