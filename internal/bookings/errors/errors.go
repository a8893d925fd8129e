package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrVehicleInactive = errors.New("vehicle is not active")

	ErrNotTopPriority = errors.New("co-owner is not the top-priority requester")
)
