package repository

import "errors"

var (
	// ErrVehicleNotFound is returned when a vehicle is not found by ID
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrCoOwnerNotFound is returned when a co-owner is not found by ID
	ErrCoOwnerNotFound = errors.New("co-owner not found")

	// ErrInvalidID is returned when an ID format is invalid
	ErrInvalidID = errors.New("invalid directory ID format")
)
