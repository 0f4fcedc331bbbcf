package services

import "errors"

// Sentinel errors surfaced to the API layer, which maps them onto the
// external error taxonomy.
var (
	ErrBadInput               = errors.New("bad input")
	ErrDriverAlreadyAssigned  = errors.New("driver already assigned on this date")
	ErrVehicleAlreadyAssigned = errors.New("vehicle already assigned on this date")
	ErrPortFailure            = errors.New("external provider failure")
)
