package api

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"childcare-route-service/internal/ports"
	"childcare-route-service/internal/services"
)

// External error codes; part of the API contract.
const (
	codeUnauthenticated        = "UNAUTHENTICATED"
	codeNotFound               = "NOT_FOUND"
	codeBadInput               = "BAD_INPUT"
	codeDriverAlreadyAssigned  = "DRIVER_ALREADY_ASSIGNED"
	codeVehicleAlreadyAssigned = "VEHICLE_ALREADY_ASSIGNED"
	codePortFailure            = "PORT_FAILURE"
	codeConflict               = "CONFLICT"
	codeInternal               = "INTERNAL"
)

var errUnauthenticated = errors.New("unauthenticated")

// apiError carries an error code into the GraphQL response extensions.
type apiError struct {
	message string
	code    string
}

func (e *apiError) Error() string { return e.message }

// Extensions satisfies gqlerrors.ExtendedError so the code reaches clients.
func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// asAPIError maps internal sentinels onto the external taxonomy. Unmapped
// errors are logged and reported as INTERNAL without leaking detail.
func asAPIError(err error) *apiError {
	switch {
	case errors.Is(err, errUnauthenticated):
		return &apiError{message: "authentication required", code: codeUnauthenticated}
	case errors.Is(err, ports.ErrNotFound):
		return &apiError{message: err.Error(), code: codeNotFound}
	case errors.Is(err, services.ErrBadInput):
		return &apiError{message: err.Error(), code: codeBadInput}
	case errors.Is(err, services.ErrDriverAlreadyAssigned):
		return &apiError{message: err.Error(), code: codeDriverAlreadyAssigned}
	case errors.Is(err, services.ErrVehicleAlreadyAssigned):
		return &apiError{message: err.Error(), code: codeVehicleAlreadyAssigned}
	case errors.Is(err, services.ErrPortFailure):
		return &apiError{message: err.Error(), code: codePortFailure}
	case errors.Is(err, ports.ErrConflict):
		return &apiError{message: "concurrent update detected, retry", code: codeConflict}
	case errors.Is(err, context.DeadlineExceeded):
		// Transaction already rolled back; nothing partial persisted.
		return &apiError{message: "operation timed out", code: codeInternal}
	default:
		logrus.WithError(err).Error("unhandled resolver error")
		return &apiError{message: "internal server error", code: codeInternal}
	}
}
