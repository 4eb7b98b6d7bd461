package model

import "errors"

var (
	// ErrDelivery is returned when a message cannot be delivered to an endpoint.
	ErrDelivery = errors.New("delivery failed")
	// ErrVehicleNotFound is returned when a vehicle id does not resolve to a live vehicle.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrConstruction is returned when a vehicle cannot be built from its configuration.
	ErrConstruction = errors.New("vehicle construction failed")
	// ErrUnknownMethod is returned for commands a vehicle does not implement.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned when command parameters are missing or malformed.
	ErrInvalidParams = errors.New("invalid params")
)
