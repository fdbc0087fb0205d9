// Package query builds the GraphQL documents sent to the backend and
// describes how each response is unwrapped.
package query

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when a request cannot be built from its parameters.
var ErrInvalid = errors.New("invalid request")

// Operation names the root field of a document. For every operation except
// the initial fetch it is also the key of the response container under data.
type Operation string

// Supported operations.
const (
	OpUserByID                 Operation = "userById"
	OpPropertiesByUserID       Operation = "propertiesByUserId"
	OpPropertyByID             Operation = "propertyById"
	OpHubByPropertyID          Operation = "hubByPropertyId"
	OpPickupsByPropertyID      Operation = "pickupsByPropertyId"
	OpImpactStatsByPropertyID  Operation = "impactStatsByPropertyId"
	OpProductionReportsByHubID Operation = "productionReportsByHubId"
	// OpInitialFetch is the bulk user hydration. The server answers it under
	// the userById key.
	OpInitialFetch           Operation = "initialFetch"
	OpLogIn                  Operation = "logIn"
	OpSchedulePickup         Operation = "schedulePickup"
	OpCancelPickup           Operation = "cancelPickup"
	OpUpdateUserProfile      Operation = "updateUserProfile"
	OpUpdateProperty         Operation = "updateProperty"
	OpCreateProductionReport Operation = "createProductionReport"
	OpUpdateProductionReport Operation = "updateProductionReport"
	OpDeleteProductionReport Operation = "deleteProductionReport"
)

// PayloadKind tags the shape of the payload an operation expects.
type PayloadKind int

// Payload kinds. The set is closed; dispatch over it is exhaustive.
const (
	PayloadProperty PayloadKind = iota + 1
	PayloadProperties
	PayloadUser
	PayloadLogIn
	PayloadPickup
	PayloadPickups
	PayloadHub
	PayloadProductionReports
	PayloadProductionReport
	PayloadSuccess
	// PayloadImpactStats is returned raw to the caller.
	PayloadImpactStats
	// PayloadHydration is returned raw and walked by the initial fetch cascade.
	PayloadHydration
)

// Field returns the name of the payload field inside the operation container.
func (k PayloadKind) Field() string {
	switch k {
	case PayloadProperty:
		return "property"
	case PayloadProperties:
		return "properties"
	case PayloadUser, PayloadLogIn, PayloadHydration:
		return "user"
	case PayloadPickup:
		return "pickup"
	case PayloadPickups:
		return "pickups"
	case PayloadHub:
		return "hub"
	case PayloadProductionReports:
		return "productionReports"
	case PayloadProductionReport:
		return "productionReport"
	case PayloadSuccess:
		return "success"
	case PayloadImpactStats:
		return "impactStats"
	default:
		return ""
	}
}

func (k PayloadKind) String() string {
	switch k {
	case PayloadLogIn:
		return "logIn"
	case PayloadHydration:
		return "hydration"
	}
	if f := k.Field(); f != "" {
		return f
	}
	return fmt.Sprintf("PayloadKind(%d)", int(k))
}

// Request describes one network operation.
type Request struct {
	Name      Operation
	Container string
	Payload   PayloadKind
	Body      string
}

func newRequest(name Operation, kind PayloadKind, body string) (Request, error) {
	container := string(name)
	if name == OpInitialFetch {
		container = string(OpUserByID)
	}
	if err := validate(body); err != nil {
		return Request{}, fmt.Errorf("%s: %w", name, err)
	}
	return Request{Name: name, Container: container, Payload: kind, Body: body}, nil
}

func requireID(name Operation, param, id string) error {
	if id == "" {
		return fmt.Errorf("%s: %w: %s is required", name, ErrInvalid, param)
	}
	return nil
}
