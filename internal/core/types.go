package core

import "soapcore/pkg/domain"

type (
	// EntityType aliases domain.EntityType.
	EntityType = domain.EntityType
	// User aliases domain.User.
	User = domain.User
	// Property aliases domain.Property.
	Property = domain.Property
	// ImpactStats aliases domain.ImpactStats.
	ImpactStats = domain.ImpactStats
	// ErrNotFound aliases domain.ErrNotFound.
	ErrNotFound = domain.ErrNotFound
)
