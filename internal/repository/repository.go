// Package repository declares the persistence contracts. Implementations live in
// subpackages (postgres) and contain no business logic.
package repository

import (
	"errors"
	"time"
)

// ErrStaleState is returned when a guarded update matched no row because the
// stored state changed underneath the caller.
var ErrStaleState = errors.New("stale state")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}

// AuditFilter narrows audit trail listings. Zero values are ignored.
type AuditFilter struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Since      time.Time
	Until      time.Time
	Page       PageQuery
}
