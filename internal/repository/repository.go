// Package repository holds the storage contract used by the registries and
// its gorm and in-memory implementations.
package repository

import (
	"context"
	"errors"

	"bus_service/internal/models"
)

var (
	// ErrDuplicateKey is returned when a write would violate a unique
	// constraint, i.e. two buses sharing a bus number.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrReferenced is returned when a write would break the link between a
	// route and a bus: deleting a bus a route still uses, or linking a route
	// to a bus that does not exist.
	ErrReferenced = errors.New("record is still referenced")
)

// BusRepository stores buses. Find methods return (nil, nil) when the bus
// does not exist.
type BusRepository interface {
	// Save inserts the bus when its ID is zero and fully replaces it otherwise.
	Save(ctx context.Context, bus *models.Bus) error
	FindByID(ctx context.Context, id uint) (*models.Bus, error)
	DeleteByID(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]models.Bus, error)
	ExistsByNumber(ctx context.Context, busNumber int) (bool, error)
	FindByNumber(ctx context.Context, busNumber int) (*models.Bus, error)
}

// RouteRepository stores routes together with their bus set.
// FindByID returns (nil, nil) when the route does not exist.
type RouteRepository interface {
	// Save inserts the route when its ID is zero and otherwise replaces its
	// fields and its whole bus set.
	Save(ctx context.Context, route *models.Route) error
	FindByID(ctx context.Context, id uint) (*models.Route, error)
	DeleteByID(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]models.Route, error)
	FindByStart(ctx context.Context, start string) ([]models.Route, error)
	FindByDestination(ctx context.Context, destination string) ([]models.Route, error)
	FindByStartAndDestination(ctx context.Context, start, destination string) ([]models.Route, error)
	FindContainingBus(ctx context.Context, busID uint) ([]models.Route, error)
}
