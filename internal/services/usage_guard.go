package services

import (
	"context"
	"fmt"

	"bus_service/internal/models"
	"bus_service/internal/repository"
)

// UsageGuard answers whether a bus is referenced by routes.
type UsageGuard struct {
	routes repository.RouteRepository
}

func NewUsageGuard(routes repository.RouteRepository) *UsageGuard {
	return &UsageGuard{routes: routes}
}

// RoutesReferencing returns every stored route whose bus set contains bus.
func (g *UsageGuard) RoutesReferencing(ctx context.Context, bus models.Bus) ([]models.Route, error) {
	routes, err := g.routes.FindContainingBus(ctx, bus.ID)
	if err != nil {
		return nil, fmt.Errorf("find routes using bus %d: %w", bus.ID, err)
	}
	return routes, nil
}

// ContainsBus reports whether route already holds bus, compared by id.
func (g *UsageGuard) ContainsBus(route models.Route, bus models.Bus) bool {
	for _, b := range route.Buses {
		if b.ID == bus.ID {
			return true
		}
	}
	return false
}

func routeIDs(routes []models.Route) []uint {
	ids := make([]uint, 0, len(routes))
	for _, r := range routes {
		ids = append(ids, r.ID)
	}
	return ids
}
