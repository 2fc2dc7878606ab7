package services

import (
	"context"
	"fmt"

	"bus_service/internal/models"
	"bus_service/internal/repository"
)

// RouteBuilder turns a list of bus numbers into an unsaved route.
type RouteBuilder struct {
	buses repository.BusRepository
}

func NewRouteBuilder(buses repository.BusRepository) *RouteBuilder {
	return &RouteBuilder{buses: buses}
}

// Build resolves every bus number and returns a route ready to be stored.
// Repeated numbers are collapsed to their first occurrence, so the bus set
// never holds the same bus twice. If any number does not resolve the build
// fails with BusNumbersNotExistError listing exactly the unresolved numbers.
func (b *RouteBuilder) Build(ctx context.Context, busNumbers []int, start, destination string) (*models.Route, error) {
	buses := make([]models.Bus, 0, len(busNumbers))
	var missing []int
	seen := make(map[int]bool, len(busNumbers))

	for _, number := range busNumbers {
		if seen[number] {
			continue
		}
		seen[number] = true

		bus, err := b.buses.FindByNumber(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("resolve bus number %d: %w", number, err)
		}
		if bus == nil {
			missing = append(missing, number)
			continue
		}
		buses = append(buses, *bus)
	}

	if len(missing) > 0 {
		return nil, &BusNumbersNotExistError{MissingNumbers: missing}
	}

	return &models.Route{
		Start:       start,
		Destination: destination,
		Buses:       buses,
	}, nil
}
