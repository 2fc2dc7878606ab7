package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"bus_service/internal/models"
	"bus_service/internal/repository"
)

// RouteService is the route registry. Routes handed to Create and Update are
// expected to come out of RouteBuilder with their bus set resolved.
type RouteService struct {
	routes   repository.RouteRepository
	buses    repository.BusRepository
	guard    *UsageGuard
	notifier Notifier
}

func NewRouteService(routes repository.RouteRepository, buses repository.BusRepository, guard *UsageGuard, notifier Notifier) *RouteService {
	return &RouteService{
		routes:   routes,
		buses:    buses,
		guard:    guard,
		notifier: notifierOrNoop(notifier),
	}
}

func (s *RouteService) Create(ctx context.Context, route *models.Route) (*models.Route, error) {
	created := route.Clone()
	created.ID = 0
	if err := s.routes.Save(ctx, &created); err != nil {
		return nil, fmt.Errorf("save route: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"route_id": created.ID,
		"buses":    len(created.Buses),
	}).Info("route created")
	s.notifier.Publish(ChangeEvent{Type: EventRouteCreated, ID: created.ID})
	return &created, nil
}

// Update replaces start, destination, geometry and the whole bus set of the
// route at id.
func (s *RouteService) Update(ctx context.Context, id uint, route *models.Route) (*models.Route, error) {
	existing, err := s.routes.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find route %d: %w", id, err)
	}
	if existing == nil {
		return nil, &RouteNotFoundError{RouteID: id}
	}

	updated := route.Clone()
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	if err := s.routes.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save route %d: %w", id, err)
	}

	logrus.WithFields(logrus.Fields{
		"route_id": id,
		"buses":    len(updated.Buses),
	}).Info("route updated")
	s.notifier.Publish(ChangeEvent{Type: EventRouteUpdated, ID: id})
	return &updated, nil
}

// AddBus appends the bus with busNumber to the route's bus set.
func (s *RouteService) AddBus(ctx context.Context, routeID uint, busNumber int) (*models.Route, error) {
	bus, err := s.buses.FindByNumber(ctx, busNumber)
	if err != nil {
		return nil, fmt.Errorf("find bus number %d: %w", busNumber, err)
	}
	if bus == nil {
		return nil, &BusNumberNotFoundError{BusNumber: busNumber}
	}

	route, err := s.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if s.guard.ContainsBus(*route, *bus) {
		return nil, &DuplicateBusInRouteError{RouteID: route.ID, BusNumber: bus.BusNumber}
	}

	route.Buses = append(route.Buses, *bus)
	return s.Update(ctx, route.ID, route)
}

// DeleteByID removes the route. Buses are never a reason to refuse.
func (s *RouteService) DeleteByID(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.routes.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete route %d: %w", id, err)
	}

	logrus.WithField("route_id", id).Info("route deleted")
	s.notifier.Publish(ChangeEvent{Type: EventRouteDeleted, ID: id})
	return nil
}

func (s *RouteService) GetAll(ctx context.Context) ([]models.Route, error) {
	return s.routes.FindAll(ctx)
}

// GetByID fails with RouteNotFoundError when the route does not exist.
func (s *RouteService) GetByID(ctx context.Context, id uint) (*models.Route, error) {
	route, err := s.routes.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find route %d: %w", id, err)
	}
	if route == nil {
		return nil, &RouteNotFoundError{RouteID: id}
	}
	return route, nil
}

func (s *RouteService) GetByStart(ctx context.Context, start string) ([]models.Route, error) {
	return s.routes.FindByStart(ctx, start)
}

func (s *RouteService) GetByDestination(ctx context.Context, destination string) ([]models.Route, error) {
	return s.routes.FindByDestination(ctx, destination)
}

func (s *RouteService) GetByStartAndDestination(ctx context.Context, start, destination string) ([]models.Route, error) {
	return s.routes.FindByStartAndDestination(ctx, start, destination)
}
