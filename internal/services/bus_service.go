package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"bus_service/internal/models"
	"bus_service/internal/repository"
)

// BusService is the bus registry. It owns bus records and the uniqueness of
// bus numbers, and refuses to delete buses that routes still use.
type BusService struct {
	buses    repository.BusRepository
	guard    *UsageGuard
	notifier Notifier
}

func NewBusService(buses repository.BusRepository, guard *UsageGuard, notifier Notifier) *BusService {
	return &BusService{
		buses:    buses,
		guard:    guard,
		notifier: notifierOrNoop(notifier),
	}
}

// Create stores a new bus. The existence check is a fast path; the store's
// unique constraint decides when two creates race.
func (s *BusService) Create(ctx context.Context, candidate models.Bus) (*models.Bus, error) {
	exists, err := s.buses.ExistsByNumber(ctx, candidate.BusNumber)
	if err != nil {
		return nil, fmt.Errorf("check bus number %d: %w", candidate.BusNumber, err)
	}
	if exists {
		return nil, &DuplicateBusNumberError{BusNumber: candidate.BusNumber}
	}

	bus := candidate
	bus.ID = 0
	if err := s.buses.Save(ctx, &bus); err != nil {
		return nil, s.saveError(err, bus.BusNumber)
	}

	logrus.WithFields(logrus.Fields{"bus_id": bus.ID, "bus_number": bus.BusNumber}).Info("bus created")
	s.notifier.Publish(ChangeEvent{Type: EventBusCreated, ID: bus.ID})
	return &bus, nil
}

// Update fully replaces the bus at id with candidate's fields.
func (s *BusService) Update(ctx context.Context, id uint, candidate models.Bus) (*models.Bus, error) {
	existing, err := s.buses.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find bus %d: %w", id, err)
	}
	if existing == nil {
		return nil, &BusNotFoundError{BusID: id}
	}

	holder, err := s.buses.FindByNumber(ctx, candidate.BusNumber)
	if err != nil {
		return nil, fmt.Errorf("find bus number %d: %w", candidate.BusNumber, err)
	}
	if holder != nil && holder.ID != id {
		return nil, &DuplicateBusNumberError{BusNumber: candidate.BusNumber}
	}

	bus := candidate
	bus.ID = id
	bus.CreatedAt = existing.CreatedAt
	if err := s.buses.Save(ctx, &bus); err != nil {
		return nil, s.saveError(err, bus.BusNumber)
	}

	logrus.WithFields(logrus.Fields{"bus_id": bus.ID, "bus_number": bus.BusNumber}).Info("bus updated")
	s.notifier.Publish(ChangeEvent{Type: EventBusUpdated, ID: bus.ID})
	return &bus, nil
}

// DeleteByID removes a bus that no route references.
func (s *BusService) DeleteByID(ctx context.Context, id uint) error {
	bus, err := s.buses.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find bus %d: %w", id, err)
	}
	if bus == nil {
		return &BusNotFoundError{BusID: id}
	}

	if err := s.ensureUnused(ctx, *bus); err != nil {
		return err
	}

	err = s.buses.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrReferenced) {
		// a route picked the bus up after the check
		if inUse := s.ensureUnused(ctx, *bus); inUse != nil {
			return inUse
		}
		// the referencing route is gone again
		err = s.buses.DeleteByID(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("delete bus %d: %w", id, err)
	}

	logrus.WithField("bus_id", id).Info("bus deleted")
	s.notifier.Publish(ChangeEvent{Type: EventBusDeleted, ID: id})
	return nil
}

func (s *BusService) ensureUnused(ctx context.Context, bus models.Bus) error {
	routes, err := s.guard.RoutesReferencing(ctx, bus)
	if err != nil {
		return err
	}
	if len(routes) > 0 {
		return &BusInUseError{BusID: bus.ID, RouteIDs: routeIDs(routes)}
	}
	return nil
}

func (s *BusService) GetAll(ctx context.Context) ([]models.Bus, error) {
	return s.buses.FindAll(ctx)
}

// GetByID returns (nil, nil) when the bus does not exist.
func (s *BusService) GetByID(ctx context.Context, id uint) (*models.Bus, error) {
	return s.buses.FindByID(ctx, id)
}

// GetByNumber fails with BusNumberNotFoundError when no bus has the number.
func (s *BusService) GetByNumber(ctx context.Context, busNumber int) (*models.Bus, error) {
	bus, err := s.buses.FindByNumber(ctx, busNumber)
	if err != nil {
		return nil, fmt.Errorf("find bus number %d: %w", busNumber, err)
	}
	if bus == nil {
		return nil, &BusNumberNotFoundError{BusNumber: busNumber}
	}
	return bus, nil
}

func (s *BusService) saveError(err error, busNumber int) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return &DuplicateBusNumberError{BusNumber: busNumber}
	}
	return fmt.Errorf("save bus %d: %w", busNumber, err)
}
