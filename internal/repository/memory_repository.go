package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bus_service/internal/models"
)

// MemoryStore keeps buses and routes in process. Routes hold bus ids the
// way the route_buses table does, so bus updates show up on every route.
// It enforces the same constraints as the database schema.
type MemoryStore struct {
	mu          sync.RWMutex
	buses       map[uint]models.Bus
	routes      map[uint]models.Route
	routeBuses  map[uint][]uint
	nextBusID   uint
	nextRouteID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buses:       make(map[uint]models.Bus),
		routes:      make(map[uint]models.Route),
		routeBuses:  make(map[uint][]uint),
		nextBusID:   1,
		nextRouteID: 1,
	}
}

// Buses returns the BusRepository view of the store.
func (s *MemoryStore) Buses() BusRepository {
	return &memoryBusRepository{store: s}
}

// Routes returns the RouteRepository view of the store.
func (s *MemoryStore) Routes() RouteRepository {
	return &memoryRouteRepository{store: s}
}

// hydrate builds the route value with its current bus records. Caller holds the lock.
func (s *MemoryStore) hydrate(id uint) models.Route {
	route := s.routes[id].Clone()
	route.Buses = make([]models.Bus, 0, len(s.routeBuses[id]))
	for _, busID := range s.routeBuses[id] {
		if bus, ok := s.buses[busID]; ok {
			route.Buses = append(route.Buses, bus)
		}
	}
	return route
}

// selectRoutes returns matching routes ordered by id. Caller holds the lock.
func (s *MemoryStore) selectRoutes(match func(models.Route) bool) []models.Route {
	ids := make([]uint, 0, len(s.routes))
	for id, route := range s.routes {
		if match(route) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	routes := make([]models.Route, 0, len(ids))
	for _, id := range ids {
		routes = append(routes, s.hydrate(id))
	}
	return routes
}

type memoryBusRepository struct {
	store *MemoryStore
}

func (r *memoryBusRepository) Save(_ context.Context, bus *models.Bus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.buses {
		if id != bus.ID && other.BusNumber == bus.BusNumber {
			return fmt.Errorf("%w: bus_number %d", ErrDuplicateKey, bus.BusNumber)
		}
	}

	now := time.Now()
	if bus.ID == 0 {
		bus.ID = s.nextBusID
		s.nextBusID++
	}
	if bus.CreatedAt.IsZero() {
		bus.CreatedAt = now
	}
	bus.UpdatedAt = now
	s.buses[bus.ID] = *bus
	return nil
}

func (r *memoryBusRepository) FindByID(_ context.Context, id uint) (*models.Bus, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	bus, ok := s.buses[id]
	if !ok {
		return nil, nil
	}
	return &bus, nil
}

func (r *memoryBusRepository) DeleteByID(_ context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for routeID, busIDs := range s.routeBuses {
		for _, busID := range busIDs {
			if busID == id {
				return fmt.Errorf("%w: bus %d used by route %d", ErrReferenced, id, routeID)
			}
		}
	}
	delete(s.buses, id)
	return nil
}

func (r *memoryBusRepository) FindAll(_ context.Context) ([]models.Bus, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	buses := make([]models.Bus, 0, len(s.buses))
	for _, bus := range s.buses {
		buses = append(buses, bus)
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i].ID < buses[j].ID })
	return buses, nil
}

func (r *memoryBusRepository) ExistsByNumber(ctx context.Context, busNumber int) (bool, error) {
	bus, err := r.FindByNumber(ctx, busNumber)
	return bus != nil, err
}

func (r *memoryBusRepository) FindByNumber(_ context.Context, busNumber int) (*models.Bus, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, bus := range s.buses {
		if bus.BusNumber == busNumber {
			found := bus
			return &found, nil
		}
	}
	return nil, nil
}

type memoryRouteRepository struct {
	store *MemoryStore
}

func (r *memoryRouteRepository) Save(_ context.Context, route *models.Route) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	busIDs := make([]uint, 0, len(route.Buses))
	seen := make(map[uint]bool, len(route.Buses))
	for _, bus := range route.Buses {
		if _, ok := s.buses[bus.ID]; !ok {
			return fmt.Errorf("%w: bus %d does not exist", ErrReferenced, bus.ID)
		}
		// the join table key is (route_id, bus_id)
		if seen[bus.ID] {
			continue
		}
		seen[bus.ID] = true
		busIDs = append(busIDs, bus.ID)
	}

	now := time.Now()
	if route.ID == 0 {
		route.ID = s.nextRouteID
		s.nextRouteID++
	}
	if route.CreatedAt.IsZero() {
		route.CreatedAt = now
	}
	route.UpdatedAt = now
	if route.Buses == nil {
		route.Buses = []models.Bus{}
	}

	stored := route.Clone()
	stored.Buses = nil
	s.routes[route.ID] = stored
	s.routeBuses[route.ID] = busIDs
	return nil
}

func (r *memoryRouteRepository) FindByID(_ context.Context, id uint) (*models.Route, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.routes[id]; !ok {
		return nil, nil
	}
	route := s.hydrate(id)
	return &route, nil
}

func (r *memoryRouteRepository) DeleteByID(_ context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.routes, id)
	delete(s.routeBuses, id)
	return nil
}

func (r *memoryRouteRepository) FindAll(_ context.Context) ([]models.Route, error) {
	return r.where(func(models.Route) bool { return true }), nil
}

func (r *memoryRouteRepository) FindByStart(_ context.Context, start string) ([]models.Route, error) {
	return r.where(func(route models.Route) bool { return route.Start == start }), nil
}

func (r *memoryRouteRepository) FindByDestination(_ context.Context, destination string) ([]models.Route, error) {
	return r.where(func(route models.Route) bool { return route.Destination == destination }), nil
}

func (r *memoryRouteRepository) FindByStartAndDestination(_ context.Context, start, destination string) ([]models.Route, error) {
	return r.where(func(route models.Route) bool {
		return route.Start == start && route.Destination == destination
	}), nil
}

func (r *memoryRouteRepository) FindContainingBus(_ context.Context, busID uint) ([]models.Route, error) {
	s := r.store
	return r.where(func(route models.Route) bool {
		for _, id := range s.routeBuses[route.ID] {
			if id == busID {
				return true
			}
		}
		return false
	}), nil
}

func (r *memoryRouteRepository) where(match func(models.Route) bool) []models.Route {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectRoutes(match)
}
