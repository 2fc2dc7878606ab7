package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bus_service/internal/models"
	"bus_service/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (n *recordingNotifier) Publish(event ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *repository.MemoryStore
	buses    *BusService
	routes   *RouteService
	builder  *RouteBuilder
	guard    *UsageGuard
	notifier *recordingNotifier
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	guard := NewUsageGuard(store.Routes())
	return &fixture{
		store:    store,
		buses:    NewBusService(store.Buses(), guard, notifier),
		routes:   NewRouteService(store.Routes(), store.Buses(), guard, notifier),
		builder:  NewRouteBuilder(store.Buses()),
		guard:    guard,
		notifier: notifier,
	}
}

func (f *fixture) createBus(t *testing.T, number int, price, speed float64) models.Bus {
	t.Helper()
	bus, err := f.buses.Create(context.Background(), models.Bus{
		BusNumber:    number,
		Name:         "Bus",
		KmPrice:      price,
		AverageSpeed: speed,
	})
	require.NoError(t, err)
	return *bus
}

func (f *fixture) createRoute(t *testing.T, start, destination string, numbers ...int) models.Route {
	t.Helper()
	ctx := context.Background()
	built, err := f.builder.Build(ctx, numbers, start, destination)
	require.NoError(t, err)
	route, err := f.routes.Create(ctx, built)
	require.NoError(t, err)
	return *route
}
