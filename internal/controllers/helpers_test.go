package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"bus_service/internal/middleware"
	"bus_service/internal/models"
	"bus_service/internal/repository"
	"bus_service/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	hub    *ChangeHub
}

type serverOption func(*serverSettings)

type serverSettings struct {
	strict bool
}

func withStrictCriteria() serverOption {
	return func(s *serverSettings) { s.strict = true }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	var settings serverSettings
	for _, opt := range opts {
		opt(&settings)
	}

	store := repository.NewMemoryStore()
	hub := NewChangeHub()
	t.Cleanup(hub.Close)

	guard := services.NewUsageGuard(store.Routes())
	buses := NewBusController(services.NewBusService(store.Buses(), guard, hub))
	routes := NewRouteController(
		services.NewRouteService(store.Routes(), store.Buses(), guard, hub),
		services.NewRouteBuilder(store.Buses()),
		services.NewRankingEngine(settings.strict),
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.POST("/bus", buses.CreateBus)
	api.GET("/bus", buses.ListBuses)
	api.GET("/bus/:id", buses.GetBus)
	api.GET("/bus/number/:number", buses.GetBusByNumber)
	api.PUT("/bus/:id", buses.UpdateBus)
	api.DELETE("/bus/:id", buses.DeleteBus)

	api.POST("/route", routes.CreateRoute)
	api.GET("/route", routes.ListRoutes)
	api.GET("/route/:id", routes.GetRoute)
	api.PUT("/route/:id", routes.UpdateRoute)
	api.DELETE("/route/:id", routes.DeleteRoute)
	api.PUT("/route/add_bus/:bus_number/to_route/:id", routes.AddBusToRoute)
	api.GET("/route/from/:start", routes.ListRoutesFrom)
	api.GET("/route/to/:destination", routes.ListRoutesTo)
	api.GET("/route/from/:start/to/:destination", routes.ListRoutesFromTo)
	r.GET("/ws/changes", hub.HandleChanges)

	return &testServer{engine: r, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type busEnvelope struct {
	Bus models.Bus `json:"bus"`
}

type routeEnvelope struct {
	Route RouteResponse `json:"route"`
}

type routeList struct {
	Data []RouteResponse `json:"data"`
}

type errorBody struct {
	Error          string                `json:"error"`
	BusNumber      int                   `json:"bus_number"`
	MissingID      uint                  `json:"missing_id"`
	MissingNumber  int                   `json:"missing_number"`
	MissingNumbers []int                 `json:"missing_numbers"`
	BusUsingRoutes []uint                `json:"bus_using_routes"`
	RouteID        uint                  `json:"route_id"`
	Criteria       string                `json:"criteria"`
	Fields         []services.FieldError `json:"fields"`
}

func (s *testServer) createBus(t *testing.T, number int, price, speed float64) models.Bus {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/bus", gin.H{
		"bus_number":    number,
		"name":          "Bus",
		"km_price":      price,
		"average_speed": speed,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[busEnvelope](t, w).Bus
}

func (s *testServer) createRoute(t *testing.T, start, destination string, numbers ...int) RouteResponse {
	t.Helper()
	if numbers == nil {
		numbers = []int{}
	}
	w := s.do(t, http.MethodPost, "/api/v1/route", gin.H{
		"start":       start,
		"destination": destination,
		"bus_numbers": numbers,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[routeEnvelope](t, w).Route
}

func busNumbers(routes []RouteResponse) [][]int {
	out := make([][]int, 0, len(routes))
	for _, r := range routes {
		numbers := make([]int, 0, len(r.Buses))
		for _, b := range r.Buses {
			numbers = append(numbers, b.BusNumber)
		}
		out = append(out, numbers)
	}
	return out
}

func fieldNames(fields []services.FieldError) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Field)
	}
	return out
}
