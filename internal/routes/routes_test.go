package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_service/internal/controllers"
	"bus_service/internal/middleware"
	"bus_service/internal/repository"
	"bus_service/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, authEnabled bool) (*gin.Engine, *middleware.Auth) {
	t.Helper()
	store := repository.NewMemoryStore()
	hub := controllers.NewChangeHub()
	t.Cleanup(hub.Close)

	guard := services.NewUsageGuard(store.Routes())
	auth := middleware.NewAuth(authEnabled, "test-secret")
	deps := Dependencies{
		Auth:  auth,
		Buses: controllers.NewBusController(services.NewBusService(store.Buses(), guard, hub)),
		Routes: controllers.NewRouteController(
			services.NewRouteService(store.Routes(), store.Buses(), guard, hub),
			services.NewRouteBuilder(store.Buses()),
			services.NewRankingEngine(false),
		),
		Hub: hub,
	}
	if authEnabled {
		hash, err := controllers.HashPassword("pw")
		require.NoError(t, err)
		deps.Login = controllers.NewAuthController(auth, "admin", hash)
	}
	return SetupRouter(deps), auth
}

func send(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var newBus = gin.H{"bus_number": 1, "name": "Bus", "km_price": 1, "average_speed": 30}

func TestSetupRouter_Health(t *testing.T) {
	r, _ := newRouter(t, false)

	w := send(r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestSetupRouter_OpenWhenAuthDisabled(t *testing.T) {
	r, _ := newRouter(t, false)

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/v1/bus", "", newBus).Code)
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/v1/bus/number/1", "", nil).Code)
	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/v1/route", "",
		gin.H{"start": "A", "destination": "B", "bus_numbers": []int{1}}).Code)
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/v1/route/from/A/to/B?sort=true", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/auth/login", "", nil).Code)
}

func TestSetupRouter_MutationsRequireAdmin(t *testing.T) {
	r, auth := newRouter(t, true)

	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPost, "/api/v1/bus", "", newBus).Code)

	viewer, err := auth.GenerateToken("someone", "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, send(r, http.MethodPost, "/api/v1/bus", viewer, newBus).Code)

	w := send(r, http.MethodPost, "/auth/login", "", gin.H{"username": "admin", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodGet, "/auth/me", "", nil).Code)
	w = send(r, http.MethodGet, "/auth/me", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Subject string `json:"subject"`
		Role    string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "someone", me.Subject)
	assert.Equal(t, "viewer", me.Role)

	assert.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/v1/bus", login.Token, newBus).Code)
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/v1/bus", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodDelete, "/api/v1/bus/1", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodPut, "/api/v1/route/add_bus/1/to_route/1", "", nil).Code)
}
