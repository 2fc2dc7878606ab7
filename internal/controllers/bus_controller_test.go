package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_service/internal/models"
)

func TestBusController_CreateAndGet(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/bus", gin.H{
		"id":            99,
		"bus_number":    12,
		"name":          "Express",
		"km_price":      1.5,
		"average_speed": 40,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[busEnvelope](t, w).Bus
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, uint(99), created.ID)
	assert.Equal(t, 12, created.BusNumber)
	assert.Equal(t, "Express", created.Name)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bus/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[busEnvelope](t, w).Bus.ID)

	w = s.do(t, http.MethodGet, "/api/v1/bus/number/12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[busEnvelope](t, w).Bus.ID)

	w = s.do(t, http.MethodGet, "/api/v1/bus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Data []models.Bus `json:"data"`
	}](t, w)
	require.Len(t, list.Data, 1)
}

func TestBusController_DuplicateNumber(t *testing.T) {
	s := newTestServer(t)
	s.createBus(t, 7, 1, 30)

	w := s.do(t, http.MethodPost, "/api/v1/bus", gin.H{
		"bus_number": 7, "name": "Other", "km_price": 2, "average_speed": 50,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 7, decode[errorBody](t, w).BusNumber)
}

func TestBusController_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/bus", gin.H{"bus_number": 3, "km_price": -1, "average_speed": 20})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.ElementsMatch(t, []string{"name", "km_price"}, fieldNames(body.Fields))

	w = s.do(t, http.MethodPost, "/api/v1/bus", `{"bus_number": "abc"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"bus_number"}, fieldNames(decode[errorBody](t, w).Fields))

	w = s.do(t, http.MethodPost, "/api/v1/bus", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/bus/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBusController_NotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/bus/42", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, uint(42), decode[errorBody](t, w).MissingID)

	w = s.do(t, http.MethodGet, "/api/v1/bus/number/42", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 42, decode[errorBody](t, w).MissingNumber)

	w = s.do(t, http.MethodPut, "/api/v1/bus/42", gin.H{
		"bus_number": 1, "name": "x", "km_price": 1, "average_speed": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/bus/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBusController_Update(t *testing.T) {
	s := newTestServer(t)
	bus := s.createBus(t, 1, 1, 30)
	s.createBus(t, 2, 1, 30)

	w := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bus/%d", bus.ID), gin.H{
		"bus_number": 5, "name": "Renamed", "km_price": 3, "average_speed": 60,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[busEnvelope](t, w).Bus
	assert.Equal(t, bus.ID, updated.ID)
	assert.Equal(t, 5, updated.BusNumber)
	assert.Equal(t, "Renamed", updated.Name)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bus/%d", bus.ID), gin.H{
		"bus_number": 2, "name": "Clash", "km_price": 3, "average_speed": 60,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBusController_DeleteInUse(t *testing.T) {
	s := newTestServer(t)
	bus := s.createBus(t, 1, 1, 30)
	route := s.createRoute(t, "A", "B", 1)

	w := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bus/%d", bus.ID), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []uint{route.ID}, decode[errorBody](t, w).BusUsingRoutes)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/route/%d", route.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bus/%d", bus.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bus/%d", bus.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
