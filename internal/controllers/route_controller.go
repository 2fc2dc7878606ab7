package controllers

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"bus_service/internal/models"
	"bus_service/internal/services"
)

// RouteResponse mirrors models.Route with the geometry as a GeoJSON string.
type RouteResponse struct {
	ID          uint         `json:"id"`
	Start       string       `json:"start"`
	Destination string       `json:"destination"`
	Geometry    string       `json:"geometry,omitempty"`
	Buses       []models.Bus `json:"buses"`
}

func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, err := convertWKBToGeoJSON(route.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("stored route geometry is not valid WKB")
	}
	buses := route.Buses
	if buses == nil {
		buses = []models.Bus{}
	}
	return RouteResponse{
		ID:          route.ID,
		Start:       route.Start,
		Destination: route.Destination,
		Geometry:    jsonGeom,
		Buses:       buses,
	}
}

func toRouteResponses(routes []models.Route) []RouteResponse {
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResponse(r))
	}
	return out
}

// parseAndConvertGeometry parses a GeoJSON LineString and returns it as WKB.
func parseAndConvertGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	if _, ok := g.(*geom.LineString); !ok {
		return nil, errors.New("geometry must be a LineString")
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// routeInput is the request body for creating and replacing a route.
type routeInput struct {
	Start       *string `json:"start" binding:"required"`
	Destination *string `json:"destination" binding:"required"`
	BusNumbers  []int   `json:"bus_numbers" binding:"required,dive,gt=0"`
	Geometry    string  `json:"geometry"` // GeoJSON LineString
}

// rankQuery holds the optional filter/sort parameters of route listings.
type rankQuery struct {
	Filter   bool   `form:"filter"`
	Sort     bool   `form:"sort"`
	Criteria string `form:"criteria,default=price"`
}

type RouteController struct {
	routes  *services.RouteService
	builder *services.RouteBuilder
	ranking *services.RankingEngine
}

func NewRouteController(routes *services.RouteService, builder *services.RouteBuilder, ranking *services.RankingEngine) *RouteController {
	return &RouteController{routes: routes, builder: builder, ranking: ranking}
}

// buildRoute validates the body and resolves its bus numbers.
func (rc *RouteController) buildRoute(c *gin.Context) (*models.Route, error) {
	var input routeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, bindingError(err)
	}

	wkbGeom, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		return nil, &services.ValidationError{Fields: []services.FieldError{
			{Field: "geometry", Reason: err.Error()},
		}}
	}

	route, err := rc.builder.Build(c.Request.Context(), input.BusNumbers, *input.Start, *input.Destination)
	if err != nil {
		return nil, err
	}
	route.Geometry = wkbGeom
	return route, nil
}

// CreateRoute stores a new route with the buses named by bus_numbers.
func (rc *RouteController) CreateRoute(c *gin.Context) {
	route, err := rc.buildRoute(c)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := rc.routes.Create(c.Request.Context(), route)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(*created)})
}

// UpdateRoute replaces start, destination, geometry and bus set of a route.
func (rc *RouteController) UpdateRoute(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	route, err := rc.buildRoute(c)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := rc.routes.Update(c.Request.Context(), id, route)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*updated)})
}

// AddBusToRoute appends one bus, by number, to an existing route.
func (rc *RouteController) AddBusToRoute(c *gin.Context) {
	number, err := busNumberParam(c, "bus_number")
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	route, err := rc.routes.AddBus(c.Request.Context(), id, number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*route)})
}

func (rc *RouteController) DeleteRoute(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := rc.routes.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}

func (rc *RouteController) GetRoute(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	route, err := rc.routes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*route)})
}

// ListRoutes returns every route, optionally filtered or sorted.
func (rc *RouteController) ListRoutes(c *gin.Context) {
	rc.listRanked(c, rc.routes.GetAll)
}

// ListRoutesFrom returns the routes starting at :start.
func (rc *RouteController) ListRoutesFrom(c *gin.Context) {
	start := c.Param("start")
	rc.listRanked(c, func(ctx context.Context) ([]models.Route, error) {
		return rc.routes.GetByStart(ctx, start)
	})
}

// ListRoutesTo returns the routes ending at :destination.
func (rc *RouteController) ListRoutesTo(c *gin.Context) {
	destination := c.Param("destination")
	rc.listRanked(c, func(ctx context.Context) ([]models.Route, error) {
		return rc.routes.GetByDestination(ctx, destination)
	})
}

// ListRoutesFromTo returns the routes from :start to :destination.
func (rc *RouteController) ListRoutesFromTo(c *gin.Context) {
	start, destination := c.Param("start"), c.Param("destination")
	rc.listRanked(c, func(ctx context.Context) ([]models.Route, error) {
		return rc.routes.GetByStartAndDestination(ctx, start, destination)
	})
}

func (rc *RouteController) listRanked(c *gin.Context, fetch func(context.Context) ([]models.Route, error)) {
	var q rankQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindingError(err))
		return
	}

	routes, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	ranked, err := rc.ranking.Apply(services.RankOptions{Filter: q.Filter, Sort: q.Sort, Criteria: q.Criteria}, routes)
	if err != nil {
		respondError(c, err)
		return
	}

	logrus.WithFields(requestFields(c)).WithFields(logrus.Fields{
		"filter":   q.Filter,
		"sort":     q.Sort,
		"criteria": q.Criteria,
		"found":    len(ranked),
	}).Debug("routes listed")
	c.JSON(http.StatusOK, gin.H{"data": toRouteResponses(ranked)})
}
