package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_service/internal/controllers"
	"bus_service/internal/middleware"
)

// Dependencies are the handlers and middleware the router mounts.
type Dependencies struct {
	Auth   *middleware.Auth
	Login  *controllers.AuthController // nil when auth is disabled
	Buses  *controllers.BusController
	Routes *controllers.RouteController
	Hub    *controllers.ChangeHub
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(logrus.StandardLogger().Out),
		ginlog.WithSkipPath([]string{"/health", "/ws/changes"}),
	))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	BusRoutes(api, deps)
	RouteRoutes(api, deps)

	AuthRoutes(r, deps)
	WebSocketRoutes(r, deps)

	return r
}
