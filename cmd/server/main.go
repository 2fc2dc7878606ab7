package main

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"bus_service/internal/config"
	"bus_service/internal/controllers"
	"bus_service/internal/logger"
	"bus_service/internal/middleware"
	"bus_service/internal/repository"
	"bus_service/internal/routes"
	"bus_service/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}

	// Initialize structured logging to stdout and file
	if err := logger.Setup(cfg.Log.File, cfg.Log.Level); err != nil {
		logrus.WithError(err).Fatal("could not set up logging")
	}

	buses, routeRepo, err := openStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not open store")
	}

	hub := controllers.NewChangeHub()
	defer hub.Close()

	guard := services.NewUsageGuard(routeRepo)
	busService := services.NewBusService(buses, guard, hub)
	routeService := services.NewRouteService(routeRepo, buses, guard, hub)
	builder := services.NewRouteBuilder(buses)
	ranking := services.NewRankingEngine(cfg.Ranking.StrictCriteria)

	auth := middleware.NewAuth(cfg.Auth.Enabled, cfg.Auth.JWTSecret)
	deps := routes.Dependencies{
		Auth:   auth,
		Buses:  controllers.NewBusController(busService),
		Routes: controllers.NewRouteController(routeService, builder, ranking),
		Hub:    hub,
	}
	if auth.Enabled() {
		deps.Login = controllers.NewAuthController(auth, cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash)
	}

	r := routes.SetupRouter(deps)

	// Wrap with CORS
	handler := middleware.EnableCORS(r, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port)
	logrus.WithFields(logrus.Fields{
		"addr":  addr,
		"store": cfg.Store,
		"auth":  cfg.Auth.Enabled,
	}).Info("server running")
	if err := http.ListenAndServe(addr, handler); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func openStore(cfg *config.AppConfig) (repository.BusRepository, repository.RouteRepository, error) {
	if cfg.Store == "memory" {
		store := repository.NewMemoryStore()
		return store.Buses(), store.Routes(), nil
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewGormBusRepository(db), repository.NewGormRouteRepository(db), nil
}
