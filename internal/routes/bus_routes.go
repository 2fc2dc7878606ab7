package routes

import (
	"github.com/gin-gonic/gin"

	"bus_service/internal/controllers"
)

func BusRoutes(api *gin.RouterGroup, deps Dependencies) {
	bus := api.Group("/bus")
	{
		bus.GET("", deps.Buses.ListBuses)
		bus.GET("/:id", deps.Buses.GetBus)
		bus.GET("/number/:number", deps.Buses.GetBusByNumber)
	}

	admin := api.Group("/bus")
	admin.Use(deps.Auth.RequireAuthWithRole(controllers.AdminRole))
	{
		admin.POST("", deps.Buses.CreateBus)
		admin.PUT("/:id", deps.Buses.UpdateBus)
		admin.DELETE("/:id", deps.Buses.DeleteBus)
	}
}
