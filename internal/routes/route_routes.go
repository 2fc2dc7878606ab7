package routes

import (
	"github.com/gin-gonic/gin"

	"bus_service/internal/controllers"
)

func RouteRoutes(api *gin.RouterGroup, deps Dependencies) {
	route := api.Group("/route")
	{
		route.GET("", deps.Routes.ListRoutes)
		route.GET("/:id", deps.Routes.GetRoute)
		route.GET("/from/:start", deps.Routes.ListRoutesFrom)
		route.GET("/to/:destination", deps.Routes.ListRoutesTo)
		route.GET("/from/:start/to/:destination", deps.Routes.ListRoutesFromTo)
	}

	admin := api.Group("/route")
	admin.Use(deps.Auth.RequireAuthWithRole(controllers.AdminRole))
	{
		admin.POST("", deps.Routes.CreateRoute)
		admin.PUT("/:id", deps.Routes.UpdateRoute)
		admin.PUT("/add_bus/:bus_number/to_route/:id", deps.Routes.AddBusToRoute)
		admin.DELETE("/:id", deps.Routes.DeleteRoute)
	}
}
