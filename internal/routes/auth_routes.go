package routes

import (
	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine, deps Dependencies) {
	if deps.Login == nil {
		return
	}
	auth := r.Group("/auth")
	{
		auth.POST("/login", deps.Login.Login)
		auth.GET("/me", deps.Auth.RequireAuth(), deps.Login.Me)
	}
}
