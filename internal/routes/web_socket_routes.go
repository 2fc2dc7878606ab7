package routes

import (
	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine, deps Dependencies) {
	if deps.Hub == nil {
		return
	}
	ws := r.Group("/ws")
	{
		ws.GET("/changes", deps.Hub.HandleChanges)
	}
}
