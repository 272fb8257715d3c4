package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the reflow API under /api/v1.
func RegisterRoutes(router *gin.Engine, handler *ReflowHandler) {
	api := router.Group("/api/v1")
	{
		api.POST("/reflow", handler.Reflow)
	}
}
