package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers material routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.POST("/:id/materials", h.Upload)
		bookings.GET("/:id/materials", h.List)
	}

	materials := g.Group("/materials")
	materials.Use(authMiddleware)
	{
		materials.GET("/:id/download", h.Download)
		materials.GET("/:id/thumbnail", h.Thumbnail)
		materials.DELETE("/:id", h.Delete)
	}
}
