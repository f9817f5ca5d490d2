package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.POST("", h.Create)
		bookings.POST("/:id/reschedule", h.Reschedule)
		bookings.DELETE("/:id", h.Cancel)
	}

	teachers := g.Group("/teachers")
	teachers.Use(authMiddleware)
	{
		teachers.GET("/:id/availability", h.Availability)
	}
}
