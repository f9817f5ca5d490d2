package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tutorhive/lesson-booking-backend/internal/auth"
	"github.com/tutorhive/lesson-booking-backend/internal/booking"
	bookingHttp "github.com/tutorhive/lesson-booking-backend/internal/booking/http"
	"github.com/tutorhive/lesson-booking-backend/internal/material"
	materialHttp "github.com/tutorhive/lesson-booking-backend/internal/material/http"
	"github.com/tutorhive/lesson-booking-backend/internal/user"
	userHttp "github.com/tutorhive/lesson-booking-backend/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService     user.Service
	BookingService  booking.Service
	MaterialService material.Service
	JWTManager      *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, Logger, Auth) and registers routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // web client dev server
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	materialHandler := materialHttp.NewHandler(cfg.MaterialService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		materialHttp.RegisterRoutes(v1, materialHandler, authMiddleware)
	}

	return r
}
