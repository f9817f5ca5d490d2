package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutorhive/lesson-booking-backend/internal/api"
	"github.com/tutorhive/lesson-booking-backend/internal/auth"
	"github.com/tutorhive/lesson-booking-backend/internal/availability"
	"github.com/tutorhive/lesson-booking-backend/internal/booking"
	"github.com/tutorhive/lesson-booking-backend/internal/config"
	"github.com/tutorhive/lesson-booking-backend/internal/event"
	"github.com/tutorhive/lesson-booking-backend/internal/material"
	"github.com/tutorhive/lesson-booking-backend/internal/payment"
	"github.com/tutorhive/lesson-booking-backend/internal/pkg/storage"
	"github.com/tutorhive/lesson-booking-backend/internal/user"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router       *gin.Engine
	JWTManager   *auth.JWTManager
	Broadcaster  *event.Broadcaster
	Sweeper      *booking.Sweeper
	RefundWorker *payment.RefundWorker

	amqpEmitter *event.AMQPEmitter
}

// NewContainer initializes all modules and returns the container. The
// availability store is loaded from the database before the container is
// usable, so bookings observe every persisted reservation.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	// User module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher)

	// Availability store, warmed from persisted intervals
	availRepo := availability.NewPgxRepository(pool)
	store := availability.NewStore(availRepo)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load availability store: %w", err)
	}

	// Payment module
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)
	paymentRepo := payment.NewPgxRepository(pool)
	refundWorker := payment.NewRefundWorker(gateway, paymentRepo, cfg.RefundMaxAttempts, payment.LogAlert)
	correlator := payment.NewCorrelator(gateway, paymentRepo, cfg.PaymentConfirmTimeout, refundWorker)

	// Event emitters: in-process push subscribers always, broker when configured
	broadcaster := event.NewBroadcaster()
	emitters := event.Multi{broadcaster}

	var amqpEmitter *event.AMQPEmitter
	if cfg.AMQPURL != "" {
		var err error
		amqpEmitter, err = event.NewAMQPEmitter(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect event broker: %w", err)
		}
		emitters = append(emitters, amqpEmitter)
	} else {
		log.Println("AMQP_URL not set; broker event publishing disabled")
	}

	// Booking module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(bookingRepo, store, correlator, emitters, cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	sweeper := booking.NewSweeper(bookingRepo, bookingService, cfg.SweepInterval)

	// Material module
	blobs, err := storage.NewLocalBlobs(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to init material storage: %w", err)
	}
	materialRepo := material.NewRepository(pool)
	materialService := material.NewService(materialRepo, bookingService, blobs)

	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		UserService:     userService,
		BookingService:  bookingService,
		MaterialService: materialService,
		JWTManager:      jwtManager,
	})

	return &Container{
		Router:       router,
		JWTManager:   jwtManager,
		Broadcaster:  broadcaster,
		Sweeper:      sweeper,
		RefundWorker: refundWorker,
		amqpEmitter:  amqpEmitter,
	}, nil
}

// Close releases broker connections held by the container.
func (c *Container) Close() {
	if c.amqpEmitter != nil {
		if err := c.amqpEmitter.Close(); err != nil {
			log.Printf("failed to close event broker connection: %v", err)
		}
	}
}
