package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sivpack/scheduler-api/internal/config"
	"github.com/sivpack/scheduler-api/internal/handler"
	appointmentHandler "github.com/sivpack/scheduler-api/internal/handler/appointment"
	patientHandler "github.com/sivpack/scheduler-api/internal/handler/patient"
	providerHandler "github.com/sivpack/scheduler-api/internal/handler/provider"
	webhookHandler "github.com/sivpack/scheduler-api/internal/handler/webhook"
	"github.com/sivpack/scheduler-api/internal/middleware"
	"github.com/sivpack/scheduler-api/internal/repository/postgres"
	"github.com/sivpack/scheduler-api/internal/router"
	appointmentService "github.com/sivpack/scheduler-api/internal/service/appointment"
	patientService "github.com/sivpack/scheduler-api/internal/service/patient"
	providerService "github.com/sivpack/scheduler-api/internal/service/provider"
	"github.com/sivpack/scheduler-api/internal/service/scheduling"
	webhookService "github.com/sivpack/scheduler-api/internal/service/webhook"
	"github.com/sivpack/scheduler-api/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	providerRepo := postgres.NewProviderRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	webhookRepo := postgres.NewWebhookRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Scheduling core
	policy := scheduling.BookingPolicy{
		MinLeadHours:       cfg.Booking.DelayInHours,
		MaxDurationMinutes: cfg.Booking.MaxLengthInMinutes,
	}
	validator := scheduling.NewValidator(
		patientRepo,
		providerRepo,
		appointmentRepo,
		scheduling.AlwaysOpen{},
		policy,
	)

	// Services
	appointmentSvc := appointmentService.NewService(appointmentRepo, outboxRepo, validator, appLogger)
	patientSvc := patientService.NewService(patientRepo)
	providerSvc := providerService.NewService(providerRepo)
	webhookSvc := webhookService.NewService(webhookRepo)

	// Handlers
	h := handler.NewHandler(db)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, cfg.API.BaseURL)
	patientH := patientHandler.NewHandler(patientSvc, cfg.API.BaseURL)
	providerH := providerHandler.NewHandler(providerSvc, cfg.API.BaseURL)
	webhookH := webhookHandler.NewHandler(webhookSvc, cfg.API.BaseURL)

	r := router.NewRouter(
		patientH,
		providerH,
		appointmentH,
		webhookH,
		h,
		router.Config{
			RateLimitRPS:   cfg.API.RateLimitRPS,
			RateLimitBurst: cfg.API.RateLimitBurst,
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsPrefix:  cfg.API.MetricsPrefix,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
