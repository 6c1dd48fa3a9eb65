package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ordering/config"
	"github.com/yeremiapane/restaurant-ordering/database"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/router"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Fatal("JWT_SECRET must be set")
	}
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		utils.InfoLogger.Infof("Publishing events to Kafka topic %s", cfg.KafkaTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			utils.ErrorLogger.Errorf("Failed to close event publisher: %v", err)
		}
	}()

	deps := services.Deps{
		DB:        db,
		Clock:     services.SystemClock{},
		Publisher: publisher,
		Limits: services.Limits{
			SessionDuration:             cfg.SessionDuration,
			MaxSessionsPerDevicePerHour: cfg.MaxSessionsPerDevicePerHour,
			MaxSessionsPerTable:         cfg.MaxSessionsPerTable,
			MaxLineQuantity:             cfg.MaxLineQuantity,
			MaxOrderLines:               cfg.MaxOrderLines,
			MaxNoteLength:               cfg.MaxNoteLength,
		},
	}

	sweeper := services.NewExpirySweeper(deps, cfg.SweepInterval, cfg.SweepBatchSize, cfg.AbandonedCartTTL)
	sweeper.Start()
	defer sweeper.Stop()

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	r := router.SetupRouter(deps, tokens, router.Options{
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitInterval: cfg.RateLimitInterval,
	})
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Errorf("Failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown failed: %v", err)
	}
}
