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
	"github.com/spotly-app/spotly-be/internal/api"
	"github.com/spotly-app/spotly-be/internal/auth"
	"github.com/spotly-app/spotly-be/internal/config"
	"github.com/spotly-app/spotly-be/internal/database"
	"github.com/spotly-app/spotly-be/internal/logger"
	"github.com/spotly-app/spotly-be/internal/monitoring"
	"github.com/spotly-app/spotly-be/internal/services"
	"github.com/spotly-app/spotly-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	auth.Init(cfg.JWTSecret)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	locationService := services.NewLocationService(db, hub, eventService)

	// Set up and run the background stats broadcaster
	statUpdater, err := monitoring.NewStatUpdater(db, hub, cfg.StatsSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.StatsSchedule).Msg("Invalid stats schedule")
	}
	go statUpdater.Run()

	// Set up router
	router := api.NewRouter(hub, userService, locationService, eventService, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
