package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/nattawatp/quakewatch/internal/api"
	"github.com/nattawatp/quakewatch/internal/config"
	"github.com/nattawatp/quakewatch/internal/fetch"
	"github.com/nattawatp/quakewatch/internal/ingestion"
	"github.com/nattawatp/quakewatch/internal/location"
	"github.com/nattawatp/quakewatch/internal/logging"
	"github.com/nattawatp/quakewatch/internal/models"
	"github.com/nattawatp/quakewatch/internal/observability"
	"github.com/nattawatp/quakewatch/internal/repository"
	"github.com/nattawatp/quakewatch/internal/risk"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	usgs := fetch.NewUSGSClient(cfg.Sources.USGSBaseURL, metrics)
	tmd := fetch.NewTMDClient(cfg.Sources.TMDURL, metrics)

	// Start ingestion manager
	mgr := ingestion.NewManager(cfg, db, usgs, tmd, metrics)
	mgr.Start(ctx)

	assessor := risk.NewAssessor(usgs, cfg.Risk.RadiusKm, cfg.Risk.WindowDays)

	resolver := location.NewResolver(
		models.UserLocation{
			Latitude:  cfg.DefaultLocation.Latitude,
			Longitude: cfg.DefaultLocation.Longitude,
			City:      cfg.DefaultLocation.City,
			Region:    cfg.DefaultLocation.Region,
			Country:   cfg.DefaultLocation.Country,
			Timezone:  cfg.DefaultLocation.Timezone,
		},
		location.NewIPAPIProvider(""),
		location.NewGeolocationDBProvider(""),
	)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.API.RateLimitRPS, 0))

	handler := api.NewHandler(db, usgs, tmd, usgs, assessor, resolver, metrics)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
