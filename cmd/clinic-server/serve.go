package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/appointment"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/medicine"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/invoice"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/middleware"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/openapi"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/reporting"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/sandbox"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", true, "Apply pending embedded migrations before serving")
	return cmd
}

// newServer builds the echo instance with middleware and every route.
func newServer(a *app) *echo.Echo {
	cfg := a.cfg

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(a.metrics.MetricsMiddleware())
	e.Use(middleware.SecurityHeaders("/docs"))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", db.HealthHandler(db.PingFunc(a.store.Ping), a.store.PoolStats))
	if cfg.MetricsEnabled {
		e.GET("/metrics", a.metrics.PrometheusHandler())
	}

	apiV1 := e.Group("/api/v1")
	rl := middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	if rl.RequestsPerSecond <= 0 || rl.BurstSize <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rl))
	apiV1.Use(middleware.RequestTimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: cfg.RequestTimeout,
		Skipper: func(c echo.Context) bool { return strings.HasPrefix(c.Path(), "/api/v1/reports/exports/") },
	}))

	patient.NewHandler(a.patients).RegisterRoutes(apiV1)
	medicine.NewHandler(a.medicines).RegisterRoutes(apiV1)
	appointment.NewHandler(a.appointments).RegisterRoutes(apiV1)
	billing.NewHandler(a.bills).RegisterRoutes(apiV1)
	invoice.NewHandler(a.invoices).RegisterRoutes(apiV1)
	reporting.NewHandler(a.exporter).RegisterRoutes(apiV1)

	if cfg.IsDev() {
		sandbox.NewSeedHandler(a.seeder).RegisterRoutes(apiV1)
	}
	openapi.NewGenerator(e, version, "http://localhost:"+cfg.Port+"/api/v1").RegisterRoutes(apiV1)
	return e
}

func runServer(migrate bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	if migrate {
		n, err := a.store.Migrator(nil).Up(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("migration failed")
			return err
		}
		logger.Info().Int("applied", n).Msg("migrations up to date")
	}
	if a.cfg.SeedOnStart {
		if _, err := a.seeder.Seed(ctx, sandbox.SeedConfig{}); err != nil {
			logger.Error().Err(err).Msg("seed failed")
			return err
		}
	}
	if !a.invoices.DocumentAvailable() {
		logger.Warn().Msg("built without PDF support; document invoices are unavailable")
	}

	e := newServer(a)

	// Graceful shutdown
	errc := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.Port
		logger.Info().Str("addr", addr).Str("dialect", string(a.store.Dialect)).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
