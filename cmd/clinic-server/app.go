package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/config"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/appointment"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/medicine"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/invoice"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/reporting"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/sandbox"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/telemetry"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/store"
)

// app is the wired service graph shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  *store.Store
	fs     afero.Fs

	patients     *patient.Service
	medicines    *medicine.Service
	appointments *appointment.Service
	bills        *billing.Service
	invoices     *invoice.Renderer
	exporter     *reporting.Exporter
	seeder       *sandbox.Seeder
	metrics      *telemetry.Provider
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(level).With().Timestamp().Logger()
	}
	return logger
}

// loadConfig reads and validates configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, newLogger(cfg, os.Stderr), nil
}

// openApp loads configuration, opens the store and wires the services.
// Callers must close the returned app.
func openApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, store.Options{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("dialect", string(st.Dialect)).Msg("connected to database")
	return newApp(cfg, logger, st, afero.NewOsFs()), nil
}

func newApp(cfg *config.Config, logger zerolog.Logger, st *store.Store, fs afero.Fs) *app {
	a := &app{cfg: cfg, logger: logger, store: st, fs: fs}
	a.patients = patient.NewService(st.Patients, logger)
	a.medicines = medicine.NewService(st.Medicines, logger)
	a.appointments = appointment.NewService(st.Appointments, st.Patients, logger)
	a.bills = billing.NewService(st.Bills, st.Patients, st.Tx, logger)
	a.invoices = invoice.NewRenderer(a.bills, fs, invoice.Options{Dir: cfg.InvoiceDir, Title: cfg.InvoiceTitle}, logger)
	a.exporter = reporting.NewExporter(st, logger)
	a.seeder = sandbox.NewSeeder(st, a.bills, logger)
	a.metrics = telemetry.NewProvider(telemetry.Config{
		ServiceName:    "clinic",
		MetricsEnabled: telemetry.BoolPtr(cfg.MetricsEnabled),
	}, st.PoolStats)
	return a
}

func (a *app) Close() { a.store.Close() }
