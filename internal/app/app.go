// Package app wires repositories, cache and services from configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresuchdata/shelfstock/backend-go/internal/api"
	"github.com/andresuchdata/shelfstock/backend-go/internal/cache"
	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/ingest"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository/memory"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// App holds the constructed services. Close releases the backing connections.
type App struct {
	Clock    clock.Clock
	Services *api.Services
	Scanner  *service.Scanner

	closers []func() error
}

// New builds the application for the configured storage driver. Anything opened
// before a failing step is closed again.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	if err := a.init(ctx, cfg); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to release resources after init error")
		}
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, cfg *config.Config) error {
	clk, err := clock.New(cfg.Replenishment.TimeZone)
	if err != nil {
		return err
	}
	a.Clock = clk

	dashCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("dashboard cache unavailable, continuing without it")
		dashCache = cache.NewNoopDashboardCache()
	}
	if c, ok := dashCache.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}

	repo, dashRepo, err := a.openRepository(ctx, cfg, clk)
	if err != nil {
		return err
	}

	replenishment := service.NewReplenishmentService(repo, clk, cfg.Replenishment, dashCache)
	a.Services = &api.Services{
		Replenishment: replenishment,
		Delivery:      service.NewDeliveryService(repo, clk, cfg.Replenishment, dashCache),
		Restock:       service.NewRestockService(repo, clk, cfg.Replenishment, dashCache),
		Dashboard:     service.NewDashboardService(dashRepo, clk, dashCache),
	}
	a.Scanner = service.NewScanner(replenishment, cfg.Replenishment.ScanInterval)
	return nil
}

func (a *App) openRepository(ctx context.Context, cfg *config.Config, clk clock.Clock) (repository.ReplenishmentRepository, repository.DashboardRepository, error) {
	switch cfg.Database.Driver {
	case DriverMemory:
		repo := memory.New()
		if cfg.Database.SeedDir != "" {
			if err := Seed(ctx, repo, cfg.Database.SeedDir, clk); err != nil {
				return nil, nil, err
			}
		}
		log.Info().Str("seed_dir", cfg.Database.SeedDir).Msg("using in-memory store")
		return repo, repo, nil

	case DriverPostgres, "":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				return nil, nil, err
			}
		}
		return postgres.NewReplenishmentRepository(db), postgres.NewDashboardRepository(db), nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}

// Seed loads master data and, when present, sales.csv from dir.
func Seed(ctx context.Context, repo repository.MasterDataRepository, dir string, clk clock.Clock) error {
	loader := ingest.NewLoader(repo, clk.Location())
	if _, err := loader.LoadMasterData(ctx, dir); err != nil {
		return fmt.Errorf("seed master data: %w", err)
	}

	salesPath := filepath.Join(dir, ingest.SalesFile)
	if _, err := os.Stat(salesPath); err != nil {
		return nil
	}
	n, err := loader.LoadSalesFile(ctx, salesPath)
	if err != nil {
		return fmt.Errorf("seed sales: %w", err)
	}
	log.Info().Int("rows", n).Msg("sales history loaded")
	return nil
}

func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
