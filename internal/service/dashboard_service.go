package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/shelfstock/backend-go/internal/cache"
	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	repo      repository.DashboardRepository
	clock     clock.Clock
	dashCache cache.DashboardSummaryCache
}

func NewDashboardService(repo repository.DashboardRepository, clk clock.Clock, dashCache cache.DashboardSummaryCache) *DashboardService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	return &DashboardService{repo: repo, clock: clk, dashCache: dashCache}
}

// GetSummary serves the inventory summary from cache when possible.
func (s *DashboardService) GetSummary(ctx context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, error) {
	if cached, ok, err := s.dashCache.GetSummary(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("dashboard cache read failed")
	} else if ok {
		return cached, nil
	}

	summary, err := s.repo.GetInventorySummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary.GeneratedAt = s.clock.Now()

	if err := s.dashCache.SetSummary(ctx, filter, summary); err != nil {
		log.Warn().Err(err).Msg("dashboard cache write failed")
	}
	return summary, nil
}

// GetShelfMetrics returns per-shelf fill with utilization as a percentage of capacity.
func (s *DashboardService) GetShelfMetrics(ctx context.Context, filter domain.DashboardFilter) ([]domain.ShelfMetric, error) {
	metrics, err := s.repo.GetShelfMetrics(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range metrics {
		metrics[i].Utilization = utilization(metrics[i].Units, metrics[i].Capacity)
	}
	if metrics == nil {
		metrics = []domain.ShelfMetric{}
	}
	return metrics, nil
}

func (s *DashboardService) GetStockouts(ctx context.Context, filter domain.DashboardFilter) ([]domain.StockoutEntry, error) {
	entries, err := s.repo.GetStockoutReport(ctx, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.StockoutEntry{}
	}
	return entries, nil
}

// GetDashboard loads every section concurrently.
func (s *DashboardService) GetDashboard(ctx context.Context, filter domain.DashboardFilter) (*domain.Dashboard, error) {
	var dashboard domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.GetSummary(gctx, filter)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		dashboard.Summary = summary
		return nil
	})
	g.Go(func() error {
		shelves, err := s.GetShelfMetrics(gctx, filter)
		if err != nil {
			return fmt.Errorf("shelves: %w", err)
		}
		dashboard.Shelves = shelves
		return nil
	})
	g.Go(func() error {
		stockouts, err := s.GetStockouts(gctx, filter)
		if err != nil {
			return fmt.Errorf("stockouts: %w", err)
		}
		dashboard.Stockouts = stockouts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func utilization(units, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(units)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(capacity)), 2)
	f, _ := pct.Float64()
	return f
}
