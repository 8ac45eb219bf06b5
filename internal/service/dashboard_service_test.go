package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct {
	stored      map[string]domain.InventorySummary
	hits        int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{stored: make(map[string]domain.InventorySummary)}
}

func key(filter domain.DashboardFilter) string {
	return fmt.Sprint(filter.StoreIDs)
}

func (c *countingCache) GetSummary(_ context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, bool, error) {
	s, ok := c.stored[key(filter)]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &s, true, nil
}

func (c *countingCache) SetSummary(_ context.Context, filter domain.DashboardFilter, summary *domain.InventorySummary) error {
	c.stored[key(filter)] = *summary
	return nil
}

func (c *countingCache) InvalidateAll(context.Context) error {
	c.invalidated++
	c.stored = make(map[string]domain.InventorySummary)
	return nil
}

func TestDashboardSummary_CachedUntilPipelineMutates(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	dashCache := newCountingCache()
	dash := NewDashboardService(w.repo, w.clock, dashCache)

	first, err := dash.GetSummary(ctx, domain.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalProducts)
	assert.Equal(t, 120, first.UnitsOnShelf)
	assert.Zero(t, first.OpenAlerts)
	assert.Equal(t, testNow, first.GeneratedAt)

	_, err = dash.GetSummary(ctx, domain.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, dashCache.hits)

	_, err = NewReplenishmentService(w.repo, w.clock, w.cfg, dashCache).PredictDepletion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dashCache.invalidated)

	fresh, err := dash.GetSummary(ctx, domain.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.OpenAlerts)
	assert.Equal(t, 1, dashCache.hits)
}

func TestDashboard_ShelfUtilizationAndStockouts(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	dash := NewDashboardService(w.repo, w.clock, nil)

	_, err := w.replenishment().PredictDepletion(ctx)
	require.NoError(t, err)

	board, err := dash.GetDashboard(ctx, domain.DashboardFilter{StoreIDs: []int64{w.storeID}})
	require.NoError(t, err)

	require.Len(t, board.Shelves, 2)
	for _, shelf := range board.Shelves {
		switch shelf.ShelfID {
		case w.dairyShelf:
			assert.Equal(t, 40.0, shelf.Utilization)
		case w.bakeryShelf:
			assert.Equal(t, 83.33, shelf.Utilization)
		}
	}

	require.Len(t, board.Stockouts, 1, "milk carries an open alert")
	assert.Equal(t, w.milkID, board.Stockouts[0].ProductID)
	require.NotNil(t, board.Stockouts[0].AlertUrgency)
	assert.Equal(t, domain.UrgencyMedium, *board.Stockouts[0].AlertUrgency)

	assert.Equal(t, 1, board.Summary.OpenAlerts)
}

func TestUtilization(t *testing.T) {
	assert.Equal(t, 0.0, utilization(10, 0))
	assert.Equal(t, 100.0, utilization(50, 50))
	assert.Equal(t, 33.33, utilization(1, 3))
	assert.Equal(t, 66.67, utilization(2, 3))
}
