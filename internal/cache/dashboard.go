package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

const (
	dashboardArea             = "dashboard:summary"
	dashboardSummaryKeyPrefix = keyNamespace + ":" + dashboardArea
)

// DashboardSummaryCache stores inventory summaries per store filter.
type DashboardSummaryCache interface {
	GetSummary(ctx context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, bool, error)
	SetSummary(ctx context.Context, filter domain.DashboardFilter, summary *domain.InventorySummary) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	store *jsonStore
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardSummaryCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	store, err := newJSONStore(cfg, dashboardArea)
	if err != nil {
		return nil, err
	}
	return &redisDashboardCache{store: store}, nil
}

func NewNoopDashboardCache() DashboardSummaryCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetSummary(ctx context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, bool, error) {
	var summary domain.InventorySummary
	ok, err := c.store.get(ctx, summaryKeySuffix(filter), &summary)
	if err != nil || !ok {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisDashboardCache) SetSummary(ctx context.Context, filter domain.DashboardFilter, summary *domain.InventorySummary) error {
	return c.store.set(ctx, summaryKeySuffix(filter), summary)
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return c.store.clear(ctx)
}

func (c *redisDashboardCache) Close() error {
	return c.store.Close()
}

func (n *noopDashboardCache) GetSummary(ctx context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetSummary(ctx context.Context, filter domain.DashboardFilter, summary *domain.InventorySummary) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildDashboardSummaryKey(filter domain.DashboardFilter) string {
	return dashboardSummaryKeyPrefix + ":" + summaryKeySuffix(filter)
}

// summaryKeySuffix hashes the sorted store ids so equal filters share a key.
func summaryKeySuffix(filter domain.DashboardFilter) string {
	if len(filter.StoreIDs) == 0 {
		return "default"
	}

	ids := slices.Clone(filter.StoreIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	hash := sha1.Sum([]byte("store_ids=" + strings.Join(parts, ",")))
	return hex.EncodeToString(hash[:])
}
