package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

// GetInventorySummary counts headline figures. Placeholders are shared by every subquery.
func (r *dashboardRepository) GetInventorySummary(ctx context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, error) {
	shelfClause, args := buildDashboardFilterClause(&filter, "s", 1)
	requestClause, _ := buildDashboardFilterClause(&filter, "sr", 1)

	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(DISTINCT ps.product_id) FROM product_shelves ps JOIN shelves s ON s.id = ps.shelf_id WHERE TRUE %[1]s) AS total_products,
			(SELECT COUNT(*) FROM shelves s WHERE TRUE %[1]s) AS total_shelves,
			(SELECT COALESCE(SUM(ps.quantity), 0) FROM product_shelves ps JOIN shelves s ON s.id = ps.shelf_id WHERE TRUE %[1]s) AS units_on_shelf,
			(SELECT COUNT(*) FROM product_shelves ps JOIN shelves s ON s.id = ps.shelf_id WHERE ps.quantity <= 0 %[1]s) AS empty_pairs,
			(SELECT COUNT(*) FROM replenishment_alerts a JOIN shelves s ON s.id = a.shelf_id WHERE a.status = 'open' %[1]s) AS open_alerts,
			(SELECT COUNT(*) FROM replenishment_alerts a JOIN shelves s ON s.id = a.shelf_id WHERE a.status = 'acknowledged' %[1]s) AS acknowledged_alerts,
			(SELECT COUNT(*) FROM stock_requests sr WHERE sr.delivery_status IN ('requested', 'in_transit') %[2]s) AS in_flight_requests,
			(SELECT COUNT(*) FROM restock_tasks t JOIN shelves s ON s.id = t.shelf_id WHERE t.status = 'pending' %[1]s) AS pending_tasks,
			(SELECT COUNT(*) FROM restock_tasks t JOIN shelves s ON s.id = t.shelf_id WHERE t.status = 'delayed' %[1]s) AS delayed_tasks`,
		shelfClause, requestClause)

	var summary domain.InventorySummary
	if err := sqlx.GetContext(ctx, r.db, &summary, query, args...); err != nil {
		log.Error().Err(err).Msg("dashboard: failed to fetch inventory summary")
		return nil, fmt.Errorf("failed to get inventory summary: %w", err)
	}
	return &summary, nil
}

func (r *dashboardRepository) GetShelfMetrics(ctx context.Context, filter domain.DashboardFilter) ([]domain.ShelfMetric, error) {
	clause, args := buildDashboardFilterClause(&filter, "s", 1)
	query := fmt.Sprintf(`
		SELECT s.id AS shelf_id, s.code AS shelf_code, s.store_id, s.capacity,
		       COALESCE(SUM(ps.quantity), 0) AS units,
		       COUNT(ps.id) AS product_count
		FROM shelves s
		LEFT JOIN product_shelves ps ON ps.shelf_id = s.id
		WHERE TRUE %s
		GROUP BY s.id, s.code, s.store_id, s.capacity
		ORDER BY s.id`, clause)

	var metrics []domain.ShelfMetric
	if err := sqlx.SelectContext(ctx, r.db, &metrics, query, args...); err != nil {
		log.Error().Err(err).Msg("dashboard: failed to fetch shelf metrics")
		return nil, fmt.Errorf("failed to get shelf metrics: %w", err)
	}
	return metrics, nil
}

// GetStockoutReport lists pairs that are empty or carry an unresolved alert, with the latest such alert.
func (r *dashboardRepository) GetStockoutReport(ctx context.Context, filter domain.DashboardFilter) ([]domain.StockoutEntry, error) {
	clause, args := buildDashboardFilterClause(&filter, "s", 1)
	query := fmt.Sprintf(`
		SELECT ps.product_id, p.name AS product_name, ps.shelf_id, s.code AS shelf_code,
		       ps.quantity, a.urgency AS alert_urgency, a.status AS alert_status, ps.last_restocked_at
		FROM product_shelves ps
		JOIN products p ON p.id = ps.product_id
		JOIN shelves s ON s.id = ps.shelf_id
		LEFT JOIN LATERAL (
			SELECT urgency, status FROM replenishment_alerts ra
			WHERE ra.product_id = ps.product_id AND ra.shelf_id = ps.shelf_id
			  AND ra.status IN ('open', 'acknowledged')
			ORDER BY ra.created_at DESC, ra.id DESC
			LIMIT 1
		) a ON TRUE
		WHERE (ps.quantity <= 0 OR a.status IS NOT NULL) %s
		ORDER BY s.store_id, s.code, p.name`, clause)

	var entries []domain.StockoutEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, args...); err != nil {
		log.Error().Err(err).Msg("dashboard: failed to fetch stockout report")
		return nil, fmt.Errorf("failed to get stockout report: %w", err)
	}
	return entries, nil
}
