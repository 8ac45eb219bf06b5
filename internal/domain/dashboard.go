package domain

import "time"

// InventorySummary is the headline card data of the dashboard
type InventorySummary struct {
	TotalProducts      int       `json:"total_products" db:"total_products"`
	TotalShelves       int       `json:"total_shelves" db:"total_shelves"`
	UnitsOnShelf       int       `json:"units_on_shelf" db:"units_on_shelf"`
	EmptyPairs         int       `json:"empty_pairs" db:"empty_pairs"`
	OpenAlerts         int       `json:"open_alerts" db:"open_alerts"`
	AcknowledgedAlerts int       `json:"acknowledged_alerts" db:"acknowledged_alerts"`
	InFlightRequests   int       `json:"in_flight_requests" db:"in_flight_requests"`
	PendingTasks       int       `json:"pending_tasks" db:"pending_tasks"`
	DelayedTasks       int       `json:"delayed_tasks" db:"delayed_tasks"`
	GeneratedAt        time.Time `json:"generated_at" db:"-"`
}

// ShelfMetric represents utilisation of a single shelf
type ShelfMetric struct {
	ShelfID      int64   `json:"shelf_id" db:"shelf_id"`
	ShelfCode    string  `json:"shelf_code" db:"shelf_code"`
	StoreID      int64   `json:"store_id" db:"store_id"`
	Capacity     int     `json:"capacity" db:"capacity"`
	Units        int     `json:"units" db:"units"`
	ProductCount int     `json:"product_count" db:"product_count"`
	Utilization  float64 `json:"utilization" db:"-"`
}

// StockoutEntry is one row of the stockout report
type StockoutEntry struct {
	ProductID       int64      `json:"product_id" db:"product_id"`
	ProductName     string     `json:"product_name" db:"product_name"`
	ShelfID         int64      `json:"shelf_id" db:"shelf_id"`
	ShelfCode       string     `json:"shelf_code" db:"shelf_code"`
	Quantity        int        `json:"quantity" db:"quantity"`
	AlertUrgency    *string    `json:"alert_urgency" db:"alert_urgency"`
	AlertStatus     *string    `json:"alert_status" db:"alert_status"`
	LastRestockedAt *time.Time `json:"last_restocked_at" db:"last_restocked_at"`
}

// DashboardFilter narrows dashboard queries to a set of stores.
type DashboardFilter struct {
	StoreIDs []int64 `json:"store_ids"`
}

// Dashboard aggregates all dashboard data
type Dashboard struct {
	Summary   *InventorySummary `json:"summary"`
	Shelves   []ShelfMetric     `json:"shelves"`
	Stockouts []StockoutEntry   `json:"stockouts"`
}
