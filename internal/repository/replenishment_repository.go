// backend-go/internal/repository/replenishment_repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

// Lookups return (nil, nil) when no row matches, callers translate that into domain errors.

type SalesRepository interface {
	ListSales(ctx context.Context, since *time.Time) ([]domain.SalesHistory, error)
	CreateSale(ctx context.Context, sale *domain.SalesHistory) error
}

type ShelfRepository interface {
	ListProductShelves(ctx context.Context) ([]domain.ProductShelf, error)
	GetProductShelf(ctx context.Context, productID, shelfID int64) (*domain.ProductShelf, error)
	// FindProductShelfByProduct returns the product's shelf with the lowest shelf id,
	// limited to storeID unless it is zero.
	FindProductShelfByProduct(ctx context.Context, productID, storeID int64) (*domain.ProductShelf, error)
	UpdateProductShelfStock(ctx context.Context, ps *domain.ProductShelf) error
	// IncrementProductShelfStock adds delta to the stored quantity and returns the new quantity.
	IncrementProductShelfStock(ctx context.Context, id int64, delta int, restockedAt time.Time) (int, error)
}

type AlertRepository interface {
	ListAlerts(ctx context.Context, status string) ([]domain.ReplenishmentAlert, error)
	GetAlert(ctx context.Context, id int64) (*domain.ReplenishmentAlert, error)
	HasUnresolvedAlert(ctx context.Context, productID, shelfID int64) (bool, error)
	CreateAlert(ctx context.Context, alert *domain.ReplenishmentAlert) error
	UpdateAlertStatus(ctx context.Context, id int64, status string) error
	DeleteAlert(ctx context.Context, id int64) error
}

type StockRequestRepository interface {
	CreateStockRequest(ctx context.Context, req *domain.StockRequest) error
	GetStockRequest(ctx context.Context, id int64) (*domain.StockRequest, error)
	ListStockRequests(ctx context.Context, status string) ([]domain.StockRequest, error)
	UpdateStockRequest(ctx context.Context, req *domain.StockRequest) error
	CreateDeliveredStockRequest(ctx context.Context, delivered *domain.DeliveredStockRequest) error
	AppendDeliveryStatusLog(ctx context.Context, entry *domain.DeliveryStatusLog) error
	ListDeliveryStatusLogs(ctx context.Context, requestID int64) ([]domain.DeliveryStatusLog, error)
}

type RestockRepository interface {
	ListStaff(ctx context.Context) ([]domain.Staff, error)
	// ListUnassignedDeliveries returns unprocessed delivered items whose product has no
	// restock task yet, in any status.
	ListUnassignedDeliveries(ctx context.Context) ([]domain.DeliveredStockRequest, error)
	// GetDelivery and GetRestockTask lock the row when called inside WithTx.
	GetDelivery(ctx context.Context, id int64) (*domain.DeliveredStockRequest, error)
	// OldestUnprocessedDelivery returns the earliest unprocessed delivered item for a product.
	OldestUnprocessedDelivery(ctx context.Context, productID int64) (*domain.DeliveredStockRequest, error)
	// MarkDeliveryProcessed flips the processed flag once; ErrNoDeliveredStock when it is
	// missing or already processed.
	MarkDeliveryProcessed(ctx context.Context, id int64) error
	CreateRestockTask(ctx context.Context, task *domain.RestockTask) error
	GetRestockTask(ctx context.Context, id int64) (*domain.RestockTask, error)
	UpdateRestockTask(ctx context.Context, task *domain.RestockTask) error
	ListRestockTasksByStaff(ctx context.Context, staffID int64) ([]domain.RestockTask, error)
}

type DashboardRepository interface {
	GetInventorySummary(ctx context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, error)
	GetShelfMetrics(ctx context.Context, filter domain.DashboardFilter) ([]domain.ShelfMetric, error)
	GetStockoutReport(ctx context.Context, filter domain.DashboardFilter) ([]domain.StockoutEntry, error)
}

// ReplenishmentRepository is the persistence surface of the replenishment pipeline.
type ReplenishmentRepository interface {
	SalesRepository
	ShelfRepository
	AlertRepository
	StockRequestRepository
	RestockRepository

	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(repo ReplenishmentRepository) error) error
}
