// backend-go/internal/repository/postgres/replenishment_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
)

type replenishmentRepository struct {
	db *DB
	q  sqlx.ExtContext
}

func NewReplenishmentRepository(db *DB) *replenishmentRepository {
	return &replenishmentRepository{db: db, q: db}
}

func (r *replenishmentRepository) WithTx(ctx context.Context, fn func(repo repository.ReplenishmentRepository) error) error {
	if _, inTx := r.q.(*sqlx.Tx); inTx {
		return fn(r)
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&replenishmentRepository{db: r.db, q: tx})
	})
}

// forUpdate returns a row-lock clause when the repository is bound to a transaction.
func (r *replenishmentRepository) forUpdate() string {
	if _, inTx := r.q.(*sqlx.Tx); inTx {
		return ` FOR UPDATE`
	}
	return ""
}

// get wraps GetContext, mapping sql.ErrNoRows to a nil result.
func get[T any](ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*T, error) {
	var out T
	if err := sqlx.GetContext(ctx, q, &out, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// Sales

func (r *replenishmentRepository) ListSales(ctx context.Context, since *time.Time) ([]domain.SalesHistory, error) {
	query := `SELECT id, store_id, product_id, quantity, sale_time FROM sales_history`
	var args []interface{}
	if since != nil {
		query += ` WHERE sale_time >= $1`
		args = append(args, *since)
	}
	query += ` ORDER BY sale_time, id`

	var sales []domain.SalesHistory
	if err := sqlx.SelectContext(ctx, r.q, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("error listing sales: %w", err)
	}
	return sales, nil
}

func (r *replenishmentRepository) CreateSale(ctx context.Context, sale *domain.SalesHistory) error {
	query := `
		INSERT INTO sales_history (store_id, product_id, quantity, sale_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRowxContext(ctx, query, sale.StoreID, sale.ProductID, sale.Quantity, sale.SaleTime).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("error creating sale: %w", classify(err))
	}
	return nil
}

// Shelves

const productShelfSelect = `
	SELECT ps.id, ps.product_id, ps.shelf_id, ps.quantity, ps.max_capacity, ps.last_restocked_at,
	       p.name AS product_name, s.code AS shelf_code, s.capacity AS shelf_capacity, s.store_id
	FROM product_shelves ps
	JOIN products p ON p.id = ps.product_id
	JOIN shelves s ON s.id = ps.shelf_id`

func (r *replenishmentRepository) ListProductShelves(ctx context.Context) ([]domain.ProductShelf, error) {
	var shelves []domain.ProductShelf
	if err := sqlx.SelectContext(ctx, r.q, &shelves, productShelfSelect+` ORDER BY ps.id`); err != nil {
		return nil, fmt.Errorf("error listing product shelves: %w", err)
	}
	return shelves, nil
}

func (r *replenishmentRepository) GetProductShelf(ctx context.Context, productID, shelfID int64) (*domain.ProductShelf, error) {
	ps, err := get[domain.ProductShelf](ctx, r.q, productShelfSelect+` WHERE ps.product_id = $1 AND ps.shelf_id = $2`, productID, shelfID)
	if err != nil {
		return nil, fmt.Errorf("error getting product shelf: %w", err)
	}
	return ps, nil
}

func (r *replenishmentRepository) FindProductShelfByProduct(ctx context.Context, productID, storeID int64) (*domain.ProductShelf, error) {
	query := productShelfSelect + ` WHERE ps.product_id = $1 AND ($2::bigint = 0 OR s.store_id = $2::bigint) ORDER BY ps.shelf_id LIMIT 1`
	ps, err := get[domain.ProductShelf](ctx, r.q, query, productID, storeID)
	if err != nil {
		return nil, fmt.Errorf("error finding product shelf: %w", err)
	}
	return ps, nil
}

func (r *replenishmentRepository) IncrementProductShelfStock(ctx context.Context, id int64, delta int, restockedAt time.Time) (int, error) {
	query := `
		UPDATE product_shelves
		SET quantity = quantity + $1, last_restocked_at = $2
		WHERE id = $3
		RETURNING quantity`
	var quantity int
	if err := r.q.QueryRowxContext(ctx, query, delta, restockedAt, id).Scan(&quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("product shelf: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("error restocking product shelf: %w", classify(err))
	}
	return quantity, nil
}

func (r *replenishmentRepository) UpdateProductShelfStock(ctx context.Context, ps *domain.ProductShelf) error {
	query := `UPDATE product_shelves SET quantity = $1, last_restocked_at = $2 WHERE id = $3`
	res, err := r.q.ExecContext(ctx, query, ps.Quantity, ps.LastRestockedAt, ps.ID)
	if err != nil {
		return fmt.Errorf("error updating product shelf: %w", classify(err))
	}
	return expectRow(res, "product shelf")
}

// Alerts

const alertSelect = `
	SELECT id, product_id, shelf_id, predicted_depletion_date, urgency, status, created_at
	FROM replenishment_alerts`

func (r *replenishmentRepository) ListAlerts(ctx context.Context, status string) ([]domain.ReplenishmentAlert, error) {
	query := alertSelect
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	var alerts []domain.ReplenishmentAlert
	if err := sqlx.SelectContext(ctx, r.q, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	return alerts, nil
}

func (r *replenishmentRepository) GetAlert(ctx context.Context, id int64) (*domain.ReplenishmentAlert, error) {
	alert, err := get[domain.ReplenishmentAlert](ctx, r.q, alertSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("error getting alert: %w", err)
	}
	return alert, nil
}

func (r *replenishmentRepository) HasUnresolvedAlert(ctx context.Context, productID, shelfID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM replenishment_alerts
			WHERE product_id = $1 AND shelf_id = $2 AND status IN ($3, $4)
		)`
	err := r.q.QueryRowxContext(ctx, query, productID, shelfID, domain.AlertStatusOpen, domain.AlertStatusAcknowledged).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking alerts: %w", err)
	}
	return exists, nil
}

func (r *replenishmentRepository) CreateAlert(ctx context.Context, alert *domain.ReplenishmentAlert) error {
	query := `
		INSERT INTO replenishment_alerts (product_id, shelf_id, predicted_depletion_date, urgency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRowxContext(ctx, query,
		alert.ProductID, alert.ShelfID, alert.PredictedDepletionDate,
		alert.Urgency, alert.Status, alert.CreatedAt,
	).Scan(&alert.ID)
	if err != nil {
		return fmt.Errorf("error creating alert: %w", classify(err))
	}
	return nil
}

func (r *replenishmentRepository) UpdateAlertStatus(ctx context.Context, id int64, status string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE replenishment_alerts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating alert: %w", classify(err))
	}
	return expectRow(res, "alert")
}

func (r *replenishmentRepository) DeleteAlert(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM replenishment_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting alert: %w", classify(err))
	}
	return expectRow(res, "alert")
}

// Stock requests

const stockRequestSelect = `
	SELECT id, store_id, product_id, quantity, delivery_status, request_date,
	       requested_delivery_date, alert_id, estimated_time_of_arrival
	FROM stock_requests`

func (r *replenishmentRepository) CreateStockRequest(ctx context.Context, req *domain.StockRequest) error {
	query := `
		INSERT INTO stock_requests (
			store_id, product_id, quantity, delivery_status, request_date,
			requested_delivery_date, alert_id, estimated_time_of_arrival
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRowxContext(ctx, query,
		req.StoreID, req.ProductID, req.Quantity, req.DeliveryStatus, req.RequestDate,
		req.RequestedDeliveryDate, req.AlertID, req.EstimatedTimeOfArrival,
	).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("error creating stock request: %w", classify(err))
	}
	return nil
}

func (r *replenishmentRepository) GetStockRequest(ctx context.Context, id int64) (*domain.StockRequest, error) {
	req, err := get[domain.StockRequest](ctx, r.q, stockRequestSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("error getting stock request: %w", err)
	}
	return req, nil
}

func (r *replenishmentRepository) ListStockRequests(ctx context.Context, status string) ([]domain.StockRequest, error) {
	query := stockRequestSelect
	var args []interface{}
	if status != "" {
		query += ` WHERE delivery_status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	var reqs []domain.StockRequest
	if err := sqlx.SelectContext(ctx, r.q, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("error listing stock requests: %w", err)
	}
	return reqs, nil
}

func (r *replenishmentRepository) UpdateStockRequest(ctx context.Context, req *domain.StockRequest) error {
	query := `
		UPDATE stock_requests
		SET delivery_status = $1, estimated_time_of_arrival = $2, quantity = $3
		WHERE id = $4`
	res, err := r.q.ExecContext(ctx, query, req.DeliveryStatus, req.EstimatedTimeOfArrival, req.Quantity, req.ID)
	if err != nil {
		return fmt.Errorf("error updating stock request: %w", classify(err))
	}
	return expectRow(res, "stock request")
}

func (r *replenishmentRepository) CreateDeliveredStockRequest(ctx context.Context, d *domain.DeliveredStockRequest) error {
	query := `
		INSERT INTO delivered_stock_requests (
			stock_request_id, alert_id, product_id, store_id, quantity, delivered_at, is_processed
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRowxContext(ctx, query,
		d.StockRequestID, d.AlertID, d.ProductID, d.StoreID, d.Quantity, d.DeliveredAt, d.IsProcessed,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("error archiving delivered request: %w", classify(err))
	}
	return nil
}

func (r *replenishmentRepository) AppendDeliveryStatusLog(ctx context.Context, entry *domain.DeliveryStatusLog) error {
	query := `
		INSERT INTO delivery_status_logs (stock_request_id, status, estimated_time_of_arrival, changed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRowxContext(ctx, query,
		entry.StockRequestID, entry.Status, entry.EstimatedTimeOfArrival, entry.ChangedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("error appending delivery log: %w", classify(err))
	}
	return nil
}

func (r *replenishmentRepository) ListDeliveryStatusLogs(ctx context.Context, requestID int64) ([]domain.DeliveryStatusLog, error) {
	query := `
		SELECT id, stock_request_id, status, estimated_time_of_arrival, changed_at
		FROM delivery_status_logs
		WHERE stock_request_id = $1
		ORDER BY changed_at, id`
	var logs []domain.DeliveryStatusLog
	if err := sqlx.SelectContext(ctx, r.q, &logs, query, requestID); err != nil {
		return nil, fmt.Errorf("error listing delivery logs: %w", err)
	}
	return logs, nil
}

// Restock

const deliverySelect = `
	SELECT d.id, d.stock_request_id, d.alert_id, d.product_id, d.store_id, d.quantity, d.delivered_at, d.is_processed
	FROM delivered_stock_requests d`

func (r *replenishmentRepository) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	var staff []domain.Staff
	if err := sqlx.SelectContext(ctx, r.q, &staff, `SELECT id, store_id, name, role FROM staff ORDER BY id`); err != nil {
		return nil, fmt.Errorf("error listing staff: %w", err)
	}
	return staff, nil
}

func (r *replenishmentRepository) ListUnassignedDeliveries(ctx context.Context) ([]domain.DeliveredStockRequest, error) {
	query := deliverySelect + `
		WHERE d.is_processed = FALSE
		  AND NOT EXISTS (SELECT 1 FROM restock_tasks t WHERE t.product_id = d.product_id)
		ORDER BY d.delivered_at, d.id`
	var items []domain.DeliveredStockRequest
	if err := sqlx.SelectContext(ctx, r.q, &items, query); err != nil {
		return nil, fmt.Errorf("error listing delivered stock: %w", err)
	}
	return items, nil
}

func (r *replenishmentRepository) GetDelivery(ctx context.Context, id int64) (*domain.DeliveredStockRequest, error) {
	d, err := get[domain.DeliveredStockRequest](ctx, r.q, deliverySelect+` WHERE d.id = $1`+r.forUpdate(), id)
	if err != nil {
		return nil, fmt.Errorf("error getting delivered stock: %w", err)
	}
	return d, nil
}

func (r *replenishmentRepository) OldestUnprocessedDelivery(ctx context.Context, productID int64) (*domain.DeliveredStockRequest, error) {
	query := deliverySelect + `
		WHERE d.product_id = $1 AND d.is_processed = FALSE
		ORDER BY d.delivered_at, d.id
		LIMIT 1`
	d, err := get[domain.DeliveredStockRequest](ctx, r.q, query, productID)
	if err != nil {
		return nil, fmt.Errorf("error finding delivered stock: %w", err)
	}
	return d, nil
}

func (r *replenishmentRepository) MarkDeliveryProcessed(ctx context.Context, id int64) error {
	query := `UPDATE delivered_stock_requests SET is_processed = TRUE WHERE id = $1 AND is_processed = FALSE`
	res, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error marking delivery processed: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNoDeliveredStock
	}
	return nil
}

const taskSelect = `
	SELECT id, alert_id, delivered_id, product_id, shelf_id, assigned_to, status,
	       assigned_at, completed_at, quantity_restocked
	FROM restock_tasks`

func (r *replenishmentRepository) CreateRestockTask(ctx context.Context, task *domain.RestockTask) error {
	query := `
		INSERT INTO restock_tasks (
			alert_id, delivered_id, product_id, shelf_id, assigned_to, status,
			assigned_at, completed_at, quantity_restocked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRowxContext(ctx, query,
		task.AlertID, task.DeliveredID, task.ProductID, task.ShelfID, task.AssignedTo, task.Status,
		task.AssignedAt, task.CompletedAt, task.QuantityRestocked,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("error creating restock task: %w", classify(err))
	}
	return nil
}

func (r *replenishmentRepository) GetRestockTask(ctx context.Context, id int64) (*domain.RestockTask, error) {
	task, err := get[domain.RestockTask](ctx, r.q, taskSelect+` WHERE id = $1`+r.forUpdate(), id)
	if err != nil {
		return nil, fmt.Errorf("error getting restock task: %w", err)
	}
	return task, nil
}

func (r *replenishmentRepository) UpdateRestockTask(ctx context.Context, task *domain.RestockTask) error {
	query := `
		UPDATE restock_tasks
		SET status = $1, completed_at = $2, quantity_restocked = $3
		WHERE id = $4`
	res, err := r.q.ExecContext(ctx, query, task.Status, task.CompletedAt, task.QuantityRestocked, task.ID)
	if err != nil {
		return fmt.Errorf("error updating restock task: %w", classify(err))
	}
	return expectRow(res, "restock task")
}

func (r *replenishmentRepository) ListRestockTasksByStaff(ctx context.Context, staffID int64) ([]domain.RestockTask, error) {
	var tasks []domain.RestockTask
	if err := sqlx.SelectContext(ctx, r.q, &tasks, taskSelect+` WHERE assigned_to = $1 ORDER BY assigned_at, id`, staffID); err != nil {
		return nil, fmt.Errorf("error listing restock tasks: %w", err)
	}
	return tasks, nil
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
