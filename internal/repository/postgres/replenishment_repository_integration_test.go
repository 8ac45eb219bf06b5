//go:build integration

package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/

type pgFixture struct {
	db         *postgres.DB
	repo       repository.ReplenishmentRepository
	storeID    int64
	otherStore int64
	productID  int64
	shelfID    int64
	staffID    int64
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	db := postgres.Wrap(conn)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	_, err = db.ExecContext(ctx, `
		TRUNCATE restock_tasks, delivery_status_logs, delivered_stock_requests, stock_requests,
		         replenishment_alerts, sales_history, product_shelves, shelves, staff, products,
		         categories, stores
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	seed := repository.NewIngestRepository(db.DB.DB)
	f := &pgFixture{db: db, repo: postgres.NewReplenishmentRepository(db)}

	f.storeID, err = seed.UpsertStore(ctx, &domain.Store{Code: "BLR-01", Name: "Indiranagar"})
	require.NoError(t, err)
	f.otherStore, err = seed.UpsertStore(ctx, &domain.Store{Code: "BLR-02", Name: "Koramangala"})
	require.NoError(t, err)
	categoryID, err := seed.UpsertCategory(ctx, &domain.Category{Name: "Dairy"})
	require.NoError(t, err)
	f.productID, err = seed.UpsertProduct(ctx, &domain.Product{SKU: "MILK-1L", Name: "Milk 1L", CategoryID: categoryID, PackageSize: 1, Unit: "l"})
	require.NoError(t, err)
	f.shelfID, err = seed.UpsertShelf(ctx, &domain.Shelf{Code: "BLR-01-D1", StoreID: f.storeID, CategoryID: categoryID, Capacity: 50})
	require.NoError(t, err)
	f.staffID, err = seed.UpsertStaff(ctx, &domain.Staff{StoreID: f.storeID, Name: "Asha", Role: "stocker"})
	require.NoError(t, err)
	_, err = seed.UpsertProductShelf(ctx, &domain.ProductShelf{ProductID: f.productID, ShelfID: f.shelfID, Quantity: 20, MaxCapacity: 50})
	require.NoError(t, err)

	return f
}

func (f *pgFixture) deliver(t *testing.T, storeID int64, qty int, at time.Time) *domain.DeliveredStockRequest {
	t.Helper()
	ctx := context.Background()
	req := &domain.StockRequest{
		StoreID: storeID, ProductID: f.productID, Quantity: qty,
		DeliveryStatus: domain.DeliveryDelivered, RequestDate: at, RequestedDeliveryDate: at,
	}
	require.NoError(t, f.repo.CreateStockRequest(ctx, req))
	d := &domain.DeliveredStockRequest{StockRequestID: req.ID, ProductID: f.productID, StoreID: storeID, Quantity: qty, DeliveredAt: at}
	require.NoError(t, f.repo.CreateDeliveredStockRequest(ctx, d))
	return d
}

func (f *pgFixture) restock(strategy string, now time.Time) *service.RestockService {
	cfg := config.ReplenishmentConfig{TaskSLA: 2 * time.Hour, AssignmentStrategy: strategy}
	return service.NewRestockService(f.repo, clock.NewFixed(now), cfg, nil)
}

func TestFindProductShelfByProduct_StoreScope(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	anyStore, err := f.repo.FindProductShelfByProduct(ctx, f.productID, 0)
	require.NoError(t, err)
	require.NotNil(t, anyStore)
	assert.Equal(t, f.shelfID, anyStore.ShelfID)
	assert.Equal(t, f.storeID, anyStore.StoreID)

	same, err := f.repo.FindProductShelfByProduct(ctx, f.productID, f.storeID)
	require.NoError(t, err)
	require.NotNil(t, same)

	other, err := f.repo.FindProductShelfByProduct(ctx, f.productID, f.otherStore)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestListUnassignedDeliveries_DedupsByProduct(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first := f.deliver(t, f.storeID, 30, now.Add(-time.Hour))
	f.deliver(t, f.storeID, 10, now)

	items, err := f.repo.ListUnassignedDeliveries(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)

	task := &domain.RestockTask{DeliveredID: &first.ID, ProductID: f.productID, ShelfID: f.shelfID, AssignedTo: f.staffID, Status: domain.TaskPending, AssignedAt: now}
	require.NoError(t, f.repo.CreateRestockTask(ctx, task))

	items, err = f.repo.ListUnassignedDeliveries(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMarkDeliveryProcessed_OnlyOnce(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	d := f.deliver(t, f.storeID, 5, time.Now())

	require.NoError(t, f.repo.MarkDeliveryProcessed(ctx, d.ID))
	assert.ErrorIs(t, f.repo.MarkDeliveryProcessed(ctx, d.ID), domain.ErrNoDeliveredStock)
}

func TestOrganize_ConcurrentCallsRestockOnce(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	f.deliver(t, f.storeID, 30, now)

	assigned, err := f.restock("global", now).AssignTasksFromDeliveredStock(ctx)
	require.NoError(t, err)
	require.Len(t, assigned.Created, 1)
	task := assigned.Created[0]

	svc := f.restock("global", now.Add(30*time.Minute))
	const callers = 5
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.OrganizeDeliveredProduct(ctx, task.ID, task.AssignedTo)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrNoDeliveredStock)
	}
	assert.Equal(t, 1, succeeded)

	ps, err := f.repo.GetProductShelf(ctx, f.productID, f.shelfID)
	require.NoError(t, err)
	assert.Equal(t, 50, ps.Quantity)

	again, err := f.restock("global", now.Add(time.Hour)).AssignTasksFromDeliveredStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
}
