package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo      *Repository
	storeID   int64
	productID int64
	shelfID   int64
	staffID   int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repo := New()

	storeID, err := repo.UpsertStore(ctx, &domain.Store{Code: "S1", Name: "Main Street"})
	require.NoError(t, err)
	categoryID, err := repo.UpsertCategory(ctx, &domain.Category{Name: "Dairy"})
	require.NoError(t, err)
	productID, err := repo.UpsertProduct(ctx, &domain.Product{SKU: "MILK-1L", Name: "Milk 1L", CategoryID: categoryID})
	require.NoError(t, err)
	shelfID, err := repo.UpsertShelf(ctx, &domain.Shelf{Code: "S1-D1", StoreID: storeID, CategoryID: categoryID, Capacity: 50})
	require.NoError(t, err)
	staffID, err := repo.UpsertStaff(ctx, &domain.Staff{StoreID: storeID, Name: "Asha", Role: "stocker"})
	require.NoError(t, err)
	_, err = repo.UpsertProductShelf(ctx, &domain.ProductShelf{ProductID: productID, ShelfID: shelfID, Quantity: 10, MaxCapacity: 40})
	require.NoError(t, err)

	return fixture{repo: repo, storeID: storeID, productID: productID, shelfID: shelfID, staffID: staffID}
}

func TestUpsertsAreKeyedOnNaturalKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	again, err := f.repo.UpsertStore(ctx, &domain.Store{Code: "S1", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, f.storeID, again)

	id, err := f.repo.StoreIDByCode(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, f.storeID, id)

	_, err = f.repo.ProductIDBySKU(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductShelfJoinsShelfFields(t *testing.T) {
	f := newFixture(t)

	ps, err := f.repo.GetProductShelf(context.Background(), f.productID, f.shelfID)
	require.NoError(t, err)
	require.NotNil(t, ps)
	assert.Equal(t, "Milk 1L", ps.ProductName)
	assert.Equal(t, "S1-D1", ps.ShelfCode)
	assert.Equal(t, 50, ps.ShelfCapacity)
	assert.Equal(t, f.storeID, ps.StoreID)

	missing, err := f.repo.GetProductShelf(context.Background(), f.productID, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		alert := &domain.ReplenishmentAlert{ProductID: f.productID, ShelfID: f.shelfID, Urgency: domain.UrgencyHigh, Status: domain.AlertStatusOpen}
		require.NoError(t, tx.CreateAlert(ctx, alert))

		alerts, err := tx.ListAlerts(ctx, "")
		require.NoError(t, err)
		assert.Len(t, alerts, 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	alerts, err := f.repo.ListAlerts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestWithTxCommits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.repo.WithTx(ctx, func(tx repository.ReplenishmentRepository) error {
		return tx.CreateAlert(ctx, &domain.ReplenishmentAlert{ProductID: f.productID, ShelfID: f.shelfID, Status: domain.AlertStatusOpen})
	})
	require.NoError(t, err)

	has, err := f.repo.HasUnresolvedAlert(ctx, f.productID, f.shelfID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDeleteAlertClearsReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alert := &domain.ReplenishmentAlert{ProductID: f.productID, ShelfID: f.shelfID, Status: domain.AlertStatusOpen}
	require.NoError(t, f.repo.CreateAlert(ctx, alert))
	req := &domain.StockRequest{StoreID: f.storeID, ProductID: f.productID, Quantity: 30, DeliveryStatus: domain.DeliveryRequested, AlertID: &alert.ID}
	require.NoError(t, f.repo.CreateStockRequest(ctx, req))

	require.NoError(t, f.repo.DeleteAlert(ctx, alert.ID))

	got, err := f.repo.GetStockRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AlertID)
	assert.ErrorIs(t, f.repo.DeleteAlert(ctx, alert.ID), domain.ErrNotFound)
}

func TestUnassignedDeliveriesExcludeTaskedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	var deliveredIDs []int64
	for i := 0; i < 2; i++ {
		req := &domain.StockRequest{StoreID: f.storeID, ProductID: f.productID, Quantity: 5, DeliveryStatus: domain.DeliveryDelivered}
		require.NoError(t, f.repo.CreateStockRequest(ctx, req))
		d := &domain.DeliveredStockRequest{StockRequestID: req.ID, ProductID: f.productID, StoreID: f.storeID, Quantity: 5, DeliveredAt: base.Add(time.Duration(-i) * time.Hour)}
		require.NoError(t, f.repo.CreateDeliveredStockRequest(ctx, d))
		deliveredIDs = append(deliveredIDs, d.ID)
	}

	items, err := f.repo.ListUnassignedDeliveries(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, deliveredIDs[1], items[0].ID, "oldest delivery first")

	task := &domain.RestockTask{DeliveredID: &deliveredIDs[1], ProductID: f.productID, ShelfID: f.shelfID, AssignedTo: f.staffID, Status: domain.TaskCompleted, AssignedAt: base}
	require.NoError(t, f.repo.CreateRestockTask(ctx, task))

	items, err = f.repo.ListUnassignedDeliveries(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "any task for the product, in any status, covers its deliveries")

	dup := &domain.RestockTask{DeliveredID: &deliveredIDs[1], ProductID: f.productID, ShelfID: f.shelfID, AssignedTo: f.staffID, AssignedAt: base}
	assert.ErrorIs(t, f.repo.CreateRestockTask(ctx, dup), domain.ErrConflict)
}

func TestMarkDeliveryProcessedOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := &domain.StockRequest{StoreID: f.storeID, ProductID: f.productID, Quantity: 5, DeliveryStatus: domain.DeliveryDelivered}
	require.NoError(t, f.repo.CreateStockRequest(ctx, req))
	d := &domain.DeliveredStockRequest{StockRequestID: req.ID, ProductID: f.productID, StoreID: f.storeID, Quantity: 5}
	require.NoError(t, f.repo.CreateDeliveredStockRequest(ctx, d))

	require.NoError(t, f.repo.MarkDeliveryProcessed(ctx, d.ID))
	assert.ErrorIs(t, f.repo.MarkDeliveryProcessed(ctx, d.ID), domain.ErrNoDeliveredStock)
	assert.ErrorIs(t, f.repo.MarkDeliveryProcessed(ctx, 999), domain.ErrNoDeliveredStock)
}

func TestIncrementProductShelfStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	ps, err := f.repo.GetProductShelf(ctx, f.productID, f.shelfID)
	require.NoError(t, err)

	qty, err := f.repo.IncrementProductShelfStock(ctx, ps.ID, 7, at)
	require.NoError(t, err)
	assert.Equal(t, 17, qty)

	qty, err = f.repo.IncrementProductShelfStock(ctx, ps.ID, 3, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 20, qty)

	ps, err = f.repo.GetProductShelf(ctx, f.productID, f.shelfID)
	require.NoError(t, err)
	assert.Equal(t, 20, ps.Quantity)
	require.NotNil(t, ps.LastRestockedAt)
	assert.Equal(t, at.Add(time.Hour), *ps.LastRestockedAt)

	_, err = f.repo.IncrementProductShelfStock(ctx, 999, 1, at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ps, err := f.repo.GetProductShelf(ctx, f.productID, f.shelfID)
	require.NoError(t, err)
	ps.Quantity = 0
	require.NoError(t, f.repo.UpdateProductShelfStock(ctx, ps))
	require.NoError(t, f.repo.CreateAlert(ctx, &domain.ReplenishmentAlert{ProductID: f.productID, ShelfID: f.shelfID, Urgency: domain.UrgencyCritical, Status: domain.AlertStatusOpen}))

	summary, err := f.repo.GetInventorySummary(ctx, domain.DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalProducts)
	assert.Equal(t, 1, summary.TotalShelves)
	assert.Equal(t, 1, summary.EmptyPairs)
	assert.Equal(t, 1, summary.OpenAlerts)

	other, err := f.repo.GetInventorySummary(ctx, domain.DashboardFilter{StoreIDs: []int64{f.storeID + 100}})
	require.NoError(t, err)
	assert.Zero(t, other.TotalShelves)

	stockouts, err := f.repo.GetStockoutReport(ctx, domain.DashboardFilter{})
	require.NoError(t, err)
	require.Len(t, stockouts, 1)
	require.NotNil(t, stockouts[0].AlertUrgency)
	assert.Equal(t, domain.UrgencyCritical, *stockouts[0].AlertUrgency)

	shelves, err := f.repo.GetShelfMetrics(ctx, domain.DashboardFilter{StoreIDs: []int64{f.storeID}})
	require.NoError(t, err)
	require.Len(t, shelves, 1)
	assert.Equal(t, 1, shelves[0].ProductCount)
}
