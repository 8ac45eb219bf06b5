package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/config"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// 2024-05-10 10:00 IST
var testNow = time.Date(2024, 5, 10, 10, 0, 0, 0, ist)

type world struct {
	repo  *memory.Repository
	clock *clock.Fixed
	cfg   config.ReplenishmentConfig

	storeID     int64
	otherStore  int64
	milkID      int64
	breadID     int64
	dairyShelf  int64
	bakeryShelf int64
	staff       []int64
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	w := &world{
		repo:  memory.New(),
		clock: clock.NewFixed(testNow),
		cfg: config.ReplenishmentConfig{
			LowStockDays:       6,
			TaskSLA:            2 * time.Hour,
			AssignmentStrategy: "global",
		},
	}

	var err error
	w.storeID, err = w.repo.UpsertStore(ctx, &domain.Store{Code: "BLR-01", Name: "Indiranagar"})
	require.NoError(t, err)
	w.otherStore, err = w.repo.UpsertStore(ctx, &domain.Store{Code: "BLR-02", Name: "Koramangala"})
	require.NoError(t, err)

	dairy, err := w.repo.UpsertCategory(ctx, &domain.Category{Name: "Dairy"})
	require.NoError(t, err)
	bakery, err := w.repo.UpsertCategory(ctx, &domain.Category{Name: "Bakery"})
	require.NoError(t, err)

	w.milkID, err = w.repo.UpsertProduct(ctx, &domain.Product{SKU: "MILK-1L", Name: "Milk 1L", CategoryID: dairy, PackageSize: 1, Unit: "l"})
	require.NoError(t, err)
	w.breadID, err = w.repo.UpsertProduct(ctx, &domain.Product{SKU: "BREAD-400", Name: "Bread 400g", CategoryID: bakery, PackageSize: 400, Unit: "g"})
	require.NoError(t, err)

	w.dairyShelf, err = w.repo.UpsertShelf(ctx, &domain.Shelf{Code: "BLR-01-D1", StoreID: w.storeID, CategoryID: dairy, Capacity: 50})
	require.NoError(t, err)
	w.bakeryShelf, err = w.repo.UpsertShelf(ctx, &domain.Shelf{Code: "BLR-01-B1", StoreID: w.storeID, CategoryID: bakery, Capacity: 120})
	require.NoError(t, err)

	_, err = w.repo.UpsertProductShelf(ctx, &domain.ProductShelf{ProductID: w.milkID, ShelfID: w.dairyShelf, Quantity: 20, MaxCapacity: 50})
	require.NoError(t, err)
	_, err = w.repo.UpsertProductShelf(ctx, &domain.ProductShelf{ProductID: w.breadID, ShelfID: w.bakeryShelf, Quantity: 100, MaxCapacity: 120})
	require.NoError(t, err)

	for _, name := range []string{"Asha", "Ravi"} {
		id, err := w.repo.UpsertStaff(ctx, &domain.Staff{StoreID: w.storeID, Name: name, Role: "stocker"})
		require.NoError(t, err)
		w.staff = append(w.staff, id)
	}

	// 5 units a day for both products over the two previous days
	for _, productID := range []int64{w.milkID, w.breadID} {
		for day := 1; day <= 2; day++ {
			at := testNow.AddDate(0, 0, -day)
			for _, qty := range []int{2, 3} {
				require.NoError(t, w.repo.InsertSale(ctx, &domain.SalesHistory{StoreID: w.storeID, ProductID: productID, Quantity: qty, SaleTime: at}))
			}
		}
	}

	return w
}

func (w *world) replenishment() *ReplenishmentService {
	return NewReplenishmentService(w.repo, w.clock, w.cfg, nil)
}

func (w *world) delivery() *DeliveryService {
	return NewDeliveryService(w.repo, w.clock, w.cfg, nil)
}

func (w *world) restock() *RestockService {
	return NewRestockService(w.repo, w.clock, w.cfg, nil)
}

// deliveredRequest walks the milk alert through request, dispatch and delivery.
func (w *world) deliveredRequest(t *testing.T) *domain.StockRequest {
	t.Helper()
	ctx := context.Background()

	_, err := w.replenishment().PredictDepletion(ctx)
	require.NoError(t, err)
	summaries, err := w.replenishment().CreateRequestsFromAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	_, err = w.delivery().Dispatch(ctx, summaries[0].RequestID, nil)
	require.NoError(t, err)
	req, err := w.delivery().MarkDelivered(ctx, summaries[0].RequestID, nil)
	require.NoError(t, err)
	return req
}
