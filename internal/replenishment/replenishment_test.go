package replenishment

import (
	"testing"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func TestCalculateVelocity_AveragesDailySums(t *testing.T) {
	sales := []domain.SalesHistory{
		{ProductID: 1, Quantity: 4, SaleTime: day0},
		{ProductID: 1, Quantity: 6, SaleTime: day0.Add(2 * time.Hour)},
		{ProductID: 1, Quantity: 2, SaleTime: day0.AddDate(0, 0, 1)},
		{ProductID: 2, Quantity: 3, SaleTime: day0},
	}

	v := CalculateVelocity(sales, time.UTC)

	// 12 units over 2 distinct days, not 12 units over 3 rows
	assert.InDelta(t, 6.0, v[1], 1e-9)
	assert.InDelta(t, 3.0, v[2], 1e-9)
}

func TestCalculateVelocity_ProductsWithoutSalesAreAbsent(t *testing.T) {
	v := CalculateVelocity([]domain.SalesHistory{{ProductID: 7, Quantity: 1, SaleTime: day0}}, time.UTC)

	_, ok := v[8]
	assert.False(t, ok)
	assert.Len(t, v, 1)
}

func TestCalculateVelocity_DayBoundaryFollowsLocation(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 and 22:00 UTC are different calendar days in IST
	sales := []domain.SalesHistory{
		{ProductID: 1, Quantity: 2, SaleTime: time.Date(2024, 5, 10, 17, 0, 0, 0, time.UTC)},
		{ProductID: 1, Quantity: 2, SaleTime: time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)},
	}

	assert.InDelta(t, 4.0, CalculateVelocity(sales, time.UTC)[1], 1e-9)
	assert.InDelta(t, 2.0, CalculateVelocity(sales, ist)[1], 1e-9)
}

func TestWindowStart(t *testing.T) {
	assert.Nil(t, WindowStart(day0, 0))
	start := WindowStart(day0, 30)
	require.NotNil(t, start)
	assert.Equal(t, day0.AddDate(0, 0, -30), *start)
}

func TestDaysToDepletion_GuardsZeroVelocity(t *testing.T) {
	_, ok := DaysToDepletion(10, 0)
	assert.False(t, ok)

	days, ok := DaysToDepletion(10, 3)
	require.True(t, ok)
	assert.Equal(t, "3.33", days.StringFixed(2))
}

func TestTierUrgency(t *testing.T) {
	cases := map[float64]string{
		0.5: domain.UrgencyCritical,
		1:   domain.UrgencyCritical,
		1.5: domain.UrgencyHigh,
		2:   domain.UrgencyHigh,
		4:   domain.UrgencyMedium,
		4.1: domain.UrgencyLow,
		10:  domain.UrgencyLow,
	}
	for days, want := range cases {
		assert.Equal(t, want, TierUrgency(days), "days=%v", days)
	}
}

func TestPredict_QuantityTwentyVelocityFive(t *testing.T) {
	p := NewPredictor(6)
	shelves := []domain.ProductShelf{{ProductID: 1, ShelfID: 1, Quantity: 20}}

	preds := p.Predict(shelves, map[int64]float64{1: 5}, day0)

	require.Len(t, preds, 1)
	assert.Equal(t, 4.0, preds[0].DaysToDepletion)
	assert.True(t, preds[0].IsLowStock)
	assert.Equal(t, domain.UrgencyMedium, preds[0].Urgency)
	assert.Equal(t, time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC), preds[0].ExpectedDepletionDate)
}

func TestPredict_RoundsHalfAwayFromZero(t *testing.T) {
	p := NewPredictor(6)
	shelves := []domain.ProductShelf{{ProductID: 1, ShelfID: 1, Quantity: 5}}

	preds := p.Predict(shelves, map[int64]float64{1: 2}, day0)

	require.Len(t, preds, 1)
	assert.Equal(t, 2.5, preds[0].DaysToDepletion)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), preds[0].ExpectedDepletionDate)
}

func TestPredict_SkipsUnknownAndZeroVelocity(t *testing.T) {
	p := NewPredictor(6)
	shelves := []domain.ProductShelf{
		{ProductID: 1, ShelfID: 1, Quantity: 10},
		{ProductID: 2, ShelfID: 1, Quantity: 10},
		{ProductID: 3, ShelfID: 2, Quantity: 60},
	}

	preds := p.Predict(shelves, map[int64]float64{2: 0, 3: 5}, day0)

	require.Len(t, preds, 1)
	assert.Equal(t, int64(3), preds[0].ProductID)
	assert.False(t, preds[0].IsLowStock)
	assert.Equal(t, domain.UrgencyLow, preds[0].Urgency)
}

func TestOrderQuantity(t *testing.T) {
	assert.Equal(t, 80, OrderQuantity(100, 20))
	assert.Equal(t, 0, OrderQuantity(50, 50))
	assert.Equal(t, -5, OrderQuantity(50, 55))
}

func TestRequestedDeliveryDate(t *testing.T) {
	assert.Equal(t, day0.AddDate(0, 0, 1), RequestedDeliveryDate(domain.UrgencyCritical, day0))
	assert.Equal(t, day0.AddDate(0, 0, 4), RequestedDeliveryDate(domain.UrgencyLow, day0))
	assert.Equal(t, day0.AddDate(0, 0, 2), RequestedDeliveryDate("bogus", day0))
}

func TestResolveETA(t *testing.T) {
	supplied := day0.AddDate(0, 0, 7)

	assert.Equal(t, day0.AddDate(0, 0, 2), *ResolveETA(domain.DeliveryRequested, nil, day0))
	assert.Equal(t, day0.AddDate(0, 0, 1), *ResolveETA(domain.DeliveryInTransit, nil, day0))
	assert.Equal(t, day0, *ResolveETA(domain.DeliveryDelivered, nil, day0))
	assert.Equal(t, supplied, *ResolveETA(domain.DeliveryInTransit, &supplied, day0))
	assert.Nil(t, ResolveETA(domain.DeliveryCancelled, &supplied, day0))
	assert.Nil(t, ResolveETA("unknown", nil, day0))
}

func TestClassifyTask(t *testing.T) {
	assert.Equal(t, domain.TaskCompleted, ClassifyTask(day0, day0.Add(30*time.Minute), DefaultTaskSLA))
	assert.Equal(t, domain.TaskCompleted, ClassifyTask(day0, day0.Add(2*time.Hour), DefaultTaskSLA))
	assert.Equal(t, domain.TaskDelayed, ClassifyTask(day0, day0.Add(3*time.Hour), DefaultTaskSLA))
	assert.Equal(t, domain.TaskDelayed, ClassifyTask(day0, day0.Add(3*time.Hour), 0))
}

func TestSortAlertsByUrgency(t *testing.T) {
	alerts := []domain.ReplenishmentAlert{
		{ID: 1, Urgency: domain.UrgencyLow},
		{ID: 2, Urgency: "weird"},
		{ID: 3, Urgency: domain.UrgencyCritical},
		{ID: 4, Urgency: domain.UrgencyMedium},
		{ID: 5, Urgency: domain.UrgencyCritical},
	}

	SortAlertsByUrgency(alerts)

	ids := make([]int64, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	assert.Equal(t, []int64{3, 5, 4, 1, 2}, ids)
}

func TestGlobalRoundRobin(t *testing.T) {
	s := NewGlobalRoundRobin([]domain.Staff{{ID: 3, StoreID: 2}, {ID: 1, StoreID: 1}})

	var got []int64
	for i := 0; i < 4; i++ {
		staff, ok := s.Next(99)
		require.True(t, ok)
		got = append(got, staff.ID)
	}
	assert.Equal(t, []int64{1, 3, 1, 3}, got)

	_, ok := NewGlobalRoundRobin(nil).Next(1)
	assert.False(t, ok)
}

func TestStoreRoundRobin(t *testing.T) {
	s := NewStrategy(StrategyStore, []domain.Staff{
		{ID: 1, StoreID: 1},
		{ID: 2, StoreID: 2},
		{ID: 3, StoreID: 1},
	})

	a, _ := s.Next(1)
	b, _ := s.Next(1)
	c, _ := s.Next(2)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(3), b.ID)
	assert.Equal(t, int64(2), c.ID)

	_, ok := s.Next(9)
	assert.False(t, ok)
}
