package replenishment

import (
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

type productDay struct {
	productID int64
	day       string
}

// CalculateVelocity returns the average daily units sold per product.
//
// Sales are bucketed by product and calendar day (in loc), summed per day, and the
// daily sums are averaged. Products without any sale are absent from the map: a
// missing entry means "cannot predict", not "zero demand".
func CalculateVelocity(sales []domain.SalesHistory, loc *time.Location) map[int64]float64 {
	if loc == nil {
		loc = time.UTC
	}

	daily := make(map[productDay]int)
	for _, s := range sales {
		key := productDay{
			productID: s.ProductID,
			day:       s.SaleTime.In(loc).Format("2006-01-02"),
		}
		daily[key] += s.Quantity
	}

	totals := make(map[int64]int)
	days := make(map[int64]int)
	for key, qty := range daily {
		totals[key.productID] += qty
		days[key.productID]++
	}

	velocity := make(map[int64]float64, len(totals))
	for productID, total := range totals {
		velocity[productID] = float64(total) / float64(days[productID])
	}

	return velocity
}

// WindowStart returns the earliest sale time considered for a window of n days
// ending at now. A non-positive window means all history and yields nil.
func WindowStart(now time.Time, days int) *time.Time {
	if days <= 0 {
		return nil
	}
	start := now.AddDate(0, 0, -days)
	return &start
}
