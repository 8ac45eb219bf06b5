package replenishment

import (
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/clock"
	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultLowStockDays is the days-to-depletion below which a pair counts as low stock.
const DefaultLowStockDays = 6

// Predictor estimates when on-shelf stock runs out.
type Predictor struct {
	lowStockDays decimal.Decimal
}

// NewPredictor creates a predictor. A non-positive threshold falls back to DefaultLowStockDays.
func NewPredictor(lowStockDays float64) *Predictor {
	if lowStockDays <= 0 {
		lowStockDays = DefaultLowStockDays
	}
	return &Predictor{lowStockDays: decimal.NewFromFloat(lowStockDays)}
}

// DaysToDepletion returns quantity/velocity rounded to two places.
// ok is false when velocity is zero or negative; no division happens then.
func DaysToDepletion(quantity int, velocity float64) (decimal.Decimal, bool) {
	if velocity <= 0 {
		return decimal.Zero, false
	}
	days := decimal.NewFromInt(int64(quantity)).
		DivRound(decimal.NewFromFloat(velocity), 8).
		Round(2)
	return days, true
}

// TierUrgency maps days-to-depletion onto an urgency tier:
// <=1 critical, <=2 high, <=4 medium, otherwise low.
func TierUrgency(days float64) string {
	switch {
	case days <= 1:
		return domain.UrgencyCritical
	case days <= 2:
		return domain.UrgencyHigh
	case days <= 4:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// Predict computes a prediction for every pair whose product has a positive velocity.
// Pairs without velocity are skipped.
func (p *Predictor) Predict(shelves []domain.ProductShelf, velocity map[int64]float64, now time.Time) []domain.DepletionPrediction {
	today := clock.StartOfDay(now)
	predictions := make([]domain.DepletionPrediction, 0, len(shelves))

	for _, ps := range shelves {
		v, ok := velocity[ps.ProductID]
		if !ok {
			continue
		}
		days, ok := DaysToDepletion(ps.Quantity, v)
		if !ok {
			continue
		}

		// decimal rounds half away from zero
		wholeDays := int(days.Round(0).IntPart())
		daysF := days.InexactFloat64()

		predictions = append(predictions, domain.DepletionPrediction{
			ProductID:             ps.ProductID,
			ProductName:           ps.ProductName,
			ShelfID:               ps.ShelfID,
			ShelfCode:             ps.ShelfCode,
			CurrentQuantity:       ps.Quantity,
			AverageDailySales:     decimal.NewFromFloat(v).Round(2).InexactFloat64(),
			DaysToDepletion:       daysF,
			ExpectedDepletionDate: today.AddDate(0, 0, wholeDays),
			IsLowStock:            days.LessThan(p.lowStockDays),
			Urgency:               TierUrgency(daysF),
		})
	}

	return predictions
}
