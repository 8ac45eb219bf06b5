package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

func storeFilter(filter domain.DashboardFilter) func(storeID int64) bool {
	if len(filter.StoreIDs) == 0 {
		return func(int64) bool { return true }
	}
	return func(storeID int64) bool {
		return slices.Contains(filter.StoreIDs, storeID)
	}
}

func (r *Repository) GetInventorySummary(_ context.Context, filter domain.DashboardFilter) (*domain.InventorySummary, error) {
	include := storeFilter(filter)
	summary := &domain.InventorySummary{}

	r.read(func(s *state) {
		shelfIncluded := func(shelfID int64) bool {
			sh, ok := s.shelves[shelfID]
			return ok && include(sh.StoreID)
		}

		for _, sh := range s.shelves {
			if include(sh.StoreID) {
				summary.TotalShelves++
			}
		}

		products := make(map[int64]bool)
		for _, ps := range s.productShelves {
			if !shelfIncluded(ps.ShelfID) {
				continue
			}
			products[ps.ProductID] = true
			summary.UnitsOnShelf += ps.Quantity
			if ps.Quantity <= 0 {
				summary.EmptyPairs++
			}
		}
		summary.TotalProducts = len(products)

		for _, a := range s.alerts {
			if !shelfIncluded(a.ShelfID) {
				continue
			}
			switch a.Status {
			case domain.AlertStatusOpen:
				summary.OpenAlerts++
			case domain.AlertStatusAcknowledged:
				summary.AcknowledgedAlerts++
			}
		}

		for _, req := range s.requests {
			if include(req.StoreID) && !domain.IsTerminalDelivery(req.DeliveryStatus) {
				summary.InFlightRequests++
			}
		}

		for _, t := range s.tasks {
			if !shelfIncluded(t.ShelfID) {
				continue
			}
			switch t.Status {
			case domain.TaskPending:
				summary.PendingTasks++
			case domain.TaskDelayed:
				summary.DelayedTasks++
			}
		}
	})

	return summary, nil
}

func (r *Repository) GetShelfMetrics(_ context.Context, filter domain.DashboardFilter) ([]domain.ShelfMetric, error) {
	include := storeFilter(filter)
	var metrics []domain.ShelfMetric

	r.read(func(s *state) {
		for _, sh := range sortedValues(s.shelves, func(sh domain.Shelf) int64 { return sh.ID }) {
			if !include(sh.StoreID) {
				continue
			}
			m := domain.ShelfMetric{
				ShelfID:   sh.ID,
				ShelfCode: sh.Code,
				StoreID:   sh.StoreID,
				Capacity:  sh.Capacity,
			}
			for _, ps := range s.productShelves {
				if ps.ShelfID == sh.ID {
					m.Units += ps.Quantity
					m.ProductCount++
				}
			}
			metrics = append(metrics, m)
		}
	})

	return metrics, nil
}

func (r *Repository) GetStockoutReport(_ context.Context, filter domain.DashboardFilter) ([]domain.StockoutEntry, error) {
	include := storeFilter(filter)
	type row struct {
		entry   domain.StockoutEntry
		storeID int64
	}
	var rows []row

	r.read(func(s *state) {
		for _, ps := range s.productShelves {
			sh, ok := s.shelves[ps.ShelfID]
			if !ok || !include(sh.StoreID) {
				continue
			}
			entry := domain.StockoutEntry{
				ProductID:       ps.ProductID,
				ProductName:     s.products[ps.ProductID].Name,
				ShelfID:         ps.ShelfID,
				ShelfCode:       sh.Code,
				Quantity:        ps.Quantity,
				LastRestockedAt: ps.LastRestockedAt,
			}

			var latest *domain.ReplenishmentAlert
			for _, a := range s.alerts {
				if a.ProductID != ps.ProductID || a.ShelfID != ps.ShelfID || !domain.IsUnresolvedAlert(a.Status) {
					continue
				}
				if latest == nil || a.CreatedAt.After(latest.CreatedAt) ||
					(a.CreatedAt.Equal(latest.CreatedAt) && a.ID > latest.ID) {
					latest = ptr(a)
				}
			}
			if latest == nil && ps.Quantity > 0 {
				continue
			}
			if latest != nil {
				entry.AlertUrgency = ptr(latest.Urgency)
				entry.AlertStatus = ptr(latest.Status)
			}
			rows = append(rows, row{entry: entry, storeID: sh.StoreID})
		}
	})

	slices.SortFunc(rows, func(a, b row) int {
		if c := cmp.Compare(a.storeID, b.storeID); c != 0 {
			return c
		}
		if c := cmp.Compare(a.entry.ShelfCode, b.entry.ShelfCode); c != 0 {
			return c
		}
		return cmp.Compare(a.entry.ProductName, b.entry.ProductName)
	})

	entries := make([]domain.StockoutEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry)
	}
	return entries, nil
}
