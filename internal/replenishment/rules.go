package replenishment

import (
	"sort"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
)

// DefaultTaskSLA is how long a restock may take before it counts as delayed.
const DefaultTaskSLA = 2 * time.Hour

// OrderQuantity is the number of units needed to fill the shelf back to capacity.
// A non-positive result means nothing should be ordered.
func OrderQuantity(shelfCapacity, onShelf int) int {
	return shelfCapacity - onShelf
}

// RequestedDeliveryDate derives the date a request should be delivered by from its urgency.
func RequestedDeliveryDate(urgency string, now time.Time) time.Time {
	return now.AddDate(0, 0, domain.RequestedDeliveryDays(urgency))
}

// DefaultETA is the estimated arrival for a delivery status when the caller supplies none.
func DefaultETA(status string, now time.Time) *time.Time {
	var eta time.Time
	switch status {
	case domain.DeliveryRequested:
		eta = now.AddDate(0, 0, 2)
	case domain.DeliveryInTransit:
		eta = now.AddDate(0, 0, 1)
	case domain.DeliveryDelivered:
		eta = now
	default:
		return nil
	}
	return &eta
}

// ResolveETA applies the ETA rules of a status change: cancelled always clears the ETA,
// otherwise a caller-supplied ETA wins over the status default.
func ResolveETA(status string, requested *time.Time, now time.Time) *time.Time {
	if status == domain.DeliveryCancelled {
		return nil
	}
	if requested != nil {
		eta := *requested
		return &eta
	}
	return DefaultETA(status, now)
}

// ClassifyTask returns completed when the task finished within sla of assignment, delayed otherwise.
func ClassifyTask(assignedAt, completedAt time.Time, sla time.Duration) string {
	if sla <= 0 {
		sla = DefaultTaskSLA
	}
	if completedAt.Sub(assignedAt) <= sla {
		return domain.TaskCompleted
	}
	return domain.TaskDelayed
}

// SortAlertsByUrgency orders alerts most urgent first, oldest id first within a tier.
func SortAlertsByUrgency(alerts []domain.ReplenishmentAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := domain.UrgencyRank(alerts[i].Urgency), domain.UrgencyRank(alerts[j].Urgency)
		if ri != rj {
			return ri > rj
		}
		return alerts[i].ID < alerts[j].ID
	})
}
