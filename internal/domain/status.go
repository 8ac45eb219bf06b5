package domain

import "strings"

const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

const (
	DeliveryRequested = "requested"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
	DeliveryCancelled = "cancelled"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
	TaskDelayed   = "delayed"
)

var urgencyRanks = map[string]int{
	UrgencyCritical: 4,
	UrgencyHigh:     3,
	UrgencyMedium:   2,
	UrgencyLow:      1,
}

var urgencyDeliveryDays = map[string]int{
	UrgencyCritical: 1,
	UrgencyHigh:     2,
	UrgencyMedium:   3,
	UrgencyLow:      4,
}

// UrgencyRank orders urgencies for request generation. Unknown values rank 0.
func UrgencyRank(urgency string) int {
	return urgencyRanks[strings.ToLower(urgency)]
}

// RequestedDeliveryDays returns how many days out a request of this urgency should land.
func RequestedDeliveryDays(urgency string) int {
	if days, ok := urgencyDeliveryDays[strings.ToLower(urgency)]; ok {
		return days
	}

	return 2
}

var deliveryTransitions = map[string][]string{
	DeliveryRequested: {DeliveryInTransit, DeliveryCancelled},
	DeliveryInTransit: {DeliveryDelivered, DeliveryCancelled},
}

// ParseDeliveryStatus normalizes a delivery status label (case-insensitive, "in-transit" accepted).
func ParseDeliveryStatus(label string) (string, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), "-", "_")
	switch normalized {
	case DeliveryRequested, DeliveryInTransit, DeliveryDelivered, DeliveryCancelled:
		return normalized, true
	}

	return "", false
}

// CanTransition reports whether a stock request may move from one delivery status to another.
func CanTransition(from, to string) bool {
	for _, next := range deliveryTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminalDelivery reports whether no further transitions are possible.
func IsTerminalDelivery(status string) bool {
	return status == DeliveryDelivered || status == DeliveryCancelled
}

// IsUnresolvedAlert reports whether an alert still blocks a new one for the same pair.
func IsUnresolvedAlert(status string) bool {
	return status == AlertStatusOpen || status == AlertStatusAcknowledged
}
