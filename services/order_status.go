package services

import "github.com/yeremiapane/restaurant-ordering/models"

var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCanceled},
	models.OrderStatusConfirmed:  {models.OrderStatusPreparing, models.OrderStatusCanceled},
	models.OrderStatusPreparing:  {models.OrderStatusReady, models.OrderStatusCanceled},
	models.OrderStatusReady:      {models.OrderStatusServed, models.OrderStatusDelivering, models.OrderStatusCanceled},
	models.OrderStatusServed:     {models.OrderStatusCompleted},
	models.OrderStatusDelivering: {models.OrderStatusCompleted, models.OrderStatusCanceled},
	models.OrderStatusCompleted:  {},
	models.OrderStatusCanceled:   {},
}

// IsKnownOrderStatus reports whether status is part of the order state machine.
func IsKnownOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func terminalOrderStatuses() []string {
	return []string{models.OrderStatusCompleted, models.OrderStatusCanceled}
}
