package orders

import (
	"github.com/luciagrant/mercadito-backend/pkg/enums"
)

// transitions whitelists every legal status move. Paid and canceled are
// reachable only through their dedicated operations, never the generic
// status change.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingConfirmation: {
		enums.OrderStatusPendingPayment,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusPendingPayment: {
		enums.OrderStatusPaid,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusPaid: {
		enums.OrderStatusProcessing,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
	},
}

// CanTransition reports whether from may move to target.
func CanTransition(from, target enums.OrderStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == target {
			return true
		}
	}
	return false
}

// IsCancelable reports whether an order in the given status may still be
// canceled. Once paid, orders must be refunded out of band instead.
func IsCancelable(status enums.OrderStatus) bool {
	return status == enums.OrderStatusPendingConfirmation ||
		status == enums.OrderStatusPendingPayment
}

// RequiresPayment reports whether the target status needs a settled order.
// Fulfillment stages never start before money arrives.
func RequiresPayment(target enums.OrderStatus) bool {
	switch target {
	case enums.OrderStatusProcessing, enums.OrderStatusShipped, enums.OrderStatusDelivered:
		return true
	}
	return false
}
