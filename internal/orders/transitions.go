package orders

import "github.com/vendorahq/vendora-backend/pkg/enums"

// allowedTransitions is the exhaustive order workflow. Statuses absent from a
// state's set are rejected with a state conflict; terminal states have empty
// sets.
var allowedTransitions = map[enums.OrderStatus]map[enums.OrderStatus]struct{}{
	enums.OrderStatusPending: {
		enums.OrderStatusAccepted:  {},
		enums.OrderStatusCancelled: {},
	},
	enums.OrderStatusAccepted: {
		enums.OrderStatusPreparing: {},
		enums.OrderStatusCancelled: {},
	},
	enums.OrderStatusPreparing: {
		enums.OrderStatusOnTheWay:  {},
		enums.OrderStatusCancelled: {},
	},
	enums.OrderStatusOnTheWay: {
		enums.OrderStatusDelivered: {},
		enums.OrderStatusCancelled: {},
	},
	enums.OrderStatusDelivered: {},
	enums.OrderStatusCancelled: {},
	enums.OrderStatusCompleted: {},
	enums.OrderStatusRefunded:  {},
}

// CanTransition reports whether the workflow allows moving from one status to
// another.
func CanTransition(from, to enums.OrderStatus) bool {
	next, known := allowedTransitions[from]
	if !known {
		return false
	}
	_, allowed := next[to]
	return allowed
}

// statusTimestampColumn maps each reachable status to the column stamped when
// the order enters it.
func statusTimestampColumn(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusAccepted:
		return "accepted_at"
	case enums.OrderStatusPreparing:
		return "preparing_at"
	case enums.OrderStatusOnTheWay:
		return "dispatched_at"
	case enums.OrderStatusDelivered:
		return "delivered_at"
	case enums.OrderStatusCompleted:
		return "completed_at"
	case enums.OrderStatusCancelled:
		return "cancelled_at"
	}
	return ""
}
