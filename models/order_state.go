package models

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderFilled    OrderStatus = "FILLED"
	OrderPartial   OrderStatus = "PARTIAL"
	OrderClosed    OrderStatus = "CLOSED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderExpired   OrderStatus = "EXPIRED"
)

// orderTransitions encodes the order state machine:
// PENDING -> FILLED | PARTIAL | REJECTED (dispatch outcome) or
// CANCELLED | EXPIRED before a fill; PARTIAL awaits further fills;
// a FILLED position can only move to PARTIAL or CLOSED.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderFilled, OrderPartial, OrderRejected, OrderCancelled, OrderExpired},
	OrderPartial: {OrderFilled, OrderClosed, OrderCancelled, OrderExpired},
	OrderFilled:  {OrderPartial, OrderClosed},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}
