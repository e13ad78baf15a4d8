package models

// OrderStatus is the workflow state of an order.
// PENDING -> PROCESSING -> COMPLETED, with CANCELED reachable from any
// non-terminal state. COMPLETED and CANCELED are terminal.
type OrderStatus int

const (
	OrderStatusPending OrderStatus = iota
	OrderStatusProcessing
	OrderStatusCompleted
	OrderStatusCanceled
)

// Desc returns the human-readable description stored next to the code
func (s OrderStatus) Desc() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusCanceled:
		return "Canceled"
	default:
		return "Unknown Status"
	}
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "PENDING"
	case OrderStatusProcessing:
		return "PROCESSING"
	case OrderStatusCompleted:
		return "COMPLETED"
	case OrderStatusCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the known codes
func (s OrderStatus) Valid() bool {
	return s >= OrderStatusPending && s <= OrderStatusCanceled
}

// IsTerminal reports whether no further status change is allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}
