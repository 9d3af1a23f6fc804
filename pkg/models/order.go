package models

// Order statuses as stored in the orders.status column.
const (
	StatusPending    = "PENDING"
	StatusAccepted   = "ACCEPTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// ActiveStatuses are the statuses that count as an order in flight for a
// driver. A driver may hold at most one order in these statuses.
var ActiveStatuses = []string{StatusAccepted, StatusInProgress}

type Order struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	DriverID       *string `json:"driver_id"`
	PickupLocation string  `json:"pickup_location"`
	Destination    string  `json:"destination"`
	DriverComment  string  `json:"driver_comment"`
	Price          float64 `json:"price"`
	Status         string  `json:"status"`
	Timestamp      int64   `json:"timestamp"`
	ScheduledTime  *int64  `json:"scheduled_time,omitempty"`
}

// OrderFilter selects a subset of orders. Zero values mean "any".
// UnassignedOnly additionally requires driver_id to be unset.
type OrderFilter struct {
	UserID         string
	DriverID       string
	Statuses       []string
	UnassignedOnly bool
}

// Matches reports whether the order satisfies the filter. The postgres repo
// compiles the same predicate to SQL; the memory store and the watch hub use
// this form directly.
func (f OrderFilter) Matches(o *Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.DriverID != "" && (o.DriverID == nil || *o.DriverID != f.DriverID) {
		return false
	}
	if f.UnassignedOnly && o.DriverID != nil {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type DriverStats struct {
	CompletedOrders int     `json:"completed_orders"`
	TotalEarnings   float64 `json:"total_earnings"`
}
