package order

// Status is the server-owned order lifecycle state. The client validates
// transitions before requesting them but never applies one locally; the
// server's answer is authoritative.
type Status string

const (
	StatusConfirmed Status = "Confirmed"
	StatusProcessed Status = "Processed"
	StatusFulfilled Status = "Fulfilled"
	StatusCancelled Status = "Cancelled"
)

var statusTransitions = map[Status]map[Status]struct{}{
	StatusConfirmed: {
		StatusProcessed: {},
		StatusCancelled: {},
	},
	StatusProcessed: {
		StatusFulfilled: {},
		StatusCancelled: {},
	},
	StatusFulfilled: {},
	StatusCancelled: {},
}

// adminTargets are the statuses the admin update form may request.
// Confirmed is the submission-time status and never a target.
var adminTargets = map[Status]struct{}{
	StatusProcessed: {},
	StatusFulfilled: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether no further transition exists from s.
func (s Status) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	allowed, exists := statusTransitions[s]
	if !exists {
		return false
	}
	_, ok := allowed[next]
	return ok
}
