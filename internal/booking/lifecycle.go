package booking

import (
	"strings"
	"time"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:  {StatusAccepted: true, StatusRejected: true},
	StatusAccepted: {StatusComplete: true},
	StatusRejected: {},
	StatusComplete: {},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// Terminal reports whether no further status change is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusComplete
}

// NewDraft starts a booking of event for the given customer.
func NewDraft(event Event, userID string) *Draft {
	return &Draft{Event: event, UserID: userID}
}

// PayToken records the token prepayment on a draft. It reports whether a charge was made;
// a draft that is already paid is left unchanged.
func PayToken(d *Draft) (bool, error) {
	if !validCost(d.Cost) {
		return false, ErrInvalidCost
	}
	if d.TokenPaid {
		return false, nil
	}
	d.TokenPaid = true
	d.TokenPayment = TokenAmount(d.Cost)
	return true, nil
}

// Create validates a draft and turns it into a pending request.
func Create(d *Draft, now time.Time) (*Request, error) {
	problems := ValidateEvent(d.Event)
	if strings.TrimSpace(d.UserID) == "" {
		problems = append(problems, "customer is required")
	}
	if len(problems) > 0 {
		return nil, validationError(problems...)
	}
	if !d.TokenPaid {
		return nil, validationError("token payment of " + DisplayAmount(TokenAmount(d.Cost)) + " is required before booking")
	}
	return &Request{
		Title:        d.Title,
		Location:     d.Location,
		Type:         d.Type,
		Food:         d.Food,
		Drinks:       d.Drinks,
		Capacity:     d.Capacity,
		Cost:         d.Cost,
		TokenPayment: TokenAmount(d.Cost),
		TokenPaid:    true,
		Status:       StatusPending,
		CostStatus:   CostUnset,
		UserID:       d.UserID,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		ImageBase64:  d.ImageBase64,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func transition(r *Request, to Status) error {
	if !CanTransition(r.Status, to) {
		return &TransitionError{From: r.Status, To: to}
	}
	r.Status = to
	return nil
}

// Accept approves a pending request and assigns it to an employee.
func Accept(r *Request, employeeEmail string) error {
	employeeEmail = strings.TrimSpace(strings.ToLower(employeeEmail))
	if employeeEmail == "" {
		return validationError("employee email is required")
	}
	if err := transition(r, StatusAccepted); err != nil {
		return err
	}
	r.AssignedTo = employeeEmail
	return nil
}

// Reject declines a pending request.
func Reject(r *Request) error {
	return transition(r, StatusRejected)
}

// MarkComplete closes an accepted request. The customer must have paid.
func MarkComplete(r *Request) error {
	if !CanTransition(r.Status, StatusComplete) {
		return &TransitionError{From: r.Status, To: StatusComplete}
	}
	if r.CostStatus != CostPaid {
		return ErrPaymentRequired
	}
	r.Status = StatusComplete
	return nil
}

// SetSubStatus marks one sub-task done or not done, whatever the request status.
func SetSubStatus(r *Request, task SubTask, completed bool) error {
	if _, err := ParseSubTask(string(task)); err != nil {
		return err
	}
	s := SubStatusUnset
	if completed {
		s = SubStatusCompleted
	}
	r.Progress.set(task, s)
	return nil
}

// Pay settles the request. It reports whether a charge was made; paying an already paid
// request changes nothing.
func Pay(r *Request) (bool, error) {
	if !validCost(r.Cost) {
		return false, ErrInvalidCost
	}
	if r.CostStatus == CostPaid {
		return false, nil
	}
	r.CostStatus = CostPaid
	return true, nil
}

// AggregateStatus is Completed when all four sub-tasks are completed.
func AggregateStatus(r *Request) Aggregate {
	for _, t := range SubTasks {
		if r.Progress.Get(t) != SubStatusCompleted {
			return AggregatePending
		}
	}
	return AggregateCompleted
}
