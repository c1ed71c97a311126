// Package booking holds the booking request lifecycle: draft creation, token prepayment,
// status transitions, payment and the derived progress aggregate. It has no storage
// dependencies; callers load a Request, apply an operation and persist the result.
package booking

import "time"

// Status is the review status of a booking request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusComplete Status = "complete"
)

// CostStatus records whether the customer has settled the request.
type CostStatus string

const (
	CostUnset CostStatus = ""
	CostPaid  CostStatus = "paid"
)

// SubTask is one of the independently tracked pieces of work on an accepted request.
type SubTask string

const (
	SubTaskFood     SubTask = "food"
	SubTaskDrinks   SubTask = "drinks"
	SubTaskCapacity SubTask = "capacity"
	SubTaskLocation SubTask = "location"
)

// SubTasks lists every sub-task in display order.
var SubTasks = []SubTask{SubTaskFood, SubTaskDrinks, SubTaskCapacity, SubTaskLocation}

// ParseSubTask returns the SubTask named by s or ErrUnknownSubTask.
func ParseSubTask(s string) (SubTask, error) {
	switch SubTask(s) {
	case SubTaskFood, SubTaskDrinks, SubTaskCapacity, SubTaskLocation:
		return SubTask(s), nil
	default:
		return "", ErrUnknownSubTask
	}
}

// SubStatus is the completion flag of a single sub-task. The zero value means not done.
type SubStatus string

const (
	SubStatusUnset     SubStatus = ""
	SubStatusCompleted SubStatus = "completed"
)

// Progress groups the four sub-task flags of a request.
type Progress struct {
	Food     SubStatus `json:"food_status"`
	Drinks   SubStatus `json:"drinks_status"`
	Capacity SubStatus `json:"capacity_status"`
	Location SubStatus `json:"location_status"`
}

// Get returns the flag for task.
func (p Progress) Get(task SubTask) SubStatus {
	switch task {
	case SubTaskFood:
		return p.Food
	case SubTaskDrinks:
		return p.Drinks
	case SubTaskCapacity:
		return p.Capacity
	case SubTaskLocation:
		return p.Location
	}
	return SubStatusUnset
}

func (p *Progress) set(task SubTask, s SubStatus) {
	switch task {
	case SubTaskFood:
		p.Food = s
	case SubTaskDrinks:
		p.Drinks = s
	case SubTaskCapacity:
		p.Capacity = s
	case SubTaskLocation:
		p.Location = s
	}
}

// Aggregate is the overall progress label shown to the customer. It is never stored.
type Aggregate string

const (
	AggregateCompleted Aggregate = "Completed"
	AggregatePending   Aggregate = "Pending"
)

// Event is the subset of an event's fields that a booking copies.
type Event struct {
	Title       string
	Location    string
	Type        string
	Food        string
	Drinks      string
	Capacity    int
	Cost        float64
	StartDate   string
	EndDate     string
	StartTime   string
	EndTime     string
	ImageBase64 string
}

// Draft is a booking the customer is preparing. It becomes a Request through Create.
type Draft struct {
	Event
	UserID       string
	TokenPaid    bool
	TokenPayment float64
}

// Request is a customer's booking of an event.
// swagger:model BookingRequest
type Request struct {
	Title        string     `json:"title"`
	Location     string     `json:"location"`
	Type         string     `json:"type"`
	Food         string     `json:"food"`
	Drinks       string     `json:"drinks"`
	Capacity     int        `json:"capacity"`
	Cost         float64    `json:"cost"`
	TokenPayment float64    `json:"token_payment"`
	TokenPaid    bool       `json:"token_paid"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	Status       Status     `json:"status"`
	CostStatus   CostStatus `json:"cost_status"`
	Progress     Progress   `json:"progress"`
	UserID       string     `json:"user_id"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	ImageBase64  string     `json:"image_base64,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
