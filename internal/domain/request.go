package domain

import (
	"context"

	"eventbooking/internal/booking"
)

// BookingOverrides are the fields a customer may change from the event when booking.
// Nil fields keep the event's value.
type BookingOverrides struct {
	Food      *string
	Drinks    *string
	Capacity  *int
	StartDate *string
	EndDate   *string
	StartTime *string
	EndTime   *string
}

// RequestView is a request together with its derived progress label.
// swagger:model RequestView
type RequestView struct {
	*booking.Request
	OverallStatus booking.Aggregate `json:"overall_status"`
}

// NewRequestView wraps r with its aggregate status.
func NewRequestView(r *booking.Request) *RequestView {
	return &RequestView{Request: r, OverallStatus: booking.AggregateStatus(r)}
}

// RequestRepository defines storage for booking requests, keyed by event title.
type RequestRepository interface {
	Create(ctx context.Context, r *booking.Request) error
	GetByTitle(ctx context.Context, title string) (*booking.Request, error)
	List(ctx context.Context, params PaginationParams) ([]*booking.Request, int, error)
	ListByUserID(ctx context.Context, userID string) ([]*booking.Request, error)
	ListByAssignee(ctx context.Context, email string) ([]*booking.Request, error)
	// UpdateStatus writes r's status only while the stored status is still from.
	UpdateStatus(ctx context.Context, r *booking.Request, from booking.Status) error
	UpdateCostStatus(ctx context.Context, r *booking.Request) error
	UpdateSubStatus(ctx context.Context, title string, task booking.SubTask, status booking.SubStatus) error
}

// RequestService routes every booking request change through the lifecycle rules.
type RequestService interface {
	PayToken(ctx context.Context, eventTitle string, caller Principal) (*Payment, error)
	CreateRequest(ctx context.Context, eventTitle string, overrides BookingOverrides, receiptID string, caller Principal) (*booking.Request, error)
	GetRequest(ctx context.Context, title string, caller Principal) (*booking.Request, error)
	ListRequests(ctx context.Context, params PaginationParams) ([]*booking.Request, int, error)
	ListMyRequests(ctx context.Context, caller Principal) ([]*booking.Request, error)
	ListAssignedRequests(ctx context.Context, caller Principal) ([]*booking.Request, error)
	Accept(ctx context.Context, title, employeeEmail string) (*booking.Request, error)
	Reject(ctx context.Context, title string) (*booking.Request, error)
	Complete(ctx context.Context, title string) (*booking.Request, error)
	SetSubStatus(ctx context.Context, title string, task booking.SubTask, completed bool, caller Principal) (*booking.Request, error)
	Pay(ctx context.Context, title string, caller Principal) (req *booking.Request, charged bool, err error)
}
