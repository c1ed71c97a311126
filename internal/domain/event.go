package domain

import (
	"context"
	"time"

	"eventbooking/internal/booking"
)

// Event is a bookable event. Title is its identifier.
// swagger:model Event
type Event struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Food        string    `json:"food"`
	Drinks      string    `json:"drinks"`
	Capacity    int       `json:"capacity"`
	Cost        float64   `json:"cost"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingEvent returns the fields a booking copies from the event.
func (e *Event) BookingEvent() booking.Event {
	return booking.Event{
		Title:       e.Title,
		Location:    e.Location,
		Type:        e.Type,
		Food:        e.Food,
		Drinks:      e.Drinks,
		Capacity:    e.Capacity,
		Cost:        e.Cost,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		ImageBase64: e.ImageBase64,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByTitle(ctx context.Context, title string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	Replace(ctx context.Context, event *Event) error
	Delete(ctx context.Context, title string) error
}

// EventService defines the admin event catalogue operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, title string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ReplaceEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, title string) error
}
