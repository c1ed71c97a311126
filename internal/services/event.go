package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventbooking/internal/booking"
	"eventbooking/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	feed           domain.ChangeFeed
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, feed domain.ChangeFeed, logger *slog.Logger, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		feed:           feed,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// EventChange is published on the events topic after every catalogue write.
type EventChange struct {
	Action string        `json:"action"`
	Title  string        `json:"title"`
	Event  *domain.Event `json:"event,omitempty"`
}

func validateEvent(event *domain.Event) error {
	event.Title = strings.TrimSpace(event.Title)
	if problems := booking.ValidateEvent(event.BookingEvent()); len(problems) > 0 {
		return &booking.ValidationError{Problems: problems}
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEvent(event); err != nil {
		return err
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("event %q: %w", event.Title, err)
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	publish(ctx, s.feed, s.logger, domain.TopicEvents, EventChange{Action: "created", Title: event.Title, Event: event})
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, title string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.GetByTitle(ctx, title)
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ReplaceEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEvent(event); err != nil {
		return err
	}
	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Replace(ctx, event); err != nil {
		return err
	}
	publish(ctx, s.feed, s.logger, domain.TopicEvents, EventChange{Action: "replaced", Title: event.Title, Event: event})
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, title string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, title); err != nil {
		return err
	}
	publish(ctx, s.feed, s.logger, domain.TopicEvents, EventChange{Action: "deleted", Title: title})
	return nil
}
