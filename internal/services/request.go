package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventbooking/internal/booking"
	"eventbooking/internal/domain"
)

type requestService struct {
	requestRepo    domain.RequestRepository
	eventRepo      domain.EventRepository
	paymentRepo    domain.PaymentRepository
	employeeRepo   domain.EmployeeRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	feed           domain.ChangeFeed
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewRequestService(requestRepo domain.RequestRepository,
	eventRepo domain.EventRepository,
	paymentRepo domain.PaymentRepository,
	employeeRepo domain.EmployeeRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	feed domain.ChangeFeed,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RequestService {
	return &requestService{
		requestRepo:    requestRepo,
		eventRepo:      eventRepo,
		paymentRepo:    paymentRepo,
		employeeRepo:   employeeRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		feed:           feed,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func applyOverrides(e booking.Event, o domain.BookingOverrides) booking.Event {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Food, o.Food)
	set(&e.Drinks, o.Drinks)
	set(&e.StartDate, o.StartDate)
	set(&e.EndDate, o.EndDate)
	set(&e.StartTime, o.StartTime)
	set(&e.EndTime, o.EndTime)
	if o.Capacity != nil {
		e.Capacity = *o.Capacity
	}
	return e
}

func (s *requestService) PayToken(ctx context.Context, eventTitle string, caller domain.Principal) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByTitle(ctx, eventTitle)
	if err != nil {
		return nil, err
	}
	existing, err := s.paymentRepo.FindByRequest(ctx, event.Title, caller.UserID, domain.PaymentToken)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up token payment: %w", err)
	}
	// One request per title: once it is booked no further token is taken.
	if _, err := s.requestRepo.GetByTitle(ctx, event.Title); err == nil {
		return nil, fmt.Errorf("request for %q: %w", event.Title, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up request: %w", err)
	}

	draft := booking.NewDraft(event.BookingEvent(), caller.UserID)
	if _, err := booking.PayToken(draft); err != nil {
		return nil, err
	}
	p := &domain.Payment{
		ID:           uuid.NewString(),
		RequestTitle: event.Title,
		UserID:       caller.UserID,
		Kind:         domain.PaymentToken,
		Amount:       booking.LedgerAmount(draft.TokenPayment),
		CreatedAt:    s.now(),
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record token payment: %w", err)
	}
	s.logger.InfoContext(ctx, "token payment recorded", "event", event.Title, "user_id", caller.UserID, "amount", p.Amount.StringFixed(2))
	return p, nil
}

// tokenReceipt finds the caller's token payment for title. An empty receiptID looks the payment up
// by event and caller. It returns nil when no payment was made.
func (s *requestService) tokenReceipt(ctx context.Context, title, receiptID string, caller domain.Principal) (*domain.Payment, error) {
	var (
		p   *domain.Payment
		err error
	)
	if receiptID == "" {
		p, err = s.paymentRepo.FindByRequest(ctx, title, caller.UserID, domain.PaymentToken)
	} else {
		p, err = s.paymentRepo.GetByID(ctx, receiptID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		if receiptID != "" {
			return nil, &booking.ValidationError{Problems: []string{"payment receipt not found"}}
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token payment: %w", err)
	}
	if p.UserID != caller.UserID || p.RequestTitle != title || p.Kind != domain.PaymentToken {
		return nil, &booking.ValidationError{Problems: []string{"payment receipt does not match this booking"}}
	}
	return p, nil
}

func (s *requestService) CreateRequest(ctx context.Context, eventTitle string, overrides domain.BookingOverrides, receiptID string, caller domain.Principal) (*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByTitle(ctx, eventTitle)
	if err != nil {
		return nil, err
	}
	receipt, err := s.tokenReceipt(ctx, event.Title, strings.TrimSpace(receiptID), caller)
	if err != nil {
		return nil, err
	}
	draft := booking.NewDraft(applyOverrides(event.BookingEvent(), overrides), caller.UserID)
	if receipt != nil {
		draft.TokenPaid = true
		draft.TokenPayment = receipt.Amount.InexactFloat64()
	}
	r, err := booking.Create(draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.requestRepo.Create(ctx, r); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("request for %q: %w", r.Title, err)
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.changed(ctx, r)
	return r, nil
}

func (s *requestService) GetRequest(ctx context.Context, title string, caller domain.Principal) (*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.requestRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if caller.Role == domain.RoleCustomer && r.UserID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

func (s *requestService) ListRequests(ctx context.Context, params domain.PaginationParams) ([]*booking.Request, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, total, err := s.requestRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return list, total, nil
}

func (s *requestService) ListMyRequests(ctx context.Context, caller domain.Principal) ([]*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.requestRepo.ListByUserID(ctx, caller.UserID)
}

func (s *requestService) ListAssignedRequests(ctx context.Context, caller domain.Principal) ([]*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.requestRepo.ListByAssignee(ctx, normalizeEmail(caller.Email))
}

func (s *requestService) Accept(ctx context.Context, title, employeeEmail string) (*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	employeeEmail = normalizeEmail(employeeEmail)
	if employeeEmail != "" {
		if _, err := s.employeeRepo.GetByEmail(ctx, employeeEmail); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("employee %s: %w", employeeEmail, err)
			}
			return nil, fmt.Errorf("failed to look up employee: %w", err)
		}
	}
	return s.updateStatus(ctx, title, func(r *booking.Request) error {
		return booking.Accept(r, employeeEmail)
	})
}

func (s *requestService) Reject(ctx context.Context, title string) (*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.updateStatus(ctx, title, booking.Reject)
}

func (s *requestService) Complete(ctx context.Context, title string) (*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.updateStatus(ctx, title, booking.MarkComplete)
}

func (s *requestService) updateStatus(ctx context.Context, title string, apply func(*booking.Request) error) (*booking.Request, error) {
	r, err := s.requestRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	from := r.Status
	if err := apply(r); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.now()
	if err := s.requestRepo.UpdateStatus(ctx, r, from); err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}
	s.changed(ctx, r)
	s.notifyCustomer(ctx, r)
	return r, nil
}

func (s *requestService) SetSubStatus(ctx context.Context, title string, task booking.SubTask, completed bool, caller domain.Principal) (*booking.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.requestRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleAdmin && (r.AssignedTo == "" || r.AssignedTo != normalizeEmail(caller.Email)) {
		return nil, domain.ErrForbidden
	}
	if err := booking.SetSubStatus(r, task, completed); err != nil {
		return nil, err
	}
	if err := s.requestRepo.UpdateSubStatus(ctx, r.Title, task, r.Progress.Get(task)); err != nil {
		return nil, fmt.Errorf("failed to update %s status: %w", task, err)
	}
	s.changed(ctx, r)
	return r, nil
}

func (s *requestService) Pay(ctx context.Context, title string, caller domain.Principal) (*booking.Request, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.requestRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, false, err
	}
	if r.UserID != caller.UserID {
		return nil, false, domain.ErrForbidden
	}
	charged, err := booking.Pay(r)
	if err != nil || !charged {
		return r, false, err
	}

	p := &domain.Payment{
		ID:           uuid.NewString(),
		RequestTitle: r.Title,
		UserID:       r.UserID,
		Kind:         domain.PaymentBalance,
		Amount:       booking.LedgerAmount(r.Cost).Sub(booking.LedgerAmount(r.TokenPayment)),
		CreatedAt:    s.now(),
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			return nil, false, fmt.Errorf("failed to record payment: %w", err)
		}
		charged = false
	}
	r.UpdatedAt = s.now()
	if err := s.requestRepo.UpdateCostStatus(ctx, r); err != nil {
		return nil, false, fmt.Errorf("failed to update cost status: %w", err)
	}
	s.changed(ctx, r)
	return r, charged, nil
}

func (s *requestService) changed(ctx context.Context, r *booking.Request) {
	publish(ctx, s.feed, s.logger, domain.RequestTopic(r.Title), domain.NewRequestView(r))
}

// notifyCustomer emails the request owner about a status change. Failures are only logged.
func (s *requestService) notifyCustomer(ctx context.Context, r *booking.Request) {
	if s.emailService == nil || s.userRepo == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, r.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "status email skipped", "title", r.Title, "err", err)
		return
	}
	data := &domain.RequestStatusEmailData{
		Email:      user.Email,
		Title:      r.Title,
		Status:     string(r.Status),
		AssignedTo: r.AssignedTo,
	}
	if err := s.emailService.SendRequestStatus(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "status email failed", "title", r.Title, "err", err)
	}
}
