package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"eventbooking/internal/domain"
)

const invitePasswordLength = 8

var invitePasswordAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789")

type employeeService struct {
	userRepo       domain.UserRepository
	employeeRepo   domain.EmployeeRepository
	hasher         domain.PasswordHasher
	emailService   domain.EmailService
	feed           domain.ChangeFeed
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEmployeeService(userRepo domain.UserRepository,
	employeeRepo domain.EmployeeRepository,
	hasher domain.PasswordHasher,
	emailService domain.EmailService,
	feed domain.ChangeFeed,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EmployeeService {
	return &employeeService{
		userRepo:       userRepo,
		employeeRepo:   employeeRepo,
		hasher:         hasher,
		emailService:   emailService,
		feed:           feed,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func generatePassword(n int) (string, error) {
	b := make([]rune, n)
	max := big.NewInt(int64(len(invitePasswordAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = invitePasswordAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// Invite creates an employee account with a generated password and emails the credentials.
// The account is kept when the email fails; the failure is reported on the invitation.
func (s *employeeService) Invite(ctx context.Context, email string) (*domain.EmployeeInvitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if _, err := s.employeeRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("employee %s: %w", email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up employee: %w", err)
	}

	password, err := generatePassword(invitePasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	user, err := newAccount(s.hasher, email, password, "", domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create employee account: %w", err)
	}

	employee := &domain.Employee{
		UserID:       user.ID,
		Email:        email,
		InviteStatus: domain.InviteStatusPending,
		CreatedAt:    user.CreatedAt,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	s.publishRoster(ctx)

	invitation := &domain.EmployeeInvitation{Employee: employee}
	if s.emailService == nil {
		invitation.EmailError = "email is not configured"
		return invitation, nil
	}
	if err := s.emailService.SendEmployeeInvite(ctx, &domain.EmployeeInviteEmailData{Email: email, Password: password}); err != nil {
		s.logger.WarnContext(ctx, "employee invite email failed", "email", email, "err", err)
		invitation.EmailError = err.Error()
		return invitation, nil
	}
	invitation.EmailSent = true
	return invitation, nil
}

func (s *employeeService) List(ctx context.Context) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.employeeRepo.List(ctx)
}

// publishRoster sends the full employee list, which is what the live roster view renders.
func (s *employeeService) publishRoster(ctx context.Context) {
	list, err := s.employeeRepo.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "employee roster not published", "err", err)
		return
	}
	publish(ctx, s.feed, s.logger, domain.TopicEmployees, list)
}
