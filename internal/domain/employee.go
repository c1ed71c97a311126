package domain

import (
	"context"
	"time"
)

// Invite statuses of an employee account.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

// Employee is a staff account invited by an admin.
// swagger:model Employee
type Employee struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	InviteStatus string    `json:"invite_status"`
	HasLoggedIn  bool      `json:"has_logged_in"`
	CreatedAt    time.Time `json:"created_at"`
}

// EmployeeInvitation is the outcome of an invite. The account exists even when the email failed.
// swagger:model EmployeeInvitation
type EmployeeInvitation struct {
	Employee   *Employee `json:"employee"`
	EmailSent  bool      `json:"email_sent"`
	EmailError string    `json:"email_error,omitempty"`
}

// EmployeeRepository defines storage operations for employees.
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	MarkLoggedIn(ctx context.Context, userID string) error
}

// EmployeeService defines the admin staff management operations.
type EmployeeService interface {
	Invite(ctx context.Context, email string) (*EmployeeInvitation, error)
	List(ctx context.Context) ([]*Employee, error)
}
