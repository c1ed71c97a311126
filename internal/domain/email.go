package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
// It returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) (messageID string, err error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EmployeeInviteEmailData holds data for the employee invitation email.
type EmployeeInviteEmailData struct {
	Email    string
	Password string
}

// RequestStatusEmailData holds data for the booking status notification.
type RequestStatusEmailData struct {
	Email      string
	Title      string
	Status     string
	AssignedTo string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEmployeeInvite(ctx context.Context, data *EmployeeInviteEmailData) error
	SendRequestStatus(ctx context.Context, data *RequestStatusEmailData) error
}
