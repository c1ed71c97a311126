package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventbooking/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendEmployeeInvite sends the new employee their login credentials.
func (s *emailService) SendEmployeeInvite(ctx context.Context, data *domain.EmployeeInviteEmailData) error {
	if data == nil {
		return fmt.Errorf("employee invite data is nil")
	}
	return s.send(ctx, "employee_invite", data.Email, data)
}

// SendRequestStatus tells a customer their booking request changed status.
func (s *emailService) SendRequestStatus(ctx context.Context, data *domain.RequestStatusEmailData) error {
	if data == nil {
		return fmt.Errorf("request status data is nil")
	}
	return s.send(ctx, "request_status", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	id, err := s.mailer.Send(ctx, to, subject, htmlBody, textBody)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to, "message_id", id)
	return nil
}
