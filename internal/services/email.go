package services

import (
	"context"
	"fmt"
	"log/slog"

	"liveask/internal/domain"
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

// SendModeratorLink sends the secret moderator URL to the event creator using
// the "moderator_link" template.
func (s *emailService) SendModeratorLink(ctx context.Context, data *domain.ModeratorLinkEmailData) error {
	if data == nil {
		return fmt.Errorf("moderator link data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("moderator_link", data)
	if err != nil {
		return fmt.Errorf("failed to render moderator_link template: %w", err)
	}
	if err := s.mailer.Send(data.Contact, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send moderator link email: %w", err)
	}
	s.logger.Info("moderator link sent", "event", data.EventName)
	return nil
}
