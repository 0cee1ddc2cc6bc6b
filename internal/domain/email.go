package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ModeratorLinkEmailData holds data for the email that delivers the secret
// moderator URL to the event creator.
type ModeratorLinkEmailData struct {
	Contact      string
	EventName    string
	ModeratorURL string
	PublicURL    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendModeratorLink(ctx context.Context, data *ModeratorLinkEmailData) error
}
