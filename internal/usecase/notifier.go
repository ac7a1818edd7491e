package usecase

// EmailSender dispatches transactional email. Satisfied by mailer.Mailer;
// usecases depend on this narrow contract so they can be exercised
// without an SMTP server.
type EmailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}
