package domain

// Mailer sends outbound email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(to, subject, html, text string) error
}
