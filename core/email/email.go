package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidParams     = errors.New("invalid email parameters")
	ErrFailedToSendEmail = errors.New("failed to send email")
)

// EmailSender delivers transactional email. Implementations must be safe
// for concurrent use.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams describes a single transactional email.
type SendEmailParams struct {
	SendTo   string
	Subject  string
	BodyHTML string
	// Tag groups emails in provider analytics, e.g. "password-reset".
	Tag string
}

// Validate checks the parameters before hitting the provider API.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" || !IsValidEmail(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks if the provided string is a valid email address.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
