package email

import (
	"context"
	"time"
)

// EmailService defines the notices this platform sends to tenant owners.
type EmailService interface {
	// SendPaymentNotice tells a tenant owner that a payment is due.
	SendPaymentNotice(ctx context.Context, to, name string, endDate time.Time) error

	// SendExpiryWarning warns a tenant owner that the subscription expires
	// within the next few days.
	SendExpiryWarning(ctx context.Context, to, name string, daysLeft int) error
}

// EmailConfig holds email service configuration.
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}
