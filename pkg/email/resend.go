package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendEmailService implements EmailService using Resend.
type ResendEmailService struct {
	client *resend.Client
	config *EmailConfig
}

func NewResendEmailService(config *EmailConfig) (*ResendEmailService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendEmailService{
		client: resend.NewClient(config.APIKey),
		config: config,
	}, nil
}

// SendPaymentNotice tells a tenant owner that a payment is due.
func (s *ResendEmailService) SendPaymentNotice(ctx context.Context, to, name string, endDate time.Time) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: "Payment notice for your subscription",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your subscription requires a payment. The current period ends on <strong>%s</strong>. Please renew to keep your service running.</p>",
			name, endDate.Format("2006-01-02"),
		),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send payment notice to %s: %v", to, err)
		return fmt.Errorf("failed to send payment notice: %w", err)
	}

	log.Printf("Payment notice sent to %s (ID: %s)", to, sent.Id)
	return nil
}

// SendExpiryWarning warns a tenant owner about an imminent expiry.
func (s *ResendEmailService) SendExpiryWarning(ctx context.Context, to, name string, daysLeft int) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		To:      []string{to},
		Subject: "Your subscription expires soon",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your subscription expires in <strong>%d day(s)</strong>. Renew now to avoid interruption.</p>",
			name, daysLeft,
		),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Failed to send expiry warning to %s: %v", to, err)
		return fmt.Errorf("failed to send expiry warning: %w", err)
	}

	log.Printf("Expiry warning sent to %s (ID: %s)", to, sent.Id)
	return nil
}

var _ EmailService = (*ResendEmailService)(nil)
