package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"domainlease.backend/pkg/logger"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them. Used in ENV=development.
type LogSender struct{}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	logger.WithContext(ctx).Info("email (dev mode, not sent)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// ResendSender sends emails via the Resend API. Used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for development, ResendSender otherwise.
func NewSender(env, apiKey, from string) Sender {
	if env == "development" || apiKey == "" {
		return &LogSender{}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
