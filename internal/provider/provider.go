// Package provider implements the delivery collaborators the OTP service
// dispatches codes through.  The variants form a small closed set selected
// by explicit configuration: one Sender per channel, no name-based
// dispatch at call sites.  Delivery is best-effort by contract; callers
// treat a Send failure as non-fatal once the challenge is persisted.
package provider

import (
	"context"
	"log"

	"github.com/edgarhovh/auth-service/internal/config"
)

// Sender delivers one message to one destination.  Subject is ignored by
// channels without a subject line (SMS).
type Sender interface {
	Send(ctx context.Context, destination, subject, body string) error
}

// NewEmailSender picks the configured email variant.  Unknown values fall
// back to the log sender so a misconfigured environment still boots and
// OTP records keep being issued.
func NewEmailSender(cfg config.Config) Sender {
	switch cfg.EmailProvider {
	case "smtp":
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	default:
		return &LogSender{Channel: "email"}
	}
}

// NewSMSSender picks the configured SMS variant.
func NewSMSSender(cfg config.Config) Sender {
	switch cfg.SMSProvider {
	case "twilio":
		return NewTwilioSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	default:
		return &LogSender{Channel: "sms"}
	}
}

// LogSender writes the message to the process log instead of delivering
// it.  Default in development, where real delivery is unwanted and the
// code needs to be visible somewhere.
type LogSender struct{ Channel string }

func (s *LogSender) Send(_ context.Context, destination, subject, body string) error {
	log.Printf("provider[%s]: to=%s subject=%q body=%q", s.Channel, destination, subject, body)
	return nil
}
