package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/provider"
	"github.com/edgarhovh/auth-service/internal/repository"
	"github.com/edgarhovh/auth-service/internal/utils"
)

// OtpService generates, stores (hashed) and verifies short-lived one-time
// codes scoped by (destination, purpose).  Delivery happens through the
// injected per-channel senders and is best-effort: a code counts as issued
// the moment its record is durable, regardless of whether the email/SMS
// made it out.
type OtpService struct {
	store       OtpStore
	email       provider.Sender
	sms         provider.Sender
	ttl         time.Duration
	maxAttempts int
}

// SendOtpRequest describes one challenge to issue.  UserID is optional;
// pre-registration sends have no user yet.
type SendOtpRequest struct {
	UserID      string
	Destination string
	Purpose     string
	Channel     string
}

// NewOtpService wires the store and senders.  TTL validation happens at
// config load; the value arrives here already positive.
func NewOtpService(store OtpStore, email, sms provider.Sender, ttl time.Duration, maxAttempts int) *OtpService {
	return &OtpService{store: store, email: email, sms: sms, ttl: ttl, maxAttempts: maxAttempts}
}

func errOTPInvalid(message string) error {
	return apperr.New(apperr.KindOTPInvalid, "OTP_INVALID", message)
}

// Send issues a new code: generate, hash, persist, then dispatch the
// plaintext through the channel's sender.  Persistence failures are real
// errors; delivery failures are logged and swallowed (two-phase contract —
// the stored challenge must never be unwound by a transport hiccup).
// Resending for the same destination/purpose simply shadows older codes.
func (s *OtpService) Send(ctx context.Context, req SendOtpRequest) (time.Time, error) {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindServer, "OTP_GENERATION_FAILED", "could not issue code", err)
	}
	expiresAt := time.Now().UTC().Add(s.ttl)
	rec := model.OtpCode{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Destination: req.Destination,
		Channel:     req.Channel,
		CodeHash:    utils.HashToken(code),
		Purpose:     req.Purpose,
		ExpiresAt:   expiresAt,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindServer, "OTP_PERSIST_FAILED", "could not issue code", err)
	}

	if err := s.deliver(ctx, req, code); err != nil {
		log.Printf("otp: delivery to %s via %s failed: %v", req.Destination, req.Channel, err)
	}
	return expiresAt, nil
}

// Verify checks a supplied code against the latest unconsumed record for
// the destination/purpose pair.  Missing record, expiry, exhausted
// attempts and digest mismatch all surface as the single OTP_INVALID kind
// so a caller cannot use the error shape as an oracle.  Consumption is
// conditional in the store: with two concurrent verifiers only one
// succeeds, the other sees the record already gone.
func (s *OtpService) Verify(ctx context.Context, destination, purpose, code string) error {
	rec, err := s.store.LatestUnconsumed(ctx, destination, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errOTPInvalid("code not found")
		}
		return apperr.Wrap(apperr.KindServer, "OTP_LOOKUP_FAILED", "could not verify code", err)
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return errOTPInvalid("code expired")
	}
	if s.maxAttempts > 0 && rec.Attempts >= s.maxAttempts {
		return errOTPInvalid("too many attempts")
	}
	if !utils.ConstantTimeEqual(rec.CodeHash, utils.HashToken(code)) {
		if err := s.store.IncrementAttempts(ctx, rec.ID); err != nil {
			log.Printf("otp: attempt counter update failed for %s: %v", rec.ID, err)
		}
		return errOTPInvalid("invalid code")
	}
	if err := s.store.Consume(ctx, rec.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race against a concurrent verification.
			return errOTPInvalid("code not found")
		}
		return apperr.Wrap(apperr.KindServer, "OTP_CONSUME_FAILED", "could not verify code", err)
	}
	return nil
}

func (s *OtpService) deliver(ctx context.Context, req SendOtpRequest, code string) error {
	switch req.Channel {
	case model.ChannelEmail:
		return s.email.Send(ctx, req.Destination, "Your verification code",
			fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())))
	case model.ChannelSMS:
		return s.sms.Send(ctx, req.Destination, "",
			fmt.Sprintf("Your verification code is %s", code))
	default:
		return fmt.Errorf("unknown channel %q", req.Channel)
	}
}
