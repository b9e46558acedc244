package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/permission"
	"github.com/edgarhovh/auth-service/internal/provider"
	"github.com/edgarhovh/auth-service/internal/repository"
	"github.com/edgarhovh/auth-service/internal/utils"
)

// RecoveryService runs the forgotten-password flow in two shapes: an OTP
// exchange (request a code, confirm with code + new password) and a
// single-use link token for email clients that prefer a URL.
type RecoveryService struct {
	users      UserStore
	roles      RoleSource
	otp        *OtpService
	store      RecoveryStore
	email      provider.Sender
	tokens     *TokenService
	activity   *ActivityRecorder
	bcryptCost int
	linkTTL    time.Duration
}

func NewRecoveryService(users UserStore, roles RoleSource, otp *OtpService, store RecoveryStore, email provider.Sender, tokens *TokenService, activity *ActivityRecorder, bcryptCost int, linkTTL time.Duration) *RecoveryService {
	if linkTTL <= 0 {
		linkTTL = 30 * time.Minute
	}
	return &RecoveryService{
		users: users, roles: roles, otp: otp, store: store, email: email,
		tokens: tokens, activity: activity, bcryptCost: bcryptCost, linkTTL: linkTTL,
	}
}

// RequestResult tells the caller only whether a challenge went out over
// which channel.  It never distinguishes "no such account".
type RequestResult struct {
	Delivered bool
	Channel   string
	ExpiresAt time.Time
}

// Request starts recovery for the account behind the identifier.  An
// unknown identifier returns Delivered=false with a nil error so the
// endpoint cannot be used to enumerate accounts.  The channel follows the
// identifier shape: anything with an @ is treated as email, otherwise as
// phone.
func (s *RecoveryService) Request(ctx context.Context, identifier string) (RequestResult, error) {
	identifier = strings.TrimSpace(identifier)

	channel := model.ChannelSMS
	if strings.Contains(identifier, "@") {
		channel = model.ChannelEmail
		identifier = strings.ToLower(identifier)
	}

	user, err := s.lookup(ctx, channel, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RequestResult{Delivered: false, Channel: channel}, nil
		}
		return RequestResult{}, apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not start recovery", err)
	}

	expiresAt, err := s.otp.Send(ctx, SendOtpRequest{
		UserID:      user.ID,
		Destination: identifier,
		Purpose:     model.PurposeRecovery,
		Channel:     channel,
	})
	if err != nil {
		return RequestResult{}, err
	}
	return RequestResult{Delivered: true, Channel: channel, ExpiresAt: expiresAt}, nil
}

func (s *RecoveryService) lookup(ctx context.Context, channel, identifier string) (model.User, error) {
	if channel == model.ChannelEmail {
		return s.users.GetByEmail(ctx, identifier)
	}
	return s.users.GetByPhone(ctx, identifier)
}

// ConfirmResult reports the recovered account plus its current role and
// permission sets so the client can immediately re-authenticate.
type ConfirmResult struct {
	UserID      string
	Roles       []string
	Permissions []string
}

// Confirm finishes recovery: verify the code, set the new password and
// revoke every outstanding session so a stolen refresh token dies with
// the old credential.
func (s *RecoveryService) Confirm(ctx context.Context, identifier, code, newPassword string, client ClientContext) (ConfirmResult, error) {
	identifier = strings.TrimSpace(identifier)
	channel := model.ChannelSMS
	if strings.Contains(identifier, "@") {
		channel = model.ChannelEmail
		identifier = strings.ToLower(identifier)
	}

	user, err := s.lookup(ctx, channel, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ConfirmResult{}, apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
		}
		return ConfirmResult{}, apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not confirm recovery", err)
	}

	if err := s.otp.Verify(ctx, identifier, model.PurposeRecovery, code); err != nil {
		return ConfirmResult{}, err
	}

	return s.finish(ctx, user, newPassword, client)
}

// IssueResetToken creates a single-use link token for the email account
// and mails it out.  Like Request, unknown emails report Delivered=false
// without an error.
func (s *RecoveryService) IssueResetToken(ctx context.Context, email string) (RequestResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RequestResult{Delivered: false, Channel: model.ChannelEmail}, nil
		}
		return RequestResult{}, apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not start recovery", err)
	}

	raw, err := utils.GenerateToken(48)
	if err != nil {
		return RequestResult{}, apperr.Wrap(apperr.KindServer, "TOKEN_GENERATION_FAILED", "could not start recovery", err)
	}
	expiresAt := time.Now().UTC().Add(s.linkTTL)
	rec := model.RecoveryToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: utils.HashToken(raw),
		ExpiresAt: expiresAt,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return RequestResult{}, apperr.Wrap(apperr.KindServer, "TOKEN_PERSIST_FAILED", "could not start recovery", err)
	}

	body := "Use this token to reset your password: " + raw +
		". It expires in " + expiresAt.UTC().Format(time.RFC3339) + "."
	if err := s.email.Send(ctx, email, "Password reset", body); err != nil {
		log.Printf("recovery: reset mail to %s failed: %v", email, err)
	}
	return RequestResult{Delivered: true, Channel: model.ChannelEmail, ExpiresAt: expiresAt}, nil
}

// ConfirmWithToken finishes a link-style recovery.  The store consumes the
// token conditionally, so reuse and expiry both land on TOKEN_INVALID.
func (s *RecoveryService) ConfirmWithToken(ctx context.Context, rawToken, newPassword string, client ClientContext) (ConfirmResult, error) {
	userID, err := s.store.ConsumeByHash(ctx, utils.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ConfirmResult{}, apperr.New(apperr.KindTokenInvalid, "TOKEN_INVALID", "invalid or expired reset token")
		}
		return ConfirmResult{}, apperr.Wrap(apperr.KindServer, "TOKEN_CONSUME_FAILED", "could not confirm recovery", err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ConfirmResult{}, apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not confirm recovery", err)
	}
	return s.finish(ctx, user, newPassword, client)
}

func (s *RecoveryService) finish(ctx context.Context, user model.User, newPassword string, client ClientContext) (ConfirmResult, error) {
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return ConfirmResult{}, apperr.Wrap(apperr.KindServer, "PASSWORD_HASH_FAILED", "could not confirm recovery", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return ConfirmResult{}, apperr.Wrap(apperr.KindServer, "PASSWORD_UPDATE_FAILED", "could not confirm recovery", err)
	}
	if err := s.tokens.RevokeAllTokensForUser(ctx, user.ID); err != nil {
		log.Printf("recovery: session revocation failed for %s: %v", user.ID, err)
	}
	if err := s.activity.Record(ctx, user.ID, model.ActionRecoverySuccess, client); err != nil {
		return ConfirmResult{}, err
	}

	roles, err := s.roles.RolesForUser(ctx, user.ID)
	if err != nil {
		return ConfirmResult{}, apperr.Wrap(apperr.KindServer, "ROLE_LOOKUP_FAILED", "could not confirm recovery", err)
	}
	return ConfirmResult{
		UserID:      user.ID,
		Roles:       roles,
		Permissions: permission.FromRoles(roles),
	}, nil
}
