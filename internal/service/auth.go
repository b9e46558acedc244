package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/repository"
	"github.com/edgarhovh/auth-service/internal/utils"
)

// AuthService orchestrates registration, login and logout on top of the
// user/role stores, the token service and the OTP engine.
type AuthService struct {
	users      UserStore
	roles      RoleStore
	tokens     *TokenService
	otp        *OtpService
	activity   *ActivityRecorder
	bcryptCost int
}

func NewAuthService(users UserStore, roles RoleStore, tokens *TokenService, otp *OtpService, activity *ActivityRecorder, bcryptCost int) *AuthService {
	return &AuthService{users: users, roles: roles, tokens: tokens, otp: otp, activity: activity, bcryptCost: bcryptCost}
}

// RegisterRequest carries the registration input after transport-level
// validation.  Phone is optional.
type RegisterRequest struct {
	Email    string
	Phone    string
	Password string
}

// RegisterResult reports the created account and which verification
// challenges were kicked off.
type RegisterResult struct {
	UserID       string
	Email        string
	Phone        string
	EmailOtpSent bool
	PhoneOtpSent bool
}

// Register creates a disabled-free active account, assigns the base role
// and issues verification challenges.  Email and phone conflicts surface
// as distinct codes so the client can point at the right field.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientContext) (RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return RegisterResult{}, apperr.Wrap(apperr.KindServer, "PASSWORD_HASH_FAILED", "could not register", err)
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Status:       model.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return RegisterResult{}, apperr.New(apperr.KindConflict, "EMAIL_IN_USE", "email already registered")
		case errors.Is(err, repository.ErrPhoneExists):
			return RegisterResult{}, apperr.New(apperr.KindConflict, "PHONE_IN_USE", "phone already registered")
		default:
			return RegisterResult{}, apperr.Wrap(apperr.KindServer, "USER_CREATE_FAILED", "could not register", err)
		}
	}

	if err := s.assignBaseRole(ctx, user.ID); err != nil {
		// The account exists; a missing role grant is repairable and must
		// not fail the registration.
		log.Printf("auth: base role grant failed for %s: %v", user.ID, err)
	}

	if err := s.activity.Record(ctx, user.ID, model.ActionRegister, client); err != nil {
		return RegisterResult{}, err
	}

	res := RegisterResult{UserID: user.ID, Email: email, Phone: phone}
	if _, err := s.otp.Send(ctx, SendOtpRequest{
		UserID:      user.ID,
		Destination: email,
		Purpose:     model.PurposeVerifyEmail,
		Channel:     model.ChannelEmail,
	}); err != nil {
		log.Printf("auth: email verification challenge failed for %s: %v", user.ID, err)
	} else {
		res.EmailOtpSent = true
	}
	if phone != "" {
		if _, err := s.otp.Send(ctx, SendOtpRequest{
			UserID:      user.ID,
			Destination: phone,
			Purpose:     model.PurposeVerifyPhone,
			Channel:     model.ChannelSMS,
		}); err != nil {
			log.Printf("auth: phone verification challenge failed for %s: %v", user.ID, err)
		} else {
			res.PhoneOtpSent = true
		}
	}
	return res, nil
}

func (s *AuthService) assignBaseRole(ctx context.Context, userID string) error {
	role, err := s.roles.FindByName(ctx, "user")
	if err != nil {
		return err
	}
	return s.roles.Assign(ctx, userID, role.ID)
}

// Login authenticates by email or phone plus password and issues a
// session.  Unknown identifier and wrong password collapse into one
// INVALID_CREDENTIALS error; only a disabled account is distinguishable,
// and only after the password checked out.
func (s *AuthService) Login(ctx context.Context, identifier, password string, client ClientContext) (Session, error) {
	invalid := apperr.New(apperr.KindUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")

	user, err := s.users.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, invalid
		}
		return Session{}, apperr.Wrap(apperr.KindServer, "USER_LOOKUP_FAILED", "could not log in", err)
	}

	if !utils.VerifyPassword(user.PasswordHash, password) {
		if err := s.activity.Record(ctx, user.ID, model.ActionLoginFailure, client); err != nil {
			log.Printf("auth: login-failure audit failed for %s: %v", user.ID, err)
		}
		return Session{}, invalid
	}

	if user.Status == model.StatusDisabled {
		return Session{}, apperr.New(apperr.KindAccountDisabled, "ACCOUNT_DISABLED", "account is disabled")
	}

	roles, err := s.roles.RolesForUser(ctx, user.ID)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "ROLE_LOOKUP_FAILED", "could not log in", err)
	}

	session, err := s.tokens.CreateSession(ctx, user.ID, roles, "user", client)
	if err != nil {
		return Session{}, err
	}

	if err := s.activity.Record(ctx, user.ID, model.ActionLoginSuccess, client); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Logout revokes the presented refresh token and records the event.  The
// raw token is both proof of possession and the pointer to the record to
// revoke; no separate authentication is required.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string, client ClientContext) error {
	claims, err := s.tokens.RevokeByToken(ctx, rawRefresh)
	if err != nil {
		return err
	}
	if err := s.activity.Record(ctx, claims.Subject, model.ActionLogout, client); err != nil {
		log.Printf("auth: logout audit failed for %s: %v", claims.Subject, err)
	}
	return nil
}

// LogoutSession revokes one of the caller's refresh tokens by its
// identifier.  Idempotent, and scoped to the caller's own sessions.
func (s *AuthService) LogoutSession(ctx context.Context, userID, tokenID string, client ClientContext) error {
	if err := s.tokens.RevokeRefreshToken(ctx, userID, tokenID); err != nil {
		return err
	}
	if err := s.activity.Record(ctx, userID, model.ActionLogout, client); err != nil {
		log.Printf("auth: logout audit failed for %s: %v", userID, err)
	}
	return nil
}

// LogoutEverywhere revokes every refresh token the user holds.
func (s *AuthService) LogoutEverywhere(ctx context.Context, userID string, client ClientContext) error {
	if err := s.tokens.RevokeAllTokensForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.activity.Record(ctx, userID, model.ActionLogout, client); err != nil {
		log.Printf("auth: logout audit failed for %s: %v", userID, err)
	}
	return nil
}
