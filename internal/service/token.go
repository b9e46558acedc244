package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
	"github.com/edgarhovh/auth-service/internal/permission"
	"github.com/edgarhovh/auth-service/internal/repository"
	"github.com/edgarhovh/auth-service/internal/utils"
)

// Session is the bundle returned by session issuance and rotation.
type Session struct {
	UserID           string
	SessionID        string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	RefreshJTI       string
	Roles            []string
	Permissions      []string
	Scope            string
}

// TokenService issues, rotates and revokes access/refresh token pairs.
// Access-token verification is stateless; every refresh-token operation
// also consults the persisted record, which is what makes replay of a
// rotated or revoked token detectable.
type TokenService struct {
	signer *utils.Signer
	tokens TokenStore
	roles  RoleSource
}

func NewTokenService(signer *utils.Signer, tokens TokenStore, roles RoleSource) *TokenService {
	return &TokenService{signer: signer, tokens: tokens, roles: roles}
}

// CreateSession issues a new access/refresh pair sharing one session id.
// Permissions are always derived from the supplied roles through the
// permission table — there is deliberately no way for a caller to hand in
// a permission list, so a compromised or malformed claim upstream cannot
// widen what a session may do.
func (s *TokenService) CreateSession(ctx context.Context, userID string, roles []string, scope string, client ClientContext) (Session, error) {
	sessionID := uuid.NewString()
	perms := permission.FromRoles(roles)
	payload := utils.TokenPayload{
		UserID:      userID,
		Roles:       roles,
		Permissions: perms,
		Scope:       scope,
		SessionID:   sessionID,
	}

	access, err := s.signer.SignAccess(payload)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_SIGNING_FAILED", "could not issue session", err)
	}
	refresh, err := s.signer.SignRefresh(payload)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_SIGNING_FAILED", "could not issue session", err)
	}

	rec := model.RefreshToken{
		ID:        refresh.JTI,
		UserID:    userID,
		TokenHash: utils.HashToken(refresh.Token),
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: refresh.ExpiresAt,
		IP:        client.IP,
		UA:        client.UA,
	}
	if err := s.tokens.Insert(ctx, rec); err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_PERSIST_FAILED", "could not issue session", err)
	}

	return Session{
		UserID:           userID,
		SessionID:        sessionID,
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
		RefreshJTI:       refresh.JTI,
		Roles:            roles,
		Permissions:      perms,
		Scope:            scope,
	}, nil
}

// RotateRefreshToken exchanges a valid refresh token for a fresh pair,
// preserving the session id.  Signature/expiry failures, unknown records,
// digest mismatches and replays of an already-rotated token all collapse
// into the same unauthorized error.  Roles are re-read so a rotation picks
// up grants made since login; if the user currently has none, the token's
// embedded roles are kept to avoid locking out a session over data drift.
// Permissions are recomputed fresh either way.
func (s *TokenService) RotateRefreshToken(ctx context.Context, rawRefresh string, client ClientContext) (Session, error) {
	claims, err := s.signer.Verify(rawRefresh)
	if err != nil {
		return Session{}, apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "invalid refresh token")
	}
	tokenHash := utils.HashToken(rawRefresh)

	if _, err := s.tokens.FindActive(ctx, claims.ID, tokenHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "refresh token revoked")
		}
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_LOOKUP_FAILED", "could not rotate session", err)
	}

	roles, err := s.roles.RolesForUser(ctx, claims.Subject)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "ROLE_LOOKUP_FAILED", "could not rotate session", err)
	}
	if len(roles) == 0 {
		roles = claims.Roles
	}
	perms := permission.FromRoles(roles)

	payload := utils.TokenPayload{
		UserID:      claims.Subject,
		Roles:       roles,
		Permissions: perms,
		Scope:       claims.Scope,
		SessionID:   claims.SessionID,
	}
	access, err := s.signer.SignAccess(payload)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_SIGNING_FAILED", "could not rotate session", err)
	}
	refresh, err := s.signer.SignRefresh(payload)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_SIGNING_FAILED", "could not rotate session", err)
	}

	predecessor := claims.ID
	next := model.RefreshToken{
		ID:          refresh.JTI,
		UserID:      claims.Subject,
		TokenHash:   utils.HashToken(refresh.Token),
		IssuedAt:    time.Now().UTC(),
		ExpiresAt:   refresh.ExpiresAt,
		RotatedFrom: &predecessor,
		IP:          client.IP,
		UA:          client.UA,
	}
	// Revoke-predecessor + insert-successor runs as one atomic unit in the
	// store.  A concurrent rotation of the same predecessor loses the
	// conditional update inside Rotate and surfaces here as ErrNotFound.
	if err := s.tokens.Rotate(ctx, claims.ID, tokenHash, next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "refresh token revoked")
		}
		return Session{}, apperr.Wrap(apperr.KindServer, "TOKEN_ROTATE_FAILED", "could not rotate session", err)
	}

	return Session{
		UserID:           claims.Subject,
		SessionID:        claims.SessionID,
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshExpiresAt: refresh.ExpiresAt,
		RefreshJTI:       refresh.JTI,
		Roles:            roles,
		Permissions:      perms,
		Scope:            claims.Scope,
	}, nil
}

// RevokeByToken verifies the supplied refresh token and revokes its
// persisted record, returning the decoded claims so callers can attribute
// the logout.  Fails unauthorized when the signature is invalid or no
// matching active record exists.
func (s *TokenService) RevokeByToken(ctx context.Context, rawRefresh string) (*utils.Claims, error) {
	claims, err := s.signer.Verify(rawRefresh)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "invalid refresh token")
	}
	if err := s.tokens.RevokeByIDAndHash(ctx, claims.ID, utils.HashToken(rawRefresh)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "refresh token revoked")
		}
		return nil, apperr.Wrap(apperr.KindServer, "TOKEN_REVOKE_FAILED", "could not revoke session", err)
	}
	return claims, nil
}

// RevokeRefreshToken revokes a single token by its identifier on behalf of
// its owner.  Idempotent; a token id belonging to someone else matches
// nothing and is silently a no-op rather than an oracle.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, userID, tokenID string) error {
	if err := s.tokens.RevokeByIDForUser(ctx, tokenID, userID); err != nil {
		return apperr.Wrap(apperr.KindServer, "TOKEN_REVOKE_FAILED", "could not revoke session", err)
	}
	return nil
}

// RevokeAllTokensForUser revokes every active token a user holds.
// Idempotent; used for logout-everywhere and administrative lockout.
func (s *TokenService) RevokeAllTokensForUser(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return apperr.Wrap(apperr.KindServer, "TOKEN_REVOKE_FAILED", "could not revoke sessions", err)
	}
	return nil
}

// Verify checks a token's signature, expiry, issuer and audience without
// touching the store.  Runs on every authorized request; revocation only
// applies to refresh tokens.
func (s *TokenService) Verify(raw string) (*utils.Claims, error) {
	claims, err := s.signer.Verify(raw)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED", "invalid token")
	}
	return claims, nil
}
