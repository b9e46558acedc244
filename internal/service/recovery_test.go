package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgarhovh/auth-service/internal/apperr"
	"github.com/edgarhovh/auth-service/internal/model"
)

type recoveryFixture struct {
	svc      *RecoveryService
	auth     *AuthService
	users    *fakeUserStore
	tokens   *fakeTokenStore
	activity *fakeActivityStore
	email    *recordingSender
	sms      *recordingSender
}

func newRecoveryFixture(t *testing.T) *recoveryFixture {
	t.Helper()
	users := newFakeUserStore()
	roles := newFakeRoleStore("admin", "manager", "service", "user")
	tokens := newFakeTokenStore()
	activity := newFakeActivityStore()
	email := &recordingSender{}
	sms := &recordingSender{}

	tokenSvc := NewTokenService(newTestSigner(t), tokens, roles)
	otpSvc := NewOtpService(newFakeOtpStore(), email, sms, 5*time.Minute, 5)
	recorder := NewActivityRecorder(activity, nil)

	return &recoveryFixture{
		svc: NewRecoveryService(users, roles, otpSvc, newFakeRecoveryStore(), email,
			tokenSvc, recorder, testBcryptCost, 30*time.Minute),
		auth:     NewAuthService(users, roles, tokenSvc, otpSvc, recorder, testBcryptCost),
		users:    users,
		tokens:   tokens,
		activity: activity,
		email:    email,
		sms:      sms,
	}
}

func TestRecoveryRequestUnknownAccountHidden(t *testing.T) {
	f := newRecoveryFixture(t)

	res, err := f.svc.Request(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.Equal(t, 0, f.email.count())
}

func TestRecoveryRequestPicksChannelFromIdentifier(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterRequest{
		Email:    "a@example.com",
		Phone:    "+15551234567",
		Password: "hunter2hunter2",
	}, ClientContext{})
	require.NoError(t, err)
	emailBefore, smsBefore := f.email.count(), f.sms.count()

	res, err := f.svc.Request(ctx, "A@Example.com")
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.Equal(t, model.ChannelEmail, res.Channel)
	assert.Equal(t, emailBefore+1, f.email.count())

	res, err = f.svc.Request(ctx, "+15551234567")
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.Equal(t, model.ChannelSMS, res.Channel)
	assert.Equal(t, smsBefore+1, f.sms.count())
}

func TestRecoveryConfirmResetsPasswordAndRevokesSessions(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterRequest{
		Email:    "a@example.com",
		Password: "old-password-1",
	}, ClientContext{})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, "a@example.com", "old-password-1", ClientContext{})
	require.NoError(t, err)
	require.Equal(t, 1, f.tokens.active(reg.UserID))

	_, err = f.svc.Request(ctx, "a@example.com")
	require.NoError(t, err)
	code := sentCode(t, f.email)

	res, err := f.svc.Confirm(ctx, "a@example.com", code, "new-password-1", ClientContext{})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, res.UserID)
	assert.Equal(t, []string{"user"}, res.Roles)
	assert.Equal(t, []string{"status.read"}, res.Permissions)
	assert.Contains(t, f.activity.actions(), model.ActionRecoverySuccess)

	// Old sessions are dead, old password no longer works, new one does.
	assert.Equal(t, 0, f.tokens.active(reg.UserID))
	_, err = f.auth.Login(ctx, "a@example.com", "old-password-1", ClientContext{})
	assert.Equal(t, "INVALID_CREDENTIALS", apperr.From(err).Code)
	_, err = f.auth.Login(ctx, "a@example.com", "new-password-1", ClientContext{})
	require.NoError(t, err)
}

func TestRecoveryConfirmWrongCode(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterRequest{
		Email:    "a@example.com",
		Password: "hunter2hunter2",
	}, ClientContext{})
	require.NoError(t, err)

	_, err = f.svc.Request(ctx, "a@example.com")
	require.NoError(t, err)
	code := sentCode(t, f.email)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = f.svc.Confirm(ctx, "a@example.com", wrong, "new-password-1", ClientContext{})
	assert.Equal(t, apperr.KindOTPInvalid, apperr.KindOf(err))

	// The password is untouched after a failed confirm.
	_, err = f.auth.Login(ctx, "a@example.com", "hunter2hunter2", ClientContext{})
	require.NoError(t, err)
}

var tokenPattern = regexp.MustCompile(`reset your password: (\S+)\.`)

func TestRecoveryLinkTokenFlow(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterRequest{
		Email:    "a@example.com",
		Password: "old-password-1",
	}, ClientContext{})
	require.NoError(t, err)

	res, err := f.svc.IssueResetToken(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, res.Delivered)

	m := tokenPattern.FindStringSubmatch(f.email.last().Body)
	require.Len(t, m, 2)
	raw := m[1]

	out, err := f.svc.ConfirmWithToken(ctx, raw, "new-password-1", ClientContext{})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, out.UserID)

	_, err = f.auth.Login(ctx, "a@example.com", "new-password-1", ClientContext{})
	require.NoError(t, err)

	// Single use: the same token cannot reset twice.
	_, err = f.svc.ConfirmWithToken(ctx, raw, "another-pass-1", ClientContext{})
	assert.Equal(t, apperr.KindTokenInvalid, apperr.KindOf(err))
}

func TestRecoveryLinkUnknownEmailHidden(t *testing.T) {
	f := newRecoveryFixture(t)

	res, err := f.svc.IssueResetToken(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.Equal(t, 0, f.email.count())
}

func TestRecoveryLinkExpiredToken(t *testing.T) {
	f := newRecoveryFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterRequest{
		Email:    "a@example.com",
		Password: "old-password-1",
	}, ClientContext{})
	require.NoError(t, err)

	short := newFakeRecoveryStore()
	svc := NewRecoveryService(f.users, newFakeRoleStore("user"), nil, short, f.email,
		NewTokenService(newTestSigner(t), f.tokens, newFakeRoleStore("user")),
		NewActivityRecorder(newFakeActivityStore(), nil), testBcryptCost, 30*time.Minute)

	res, err := svc.IssueResetToken(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, res.Delivered)

	m := tokenPattern.FindStringSubmatch(f.email.last().Body)
	require.Len(t, m, 2)

	// Force the stored token past its expiry.
	for hash, tok := range short.tokens {
		tok.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		short.tokens[hash] = tok
	}

	_, err = svc.ConfirmWithToken(ctx, m[1], "new-password-1", ClientContext{})
	assert.Equal(t, apperr.KindTokenInvalid, apperr.KindOf(err))
}
