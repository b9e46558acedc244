package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHSSigner(t *testing.T, accessTTL time.Duration) *Signer {
	t.Helper()
	s, err := NewSigner("HS256", "unit-test-secret", "", "", accessTTL, 24*time.Hour)
	require.NoError(t, err)
	return s
}

func testPayload() TokenPayload {
	return TokenPayload{
		UserID:      "u1",
		Roles:       []string{"user"},
		Permissions: []string{"status.read"},
		Scope:       "user",
		SessionID:   "sess-1",
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	s := newHSSigner(t, 15*time.Minute)

	signed, err := s.SignAccess(testPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, signed.JTI)

	claims, err := s.Verify(signed.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, signed.JTI, claims.ID)
	assert.Equal(t, []string{"user"}, claims.Roles)
	assert.Equal(t, []string{"status.read"}, claims.Permissions)
	assert.Equal(t, "user", claims.Scope)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestAccessAndRefreshCarryDistinctJTIs(t *testing.T) {
	s := newHSSigner(t, 15*time.Minute)
	p := testPayload()

	access, err := s.SignAccess(p)
	require.NoError(t, err)
	refresh, err := s.SignRefresh(p)
	require.NoError(t, err)

	assert.NotEqual(t, access.JTI, refresh.JTI)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	s := newHSSigner(t, 15*time.Minute)
	signed, err := s.SignAccess(testPayload())
	require.NoError(t, err)

	other, err := NewSigner("HS256", "a-different-secret", "", "", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(signed.Token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredBeyondLeeway(t *testing.T) {
	s := newHSSigner(t, -2*clockSkewLeeway)
	signed, err := s.SignAccess(testPayload())
	require.NoError(t, err)

	_, err = s.Verify(signed.Token)
	assert.Error(t, err)
}

func TestVerifyToleratesSkewWithinLeeway(t *testing.T) {
	// Expired 10s ago is inside the 30s leeway and must still verify.
	s := newHSSigner(t, -10*time.Second)
	signed, err := s.SignAccess(testPayload())
	require.NoError(t, err)

	_, err = s.Verify(signed.Token)
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	s := newHSSigner(t, 15*time.Minute)

	claims := jwt.MapClaims{
		"sub": "u1",
		"iss": Issuer,
		"aud": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	_, err = s.Verify(raw)
	assert.Error(t, err)
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	s := newHSSigner(t, 15*time.Minute)

	claims := jwt.MapClaims{
		"sub": "u1",
		"iss": Issuer,
		"aud": Audience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(raw)
	assert.Error(t, err)
}

func TestVerifyRequiresExpiration(t *testing.T) {
	s := newHSSigner(t, 15*time.Minute)

	claims := jwt.MapClaims{
		"sub": "u1",
		"iss": Issuer,
		"aud": Audience,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	_, err = s.Verify(raw)
	assert.Error(t, err)
}

func TestNewSignerFailsClosed(t *testing.T) {
	_, err := NewSigner("HS256", "", "", "", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrSigningKeyMissing)

	_, err = NewSigner("RS256", "", "", "", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrSigningKeyMissing)

	_, err = NewSigner("ES512", "irrelevant", "", "", time.Minute, time.Hour)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}
