package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(now time.Time) *TokenManager {
	m := NewTokenManager("super-secret", "gatekeeper-test")
	m.now = func() time.Time { return now }
	return m
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Now().Truncate(time.Second)
	m := newTestManager(now)

	tok, err := m.Issue("u-1", "a@x.com", "user")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.True(t, claims.IssuedAt.Time.Equal(now))
	assert.True(t, claims.ExpiresAt.Time.Equal(now.Add(SessionLifetime)))
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	issuedAt := time.Now().Add(-25 * time.Hour)
	tok, err := newTestManager(issuedAt).Issue("u-1", "a@x.com", "user")
	require.NoError(t, err)

	_, err = newTestManager(time.Now()).Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_StillValidJustBeforeExpiry(t *testing.T) {
	t.Parallel()
	issuedAt := time.Now().Add(-SessionLifetime + time.Minute)
	tok, err := newTestManager(issuedAt).Issue("u-1", "a@x.com", "user")
	require.NoError(t, err)

	_, err = newTestManager(time.Now()).Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_AlteredSignature(t *testing.T) {
	t.Parallel()
	m := newTestManager(time.Now())
	tok, err := m.Issue("u-1", "a@x.com", "user")
	require.NoError(t, err)

	sigStart := strings.LastIndex(tok, ".") + 1
	replacement := byte('A')
	if tok[sigStart] == 'A' {
		replacement = 'B'
	}
	tampered := tok[:sigStart] + string(replacement) + tok[sigStart+1:]

	_, err = m.Verify(tampered)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()
	m := newTestManager(time.Now())
	tok, err := m.Issue("u-1", "a@x.com", "user")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload["role"] = "admin"
	raw, err = json.Marshal(payload)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(raw)

	_, err = m.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := newTestManager(time.Now()).Issue("u-1", "a@x.com", "user")
	require.NoError(t, err)

	other := NewTokenManager("another-secret", "gatekeeper-test")
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	m := newTestManager(time.Now())
	claims := Claims{
		UserID: "u-1",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gatekeeper-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrBadSignature)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(none)
	assert.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	m := newTestManager(time.Now())

	for _, tok := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", tok)
	}
}
