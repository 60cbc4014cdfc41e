package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/platform/config"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                   "test-secret",
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 15,
		RefreshTokenExpireDays:   15,
	}
}

func newTestService(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := NewTokenService(testConfig(), WithClock(clock.Now))
	require.NoError(t, err)
	return svc, clock
}

func TestNewTokenService_RejectsNonHMAC(t *testing.T) {
	cfg := testConfig()
	cfg.Algorithm = "RS256"
	_, err := NewTokenService(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Secret = ""
	_, err = NewTokenService(cfg)
	assert.Error(t, err)
}

func TestIssueAndDecode(t *testing.T) {
	svc, _ := newTestService(t)

	pair, err := svc.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.Decode(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.Type)

	claims, err = svc.Decode(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestAccessTokenExpiry(t *testing.T) {
	svc, clock := newTestService(t)

	pair, err := svc.Issue("alice")
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	_, err = svc.Decode(pair.AccessToken, TokenTypeAccess)
	assert.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Decode(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// The refresh token outlives the access token.
	_, err = svc.Decode(pair.RefreshToken, TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	svc, clock := newTestService(t)

	pair, err := svc.Issue("alice")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	refreshed, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, refreshed.AccessToken)

	claims, err := svc.Decode(refreshed.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	// A refresh token past its own lifetime cannot be exchanged.
	clock.Advance(16 * 24 * time.Hour)
	_, err = svc.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)

	pair, err := svc.Issue("alice")
	require.NoError(t, err)

	_, err = svc.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = svc.Decode(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestDecode_Invalid(t *testing.T) {
	svc, clock := newTestService(t)

	sign := func(method jwt.SigningMethod, secret string, claims Claims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}
	validClaims := func() Claims {
		return Claims{
			Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice",
				ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute)),
			},
		}
	}

	noSubject := validClaims()
	noSubject.Subject = ""

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", sign(jwt.SigningMethodHS256, "other-secret", validClaims())},
		{"wrong algorithm", sign(jwt.SigningMethodHS512, "test-secret", validClaims())},
		{"missing subject", sign(jwt.SigningMethodHS256, "test-secret", noSubject)},
		{"missing expiry", sign(jwt.SigningMethodHS256, "test-secret", noExpiry)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decode(tt.token, "")
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}

func TestDecode_Tampered(t *testing.T) {
	svc, _ := newTestService(t)

	pair, err := svc.Issue("alice")
	require.NoError(t, err)

	sig := strings.LastIndex(pair.AccessToken, ".") + 1
	replacement := "A"
	if pair.AccessToken[sig] == 'A' {
		replacement = "B"
	}
	tampered := pair.AccessToken[:sig] + replacement + pair.AccessToken[sig+1:]
	_, err = svc.Decode(tampered, TokenTypeAccess)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestHasher(t *testing.T) {
	h := NewHasher(4)

	digest, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", digest)

	assert.True(t, h.Verify("s3cret", digest))
	assert.False(t, h.Verify("wrong", digest))
	assert.False(t, h.Verify("s3cret", "not-a-bcrypt-digest"))

	// Same password hashes differently each time.
	other, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, digest, other)
	assert.True(t, h.Verify("s3cret", other))
}

func TestHasher_PasswordLength(t *testing.T) {
	h := NewHasher(4)

	limit := strings.Repeat("a", MaxPasswordBytes)
	digest, err := h.Hash(limit)
	require.NoError(t, err)
	assert.True(t, h.Verify(limit, digest))

	_, err = h.Hash(strings.Repeat("a", 80))
	assert.True(t, apperrors.IsValidation(err), "got %v", err)

	// 25 three-byte runes: short in characters, long in bytes.
	_, err = h.Hash(strings.Repeat("€", 25))
	assert.True(t, apperrors.IsValidation(err), "got %v", err)
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, 10, NewHasher(0).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
