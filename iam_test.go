package glide

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestJWTTokenProvider_NeedsRefreshWhenEmpty(t *testing.T) {
	p := NewJWTTokenProvider("", time.Minute)
	assert.True(t, p.NeedsRefresh())
}

func TestJWTTokenProvider_NeedsRefreshWhenMalformed(t *testing.T) {
	p := NewJWTTokenProvider("not-a-jwt", time.Minute)
	assert.True(t, p.NeedsRefresh())
}

func TestJWTTokenProvider_NoRefreshWhenFarFromExpiry(t *testing.T) {
	p := NewJWTTokenProvider(signedToken(t, time.Now().Add(time.Hour)), time.Minute)
	assert.False(t, p.NeedsRefresh())
}

func TestJWTTokenProvider_NeedsRefreshWithinMargin(t *testing.T) {
	p := NewJWTTokenProvider(signedToken(t, time.Now().Add(30*time.Second)), time.Minute)
	assert.True(t, p.NeedsRefresh())
}

func TestJWTTokenProvider_NeedsRefreshWhenAlreadyExpired(t *testing.T) {
	p := NewJWTTokenProvider(signedToken(t, time.Now().Add(-time.Hour)), time.Minute)
	assert.True(t, p.NeedsRefresh())
}

func TestJWTTokenProvider_SetTokenUpdatesExpiryDecision(t *testing.T) {
	p := NewJWTTokenProvider(signedToken(t, time.Now().Add(-time.Hour)), time.Minute)
	require.True(t, p.NeedsRefresh())

	p.SetToken(signedToken(t, time.Now().Add(time.Hour)))
	assert.False(t, p.NeedsRefresh())
}

func TestJWTTokenProvider_TokenReturnsCurrentValue(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	p := NewJWTTokenProvider(tok, time.Minute)

	got, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}
