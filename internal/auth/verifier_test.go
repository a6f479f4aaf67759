package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func unsigned(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "admin-1",
		"email": "admin@kickbox.example",
		"iss":   "kickbox",
		"aud":   "kickbox-admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, WithIssuer("kickbox"), WithAudience("kickbox-admin"))

	id, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "admin-1", id.Subject)
	assert.Equal(t, "admin@kickbox.example", id.Email)
}

func TestVerifyRejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: sign(t, jwt.SigningMethodHS256, "other", validClaims())},
		{name: "expired", token: sign(t, jwt.SigningMethodHS256, testSecret, expired)},
		{name: "missing exp", token: sign(t, jwt.SigningMethodHS256, testSecret, noExp)},
		{name: "wrong issuer", token: sign(t, jwt.SigningMethodHS256, testSecret, wrongIssuer)},
		{name: "alg none", token: unsigned(t, validClaims())},
	}

	v := NewJWTVerifier(testSecret, WithIssuer("kickbox"), WithAudience("kickbox-admin"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewJWTVerifier(testSecret)
	_, err := v.Verify(ctx, sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), &Identity{Subject: "u1"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.Subject)
}
