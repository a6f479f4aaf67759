// Package auth verifies bearer tokens issued by the identity provider.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified claim set of a bearer token.
type Identity struct {
	Subject string
	Email   string
	Claims  jwt.MapClaims
}

// Verifier validates an opaque bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier checks signed JWTs against a key source: a shared HMAC
// secret or the provider's published key set.
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// JWTOption tunes the parser.
type JWTOption func(*[]jwt.ParserOption)

// WithIssuer requires the iss claim.
func WithIssuer(iss string) JWTOption {
	return func(opts *[]jwt.ParserOption) {
		if iss != "" {
			*opts = append(*opts, jwt.WithIssuer(iss))
		}
	}
}

// WithAudience requires aud to contain aud.
func WithAudience(aud string) JWTOption {
	return func(opts *[]jwt.ParserOption) {
		if aud != "" {
			*opts = append(*opts, jwt.WithAudience(aud))
		}
	}
}

// NewJWTVerifier returns a verifier for tokens signed with secret.
func NewJWTVerifier(secret string, opts ...JWTOption) *JWTVerifier {
	key := []byte(secret)
	return newJWTVerifier(func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, []string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}, opts)
}

func newJWTVerifier(keyfunc jwt.Keyfunc, methods []string, opts []JWTOption) *JWTVerifier {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(30 * time.Second),
	}
	for _, o := range opts {
		o(&parserOpts)
	}
	return &JWTVerifier{
		keyfunc: keyfunc,
		parser:  jwt.NewParser(parserOpts...),
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, v.keyfunc)
	if err != nil || !token.Valid {
		return nil, errors.Wrap(ErrInvalidToken, errString(err))
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	return &Identity{Subject: sub, Email: email, Claims: claims}, nil
}

func errString(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
