package auth

import (
	"context"
	"encoding/json"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Firebase ID tokens are RS256 JWTs signed with keys Google publishes here.
const (
	FirebaseJWKSURL      = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	FirebaseIssuerPrefix = "https://securetoken.google.com/"
)

// asymmetricMethods are the algorithms identity providers sign with.
var asymmetricMethods = []string{
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodRS384.Alg(),
	jwt.SigningMethodRS512.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodES384.Alg(),
	jwt.SigningMethodPS256.Alg(),
}

// NewJWKSVerifier returns a verifier for tokens signed with the keys served
// at jwksURL. The key set is fetched now and refreshed in the background
// until ctx is done; unknown key ids trigger a rate limited refetch.
func NewJWKSVerifier(ctx context.Context, jwksURL string, opts ...JWTOption) (*JWTVerifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, errors.Wrap(err, "load jwks")
	}
	return newJWTVerifier(k.Keyfunc, asymmetricMethods, opts), nil
}

// NewStaticJWKSVerifier verifies against a fixed JSON Web Key Set.
func NewStaticJWKSVerifier(jwks json.RawMessage, opts ...JWTOption) (*JWTVerifier, error) {
	k, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		return nil, errors.Wrap(err, "parse jwks")
	}
	return newJWTVerifier(k.Keyfunc, asymmetricMethods, opts), nil
}
