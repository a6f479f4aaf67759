package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/kickboxbd/kickbox-backend/internal/auth"
)

// IdentityKey is the gin context key holding the verified *auth.Identity.
const IdentityKey = "identity"

// AuthGuard requires "Authorization: Bearer <token>". A missing credential is
// rejected with 401 before the verifier is consulted; a credential the
// verifier refuses gets 403.
func AuthGuard(verifier auth.Verifier, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := zctx.From(c.Request.Context())

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			lg.Info("Missing bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized access"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		identity, err := verifier.Verify(ctx, token)
		cancel()
		if err != nil {
			lg.Info("Token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden access"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
