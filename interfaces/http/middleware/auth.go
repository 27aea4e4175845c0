package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/carta-systems/carta-core/pkg/auth"
)

// RateLimiter is the narrow interface both pkg/auth.UserRateLimiter and
// pkg/auth.AIMCPRateLimiter satisfy, letting Authenticate pick one or the
// other per request without depending on their concrete types.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Authenticate validates the bearer token on every request with
// authenticator, then routes the caller to userLimiter or aimcpLimiter based
// on the token's Claims.Kind — an ai-mcp collaborator never competes with
// interactive users for the same rate budget. On success the claims are
// attached to the request context via auth.ContextWithClaims, for a handler
// to read the transaction origin and document scope from.
func Authenticate(authenticator *auth.JWTAuthenticator, userLimiter, aimcpLimiter RateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticator.ValidateToken(r.Header.Get("Authorization"))
			if err != nil {
				respondError(w, http.StatusUnauthorized, err.Error())
				return
			}

			limiter := userLimiter
			if claims.Kind == auth.CallerAIMCP {
				limiter = aimcpLimiter
			}
			allowed, err := limiter.Allow(r.Context(), claims.Subject)
			if err != nil {
				logger.Error("rate limiter error", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !allowed {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireDocumentScope rejects a request whose claims are scoped to a
// different document than the one named by the documentID route param,
// letting a single token mint a session limited to one document.
func RequireDocumentScope(documentIDOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "missing authentication")
				return
			}
			if claims.DocumentID != "" && !strings.EqualFold(claims.DocumentID, documentIDOf(r)) {
				respondError(w, http.StatusForbidden, "token is not scoped to this document")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
