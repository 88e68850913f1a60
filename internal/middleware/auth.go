package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/moneyhive-bank/internal/auth"
	"github.com/hongminglow/moneyhive-bank/internal/http/respond"
)

type claimsKey struct{}

// RequireToken rejects requests without a valid Bearer token and stores the
// parsed claims in the request context.
func RequireToken(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			respond.Error(w, http.StatusUnauthorized, "authorization token required")
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the claims stored by RequireToken.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}
