package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/vkarpenko/mini-crm/internal/auth"
	"github.com/vkarpenko/mini-crm/internal/domain/user"
)

type claimsKey struct{}

// claimsFromContext extracts the verified token claims set by requireAuth.
func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// requireAuth verifies the Authorization bearer token and stores the claims
// in the request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			respondError(r.Context(), w, http.StatusUnauthorized, kindUnauthorized, err.Error())
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			respondError(r.Context(), w, http.StatusUnauthorized, kindUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects requests from non-admin users. Must run after
// requireAuth.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFromContext(r.Context())
		if !ok || claims.Role != user.RoleAdmin {
			respondError(r.Context(), w, http.StatusForbidden, kindForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errors.New("malformed authorization header")
	}
	return token, nil
}
