package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/auth"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

type contextKey string

const claimsKey contextKey = "claims"

const (
	msgUnauthorized = "Unauthorized"
	msgForbidden    = "Forbidden access"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// AdminChecker reports whether an email belongs to an admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Authenticated rejects requests without a valid bearer token. A missing
// header is 401, a bad or expired token is 403.
func Authenticated(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.FromHeader(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrMissingToken) {
					writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
					return
				}
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin lets the request through only when the authenticated email
// has the admin role. It must run after Authenticated.
func RequireAdmin(checker AdminChecker, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			admin, err := checker.IsAdmin(r.Context(), claims.Email)
			if err != nil {
				logger.Error().Err(err).Str("email", claims.Email).Msg("admin check failed")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to verify role"})
				return
			}
			if !admin {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner lets the request through only when the query parameter
// param equals the authenticated email.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			if r.URL.Query().Get(param) != claims.Email {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by Authenticated.
func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*models.Claims)
	return claims, ok && claims != nil
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
