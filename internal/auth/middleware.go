package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"assetbase/internal/httpx"
	"assetbase/internal/metrics"
)

type contextKey struct{}

var claimsContextKey contextKey

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok
}

// Authenticator resolves request credentials to verified claims. The bearer
// header and the session cookie are the two variants; both feed the same
// middleware so protected routes never care which was presented.
type Authenticator interface {
	Authenticate(r *http.Request) (*Claims, error)
}

// BearerAuthenticator reads "Authorization: Bearer <token>". Metrics may be
// nil.
type BearerAuthenticator struct {
	Tokens  *TokenIssuer
	Metrics metrics.AuthCollector
}

func (a *BearerAuthenticator) Authenticate(r *http.Request) (*Claims, error) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return nil, ErrNoCredentials
	}
	claims, err := a.Tokens.Parse(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		if a.Metrics != nil && errors.Is(err, ErrInvalidToken) {
			a.Metrics.RecordTokenFailure()
		}
		return nil, err
	}
	return claims, nil
}

// SessionAuthenticator reads the session cookie.
type SessionAuthenticator struct {
	Sessions *SessionManager
}

func (a *SessionAuthenticator) Authenticate(r *http.Request) (*Claims, error) {
	return a.Sessions.Read(r)
}

// RequireAuth tries each authenticator in order and injects the first
// verified claims into the context. No valid credential is always 401, never
// anonymous access.
func RequireAuth(authenticators ...Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, a := range authenticators {
				claims, err := a.Authenticate(r)
				if err != nil {
					continue
				}
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
				return
			}
			httpx.Error(w, http.StatusUnauthorized, "Missing or invalid authorization token")
		})
	}
}

// RequireRole gates by the role hierarchy. It assumes RequireAuth already
// ran; missing claims are 401, an insufficient role is 403.
func RequireRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				httpx.Error(w, http.StatusUnauthorized, "Missing or invalid authorization token")
				return
			}
			if !claims.Role.AtLeast(min) {
				httpx.Error(w, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
