package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, id core.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity placed in ctx by Middleware.
func IdentityFrom(ctx context.Context) (core.Identity, bool) {
	id, ok := ctx.Value(identityKey).(core.Identity)
	return id, ok && id != ""
}

// Middleware rejects requests without a valid bearer token. onError writes the
// rejection; when nil a plain 401 is sent.
func Middleware(resolver *TokenResolver, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(extractToken(r))
			if err != nil {
				slog.WarnContext(r.Context(), "Authentication failed",
					log.FieldComponent, log.ComponentAuth,
					log.FieldPath, r.URL.Path,
					log.FieldError, err)
				if onError != nil {
					onError(w, r, err)
				} else {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Optional attaches the caller identity when a valid token is present and
// lets the request through either way.
func Optional(resolver *TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := extractToken(r); tok != "" {
				if id, err := resolver.Resolve(tok); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the Authorization header and falls back to the token
// query parameter.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
