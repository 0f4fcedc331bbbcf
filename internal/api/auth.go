package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Kind of authenticated caller. Token issuance lives in the identity service;
// this layer only verifies and extracts.
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

// Principal identifies the authenticated caller of a request.
type Principal struct {
	ID   string
	Role string
}

type principalCtxKey struct{}

// WithPrincipal returns a context carrying the principal. Exposed for tests.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the request principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

// authMiddleware extracts a bearer-token principal into the request context.
// Requests without a valid token pass through unauthenticated; resolvers
// decide which operations demand a principal.
func authMiddleware(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			next.ServeHTTP(w, r)
			return
		}

		if p, ok := parsePrincipal(token, secret); ok {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}

		next.ServeHTTP(w, r)
	})
}

func parsePrincipal(token, secret string) (Principal, bool) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, false
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || (role != RoleAdmin && role != RoleDriver) {
		return Principal{}, false
	}

	return Principal{ID: sub, Role: role}, true
}

// requireAdmin returns the principal or an unauthenticated error.
func requireAdmin(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.Role != RoleAdmin {
		return Principal{}, errUnauthenticated
	}
	return p, nil
}

// requireDriver returns the principal or an unauthenticated error.
func requireDriver(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.Role != RoleDriver {
		return Principal{}, errUnauthenticated
	}
	return p, nil
}
