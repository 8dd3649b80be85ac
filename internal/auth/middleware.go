package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-logistik/internal/common"
)

var errNoToken = errors.New("auth: token missing")

// TokenParser verifies a raw bearer token.
type TokenParser interface {
	ParseAccessToken(token string) (common.Principal, error)
}

// Middleware wires authentication context into HTTP handlers.
type Middleware struct {
	Service TokenParser
}

// RequireAuth rejects requests without a valid bearer token and tags the
// request logger with the operator subject.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.authenticate(r)
		if err != nil {
			if !errors.Is(err, errNoToken) && common.WriteAppError(w, err) {
				return
			}
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "missing or invalid token", nil)
			return
		}
		ctx := common.WithPrincipal(r.Context(), principal)
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			ctx = l.With().Str("operator", principal.Subject).Logger().WithContext(ctx)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated principals lacking role with 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := common.PrincipalFrom(r.Context())
			if !ok {
				common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "missing or invalid token", nil)
				return
			}
			if !p.HasRole(role) {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) authenticate(r *http.Request) (common.Principal, error) {
	if m.Service == nil {
		return common.Principal{}, errors.New("auth: service not configured")
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return common.Principal{}, errNoToken
	}
	token := strings.TrimSpace(header[7:])
	if token == "" {
		return common.Principal{}, errNoToken
	}
	return m.Service.ParseAccessToken(token)
}
