package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-logistik/internal/common"
)

const testSecret = "super-secret-key"

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Secret:    testSecret,
		Issuer:    "identity",
		Audience:  "backend-logistik",
		ClockSkew: time.Second,
	})
	require.NoError(t, err)
	svc.WithNow(func() time.Time { return now })
	return svc
}

func signToken(t *testing.T, alg jwa.SignatureAlgorithm, now time.Time, subject string, roles []string) string {
	t.Helper()
	builder := jwt.NewBuilder().
		Subject(subject).
		Issuer("identity").
		Audience([]string{"backend-logistik"}).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(time.Minute))
	if roles != nil {
		builder = builder.Claim(RolesClaim, roles)
	}
	tok, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(alg, []byte(testSecret)))
	require.NoError(t, err)
	return string(signed)
}

func TestServiceParseAccessTokenSuccess(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, now)

	principal, err := svc.ParseAccessToken(signToken(t, jwa.HS256, now, "operator-7", []string{"resi:write"}))
	require.NoError(t, err)
	require.Equal(t, "operator-7", principal.Subject)
	require.Equal(t, []string{"resi:write"}, principal.Roles)
}

func TestServiceParseAccessTokenRejectsAlgorithmMismatch(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, now)

	_, err := svc.ParseAccessToken(signToken(t, jwa.HS384, now, "operator-7", nil))
	require.Error(t, err)
	require.True(t, common.IsAppError(err))
}

func TestServiceParseAccessTokenRejectsExpired(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, now.Add(time.Hour))

	_, err := svc.ParseAccessToken(signToken(t, jwa.HS256, now, "operator-7", nil))
	require.Error(t, err)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(Config{Secret: "  "})
	require.Error(t, err)
}

func TestRequireAuthMiddleware(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, now)
	var seen string
	handler := Middleware{Service: svc}.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwa.HS256, now, "operator-7", nil))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "operator-7", seen)
}

func TestRequireAuthTagsRequestLogger(t *testing.T) {
	now := time.Now()
	svc := newTestService(t, now)
	var buf bytes.Buffer
	handler := Middleware{Service: svc}.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("batch registered")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resi-vuoti/batch", nil)
	req = req.WithContext(zerolog.New(&buf).WithContext(req.Context()))
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwa.HS256, now, "operator-7", nil))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Contains(t, buf.String(), `"operator":"operator-7"`)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("resi:write")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(common.WithPrincipal(req.Context(), common.Principal{Subject: "a", Roles: []string{"resi:read"}}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(common.WithPrincipal(req.Context(), common.Principal{Subject: "a", Roles: []string{"resi:write"}}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}
