package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator(t *testing.T) {
	now := time.Now()
	validator := TokenValidator{Issuer: "issuer", Audience: "aud", ClockSkew: time.Second, Algorithm: jwa.HS256, MaxLifetime: 12 * time.Hour}

	build := func(mutate func(*jwt.Builder) *jwt.Builder) jwt.Token {
		b := jwt.NewBuilder().
			Issuer("issuer").
			Audience([]string{"aud"}).
			Subject("sub").
			IssuedAt(now).
			NotBefore(now)
		tok, err := mutate(b).Build()
		require.NoError(t, err)
		return tok
	}
	withExpiry := func(b *jwt.Builder) *jwt.Builder { return b.Expiration(now.Add(time.Minute)) }

	cases := []struct {
		name    string
		token   jwt.Token
		alg     jwa.SignatureAlgorithm
		wantErr bool
	}{
		{name: "valid", token: build(withExpiry), alg: jwa.HS256},
		{name: "issuer mismatch", token: build(func(b *jwt.Builder) *jwt.Builder { return withExpiry(b).Issuer("other") }), alg: jwa.HS256, wantErr: true},
		{name: "expired", token: build(func(b *jwt.Builder) *jwt.Builder { return b.Expiration(now.Add(-time.Minute)) }), alg: jwa.HS256, wantErr: true},
		{name: "not yet valid", token: build(func(b *jwt.Builder) *jwt.Builder { return withExpiry(b).NotBefore(now.Add(5 * time.Minute)) }), alg: jwa.HS256, wantErr: true},
		{name: "missing expiry", token: build(func(b *jwt.Builder) *jwt.Builder { return b }), alg: jwa.HS256, wantErr: true},
		{name: "missing subject", token: build(func(b *jwt.Builder) *jwt.Builder { return withExpiry(b).Subject("") }), alg: jwa.HS256, wantErr: true},
		{name: "lifetime too long", token: build(func(b *jwt.Builder) *jwt.Builder { return b.Expiration(now.Add(48 * time.Hour)) }), alg: jwa.HS256, wantErr: true},
		{name: "algorithm mismatch", token: build(withExpiry), alg: jwa.RS256, wantErr: true},
		{name: "missing algorithm", token: build(withExpiry), alg: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.token, tc.alg, now)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
