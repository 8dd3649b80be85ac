package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	errNoSubject    = errors.New("token has no subject")
	errLifetimeLong = errors.New("token lifetime exceeds the allowed maximum")
)

// TokenValidator checks the claims of an operator token issued by the
// identity provider. Expiry and subject are always required; issuer and
// audience are enforced when set. MaxLifetime, when positive, rejects
// tokens whose exp-iat span is longer, so long-lived service tokens cannot
// be used to edit return lines.
type TokenValidator struct {
	Issuer      string
	Audience    string
	ClockSkew   time.Duration
	Algorithm   jwa.SignatureAlgorithm
	MaxLifetime time.Duration
}

// Validate checks tok as signed with algorithm at the instant now.
func (v TokenValidator) Validate(tok jwt.Token, algorithm jwa.SignatureAlgorithm, now time.Time) error {
	if tok == nil {
		return errors.New("auth: token is nil")
	}
	switch {
	case algorithm == "":
		return errors.New("auth: token missing algorithm")
	case v.Algorithm != "" && algorithm != v.Algorithm:
		return fmt.Errorf("auth: unexpected token algorithm %s", algorithm)
	}

	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithValidator(jwt.ValidatorFunc(v.operatorClaims)),
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		options = append(options, jwt.WithAudience(v.Audience))
	}
	if err := jwt.Validate(tok, options...); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

func (v TokenValidator) operatorClaims(_ context.Context, tok jwt.Token) jwt.ValidationError {
	if strings.TrimSpace(tok.Subject()) == "" {
		return jwt.NewValidationError(errNoSubject)
	}
	if v.MaxLifetime > 0 {
		iat := tok.IssuedAt()
		if iat.IsZero() || tok.Expiration().Sub(iat) > v.MaxLifetime {
			return jwt.NewValidationError(errLifetimeLong)
		}
	}
	return nil
}
