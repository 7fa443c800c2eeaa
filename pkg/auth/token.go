package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/pkg/config"
)

var signingMethod = jwt.SigningMethodHS256

var (
	ErrNoSecret        = errors.New("jwt secret is required")
	ErrNoIssuer        = errors.New("jwt issuer is required")
	ErrMissingBearer   = errors.New("bearer token is required")
	ErrMissingOperator = errors.New("operator_id claim is required")
	ErrUnknownRole     = errors.New("unknown operator role")
	ErrSubjectMismatch = errors.New("subject does not match operator_id")
)

// MintOperatorToken signs a token for tooling and tests. Production tokens
// are issued by the station identity provider with the same claims.
func MintOperatorToken(cfg config.JWTConfig, now time.Time, payload OperatorTokenPayload) (string, error) {
	if err := checkConfig(cfg); err != nil {
		return "", err
	}
	ttl := cfg.Expiration()
	if ttl <= 0 {
		return "", errors.New("jwt expiration minutes must be positive")
	}

	claims := OperatorClaims{
		OperatorID: payload.OperatorID,
		Role:       payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.OperatorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        firstNonBlank(payload.JTI, uuid.NewString()),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	if err := claims.Validate(); err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign operator token: %w", err)
	}
	return signed, nil
}

// ParseOperatorToken verifies signature, issuer, expiry and the optional
// audience, then returns the typed claims.
func ParseOperatorToken(cfg config.JWTConfig, tokenString string) (*OperatorClaims, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := &OperatorClaims{}
	keyFunc := func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil }
	if _, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken extracts the credential from an Authorization header value.
// A bare token without the scheme is accepted for CLI convenience.
func BearerToken(header string) (string, error) {
	value := strings.TrimSpace(header)
	if scheme, rest, ok := strings.Cut(value, " "); ok && strings.EqualFold(scheme, "bearer") {
		value = strings.TrimSpace(rest)
	}
	if value == "" || strings.EqualFold(value, "bearer") {
		return "", ErrMissingBearer
	}
	return value, nil
}

func checkConfig(cfg config.JWTConfig) error {
	if cfg.Secret == "" {
		return ErrNoSecret
	}
	if cfg.Issuer == "" {
		return ErrNoIssuer
	}
	return nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
