package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sajith213/fuelstation-backend/pkg/config"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "fuelstation",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseOperatorToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	operatorID := uuid.New()

	token, err := MintOperatorToken(cfg, now, OperatorTokenPayload{
		OperatorID: operatorID,
		Role:       enums.OperatorRoleSupervisor,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	claims, err := ParseOperatorToken(cfg, token)
	if err != nil {
		t.Fatalf("parse operator token: %v", err)
	}
	if claims.OperatorID != operatorID {
		t.Fatalf("expected operator_id %s, got %s", operatorID, claims.OperatorID)
	}
	if claims.Role != enums.OperatorRoleSupervisor {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.Time)
	}
}

func TestParseOperatorTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{
		OperatorID: uuid.New(),
		Role:       enums.OperatorRoleAttendant,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}
	if _, err := ParseOperatorToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseOperatorTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 15
	token, err := MintOperatorToken(cfg, time.Now().Add(-time.Hour), OperatorTokenPayload{
		OperatorID: uuid.New(),
		Role:       enums.OperatorRoleManager,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}
	_, err = ParseOperatorToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiration error, got %v", err)
	}
}

func TestParseOperatorTokenWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{
		OperatorID: uuid.New(),
		Role:       enums.OperatorRoleAttendant,
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseOperatorToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseOperatorTokenRejectsUnknownRole(t *testing.T) {
	cfg := testJWTConfig()
	claims := OperatorClaims{
		OperatorID: uuid.New(),
		Role:       "cashier",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseOperatorToken(cfg, token); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected unknown role error, got %v", err)
	}
}

func TestParseOperatorTokenRejectsForeignSubject(t *testing.T) {
	cfg := testJWTConfig()
	claims := OperatorClaims{
		OperatorID: uuid.New(),
		Role:       enums.OperatorRoleAttendant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseOperatorToken(cfg, token); !errors.Is(err, ErrSubjectMismatch) {
		t.Fatalf("expected subject mismatch, got %v", err)
	}
}

func TestParseOperatorTokenAudience(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Audience = "forecourt"
	token, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{OperatorID: uuid.New(), Role: enums.OperatorRoleManager})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseOperatorToken(cfg, token); err != nil {
		t.Fatalf("expected audience match: %v", err)
	}
	other := cfg
	other.Audience = "back-office"
	if _, err := ParseOperatorToken(other, token); err == nil {
		t.Fatal("expected audience mismatch error")
	}
}

func TestParseOperatorTokenLeeway(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 1
	token, err := MintOperatorToken(cfg, time.Now().Add(-70*time.Second), OperatorTokenPayload{OperatorID: uuid.New(), Role: enums.OperatorRoleAttendant})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseOperatorToken(cfg, token); err == nil {
		t.Fatal("expected expiry without leeway")
	}
	cfg.Leeway = time.Minute
	if _, err := ParseOperatorToken(cfg, token); err != nil {
		t.Fatalf("expected leeway to absorb skew: %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		err    bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer   abc", want: "abc"},
		{header: "abc", want: "abc"},
		{header: "", err: true},
		{header: "Bearer", err: true},
		{header: "Bearer   ", err: true},
	}
	for _, tc := range tests {
		got, err := BearerToken(tc.header)
		if tc.err {
			if !errors.Is(err, ErrMissingBearer) {
				t.Fatalf("%q: expected missing bearer, got %v", tc.header, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q err=%v", tc.header, got, err)
		}
	}
}

func TestMintOperatorTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{Role: enums.OperatorRoleManager}); err == nil {
		t.Fatal("expected missing operator id error")
	}
	if _, err := MintOperatorToken(cfg, time.Now(), OperatorTokenPayload{OperatorID: uuid.New(), Role: ""}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintOperatorToken(config.JWTConfig{}, time.Now(), OperatorTokenPayload{OperatorID: uuid.New(), Role: enums.OperatorRoleManager}); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}
