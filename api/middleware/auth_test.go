package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sajith213/fuelstation-backend/pkg/auth"
	"github.com/sajith213/fuelstation-backend/pkg/config"
	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, operatorID uuid.UUID, role enums.OperatorRole) string {
	t.Helper()
	token, err := auth.MintOperatorToken(cfg, time.Now(), auth.OperatorTokenPayload{OperatorID: operatorID, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := testJWTConfig()
	operatorID := uuid.New()
	token := mintTestToken(t, cfg, operatorID, enums.OperatorRoleSupervisor)

	var gotOperator, gotRole string
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOperator = OperatorIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotOperator != operatorID.String() {
		t.Fatalf("expected operator %s got %s", operatorID, gotOperator)
	}
	if gotRole != string(enums.OperatorRoleSupervisor) {
		t.Fatalf("expected role supervisor got %s", gotRole)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, enums.OperatorRoleSupervisor, enums.OperatorRoleManager)(okHandler())

	cases := []struct {
		role string
		want int
	}{
		{string(enums.OperatorRoleManager), http.StatusOK},
		{string(enums.OperatorRoleSupervisor), http.StatusOK},
		{string(enums.OperatorRoleAttendant), http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(WithOperator(req.Context(), uuid.NewString(), tc.role))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("role %q: expected %d got %d", tc.role, tc.want, resp.Code)
		}
	}
}

func TestRequireRoleWithoutOperator(t *testing.T) {
	handler := RequireRole(nil, enums.OperatorRoleManager)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOperatorFromContext(t *testing.T) {
	if _, ok := OperatorFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()); ok {
		t.Fatal("expected no operator on a bare request")
	}
	ctx := WithOperator(nil, "op-1", string(enums.OperatorRoleManager)) //nolint:staticcheck
	op, ok := OperatorFromContext(ctx)
	if !ok || op.ID != "op-1" || op.Role != enums.OperatorRoleManager {
		t.Fatalf("unexpected operator %+v ok=%v", op, ok)
	}
}
