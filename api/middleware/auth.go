package middleware

import (
	"net/http"

	"github.com/sajith213/fuelstation-backend/api/responses"
	"github.com/sajith213/fuelstation-backend/pkg/auth"
	"github.com/sajith213/fuelstation-backend/pkg/config"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

// Auth requires a valid operator JWT and attaches the operator to the
// request context and its log fields.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := auth.ParseOperatorToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			id, role := claims.OperatorID.String(), string(claims.Role)
			ctx = logg.WithOperator(WithOperator(ctx, id, role), id, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
