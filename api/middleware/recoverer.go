package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sajith213/fuelstation-backend/api/responses"
	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
	"github.com/sajith213/fuelstation-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 envelope. When the handler had
// already started its response only the panic is logged. http.ErrAbortHandler
// is re-raised so the server drops the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}
				err := pkgerrors.Wrap(pkgerrors.CodeInternal, panicError(v), "handler panic")
				if rec.status != 0 {
					ctx := logg.WithFields(r.Context(), map[string]any{"method": r.Method, "path": r.URL.Path, "status": rec.status})
					logg.Error(ctx, "panic after response started", err)
					return
				}
				responses.WriteError(r.Context(), logg, w, err)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
