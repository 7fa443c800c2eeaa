package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

const corsPreflightMaxAge = 300

// CORS admits browser clients from origins. Credentials are only allowed
// with an explicit origin list, never with the "*" wildcard.
func CORS(origins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(origins, "*")
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, replayedHeader, "Retry-After"},
		AllowCredentials: !wildcard,
		MaxAge:           corsPreflightMaxAge,
	}).Handler
}
