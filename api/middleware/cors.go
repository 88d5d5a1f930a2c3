package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the configured back-office UI origins call the API and read the
// request id and replay marker headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", idempotencyHeader, actorHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, replayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
