// internal/adapters/in/http/middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured front-end origins. The session cookie is sent
// cross-origin, so credentials are allowed and "*" is never used.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
