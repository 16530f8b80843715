package main

import (
	"net/http"

	"github.com/go-chi/cors"
)

// withCORS lets the frontend dev server and the Docker frontend call the
// backend from the browser.
func withCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	})
}
