package main

import (
	"net/http"
	"time"
)

const loaderWait = 2 * time.Millisecond

// DataLoaderMiddleware creates middleware that injects fresh dataloaders
// into every request context.
func DataLoaderMiddleware(s profileStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithDataLoaders(r.Context(), NewDataLoaders(s, loaderWait))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
