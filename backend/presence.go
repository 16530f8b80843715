package main

import "net/http"

// POST /me/ping - authenticate has already marked the caller online.
func mePingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
