package main

import (
	"errors"
	"net/http"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
	"github.com/7977Brahma/tailika-matrimony-platform/store"
)

// GET /me/profile
func getMyProfileHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := a.store.Profile(r.Context(), userIDFromContext(r.Context()))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		} else if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("loading profile")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PUT /me/profile - replaces the caller's profile and marks it complete.
// The ID in the body is ignored.
func putMyProfileHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())

		var p compat.Profile
		if err := decodeJSON(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		p.ID = userID
		if err := compat.ValidateProfile(&p); err != nil {
			writeErrorDetail(w, http.StatusBadRequest, "invalid_profile", err.Error())
			return
		}

		if err := a.store.UpsertProfile(r.Context(), &p); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "user_not_found")
				return
			}
			logging.Ctx(r.Context()).Error().Err(err).Msg("saving profile")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		a.ranker.Forget(userID)

		logging.Ctx(r.Context()).Info().Str("user", userID).Msg("profile updated")
		writeJSON(w, http.StatusOK, &p)
	}
}
