package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
	"github.com/7977Brahma/tailika-matrimony-platform/store"
)

// requireCompleteProfile gates discovery on the caller having finished
// their profile.
func requireCompleteProfile(a *app) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			complete, err := a.store.IsComplete(r.Context(), userIDFromContext(r.Context()))
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("checking profile completion")
				writeError(w, http.StatusInternalServerError, "db_error")
				return
			}
			if !complete {
				writeError(w, http.StatusForbidden, "incomplete_profile")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeRankError maps ranking failures to responses.
func writeRankError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, discovery.ErrNotFound):
		writeError(w, http.StatusForbidden, "incomplete_profile")
	case errors.Is(err, compat.ErrInvalidProfile):
		writeErrorDetail(w, http.StatusUnprocessableEntity, "invalid_profile", err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("ranking candidates")
		writeError(w, http.StatusInternalServerError, "recommendation_error")
	}
}

// GET /recommendations - ranked candidate IDs
func recommendationsHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := a.ranker.Rank(r.Context(), userIDFromContext(r.Context()), compat.Options{})
		if err != nil {
			writeRankError(w, r, err)
			return
		}
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.CandidateID
		}
		writeJSON(w, http.StatusOK, map[string][]string{"recommendations": ids})
	}
}

// GET /recommendations/detailed - ranked candidates with full results.
// ?symbolic=true adds the symbolic indicator.
func recommendationsDetailedHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := compat.Options{IncludeSymbolic: queryBool(r, "symbolic")}
		matches, err := a.ranker.Rank(r.Context(), userIDFromContext(r.Context()), opts)
		if err != nil {
			writeRankError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]discovery.Match{"recommendations": matches})
	}
}

// POST /recommendations/{id}/dismiss
func dismissRecommendationHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())
		targetID := chi.URLParam(r, "id")
		if targetID == "" || targetID == userID {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		err := a.store.Dismiss(r.Context(), userID, targetID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		} else if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("dismissing recommendation")
			writeError(w, http.StatusInternalServerError, "dismiss_error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]bool{"dismissed": true})
	}
}

// GET /compatibility/{id} - full result for one pair. The target must be
// one of the caller's candidates.
func compatibilityHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())
		targetID := chi.URLParam(r, "id")
		if targetID == "" || targetID == userID {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		// Same visibility as /recommendations: rejected, pending, incomplete
		// and dismissed profiles are not found.
		visible, err := a.store.Recommendable(r.Context(), userID, targetID)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("checking candidate visibility")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if !visible {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		opts := compat.Options{IncludeSymbolic: queryBool(r, "symbolic")}
		res, err := a.ranker.Evaluate(r.Context(), userID, targetID, opts)
		switch {
		case errors.Is(err, compat.ErrIneligible):
			writeError(w, http.StatusNotFound, "ineligible")
		case errors.Is(err, discovery.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, compat.ErrInvalidProfile):
			writeErrorDetail(w, http.StatusUnprocessableEntity, "invalid_profile", err.Error())
		case err != nil:
			logging.Ctx(r.Context()).Error().Err(err).Str("candidate", targetID).Msg("evaluating pair")
			writeError(w, http.StatusInternalServerError, "compatibility_error")
		default:
			writeJSON(w, http.StatusOK, res)
		}
	}
}
