package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/7977Brahma/tailika-matrimony-platform/logging"
	"github.com/7977Brahma/tailika-matrimony-platform/store"
)

type userIDKey struct{}

// userIDFromContext returns the authenticated user's ID.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

func withUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// POST /login
func loginHandler(a *app) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		userID, passwordHash, err := a.store.Credentials(r.Context(), req.Email)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		} else if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("querying credentials")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}

		// Don't fail login over presence.
		if err := a.store.TouchOnline(r.Context(), userID); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("user", userID).Msg("failed to update last_online")
		}

		token, err := issueToken(a.secret, userID, a.cfg.TokenTTL)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("generating token")
			writeError(w, http.StatusInternalServerError, "token_generation_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token, "id": userID})
	}
}

func issueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"expires": time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// parseToken verifies an HS256 token and returns its user ID.
func parseToken(secret []byte, tokenStr string) (string, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", false
	}
	// jwt.MapClaims stores numbers as float64.
	expires, ok := claims["expires"].(float64)
	if !ok || time.Now().Unix() > int64(expires) {
		return "", false
	}
	return userID, true
}

// userIDFromRequest reads the bearer token, falling back to the token
// query parameter because browsers cannot set headers on WebSocket upgrades.
func userIDFromRequest(secret []byte, r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return parseToken(secret, strings.TrimPrefix(auth, "Bearer "))
	}
	if q := r.URL.Query().Get("token"); q != "" {
		return parseToken(secret, q)
	}
	return "", false
}

// authenticate rejects requests without a valid token and records the
// caller as online.
func authenticate(a *app) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := userIDFromRequest(a.secret, r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err := a.store.TouchOnline(r.Context(), userID); err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Str("user", userID).Msg("failed to update last_online")
			}
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}
