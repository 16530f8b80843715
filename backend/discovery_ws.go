package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
)

const wsWriteTimeout = 10 * time.Second

// ServerEvent is one message on the discovery stream.
type ServerEvent struct {
	Type string `json:"type"` // "match" | "done" | "error"
	Data any    `json:"data,omitempty"`
}

func newUpgrader(origins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// GET /ws/discovery - streams the caller's ranked matches one event at a
// time, then a done event carrying the count, then closes.
func wsDiscoveryHandler(a *app) http.HandlerFunc {
	upgrader := newUpgrader(a.cfg.CORS.AllowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())
		opts := compat.Options{IncludeSymbolic: queryBool(r, "symbolic")}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("user", userID).Msg("ws upgrade failed")
			return
		}
		defer conn.Close()

		send := func(evt ServerEvent) error {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			return conn.WriteJSON(evt)
		}

		matches, err := a.ranker.Rank(r.Context(), userID, opts)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("user", userID).Msg("ranking for ws stream")
			_ = send(ServerEvent{Type: "error", Data: "recommendation_error"})
			closeNormally(conn)
			return
		}
		for _, m := range matches {
			if err := send(ServerEvent{Type: "match", Data: m}); err != nil {
				return
			}
		}
		if err := send(ServerEvent{Type: "done", Data: map[string]int{"count": len(matches)}}); err != nil {
			return
		}
		closeNormally(conn)
	}
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
}
