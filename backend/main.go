// Command backend serves the matrimony discovery API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
	"github.com/7977Brahma/tailika-matrimony-platform/logging"
)

// app carries the dependencies shared by every handler.
type app struct {
	cfg    *Config
	store  profileStore
	ranker *discovery.Ranker
	secret []byte
}

func newApp(cfg *Config, s profileStore) (*app, error) {
	ranker, err := discovery.NewRanker(compat.New(), loaderStore{s}, cfg.Discovery)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: s, ranker: ranker, secret: []byte(cfg.JWTSecret)}, nil
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)
	r.Use(withCORS(a.cfg.CORS.AllowedOrigins)) // global so OPTIONS preflight is answered

	// Health check endpoint for Docker
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", loginHandler(a))

	r.Group(func(r chi.Router) {
		r.Use(authenticate(a))

		r.Get("/me/profile", getMyProfileHandler(a))
		r.Put("/me/profile", putMyProfileHandler(a))
		r.Post("/me/ping", mePingHandler())

		// Discovery
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(a.cfg.RateLimit))
			r.Use(requireCompleteProfile(a))
			r.Use(DataLoaderMiddleware(a.store))

			r.Get("/recommendations", recommendationsHandler(a))
			r.Get("/recommendations/detailed", recommendationsDetailedHandler(a))
			r.Post("/recommendations/{id}/dismiss", dismissRecommendationHandler(a))
			r.Get("/compatibility/{id}", compatibilityHandler(a))
			r.Get("/ws/discovery", wsDiscoveryHandler(a))
		})
	})
	return r
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("loading configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("backend stopped")
	}
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	a, err := newApp(cfg, s)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("starting matrimony backend")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
