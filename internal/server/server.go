// Package server exposes the HTTP side of twapi: the Account Activity
// webhook receiver, the OAuth callback used by `twapi login`, and a health
// endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/abdulachik/twapi/internal/db"
)

// Component names reported through Health.
const (
	ComponentWebhook  = "webhook"
	ComponentDatabase = "database"
	ComponentCallback = "callback"
)

const maxWebhookBody = 1 << 20

// EventRecorder persists webhook deliveries.
type EventRecorder interface {
	CreateWebhookEvent(ctx context.Context, arg db.CreateWebhookEventParams) (int64, error)
}

// Config wires the handlers. A nil Events disables the webhook routes and a
// nil Callbacks disables the OAuth callback route.
type Config struct {
	ConsumerSecret string
	Events         EventRecorder
	Callbacks      chan<- Callback
	Health         *Health
}

// Server holds the router and its dependencies.
type Server struct {
	consumerSecret string
	events         EventRecorder
	callbacks      chan<- Callback
	health         *Health
	router         chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	h := cfg.Health
	if h == nil {
		h = NewHealth()
	}

	s := &Server{
		consumerSecret: cfg.ConsumerSecret,
		events:         cfg.Events,
		callbacks:      cfg.Callbacks,
		health:         h,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.events != nil {
		r.Get("/webhook", s.handleCRC)
		r.Post("/webhook", s.handleEvent)
	}
	if s.callbacks != nil {
		r.Get("/callback", s.handleCallback)
	}

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Health returns the tracker the handlers report into.
func (s *Server) Health() *Health {
	return s.health
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.health.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy":    status == http.StatusOK,
		"components": s.health.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsoniter.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
