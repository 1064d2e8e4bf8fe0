// Package api exposes the HTTP interface for the reply service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/auth"
	"github.com/replydesk/replydesk/internal/bot"
	"github.com/replydesk/replydesk/internal/config"
	"github.com/replydesk/replydesk/internal/metrics"
	"github.com/replydesk/replydesk/internal/responder"
	"github.com/replydesk/replydesk/internal/settings"
)

// CrawlRunner executes one training batch.
type CrawlRunner interface {
	Run(ctx context.Context, urls []string) bot.CrawlCounters
}

// Pinger checks a downstream dependency, typically the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP handlers to the stores and services.
type Server struct {
	router chi.Router

	faqs      bot.FAQStore
	setStore  bot.SettingsStore
	runtime   *settings.Runtime
	responder *responder.Responder
	denyList  *responder.DenyList
	sender    bot.Sender
	crawler   CrawlRunner
	authSvc   *auth.Service
	pinger    Pinger
	logger    *zap.Logger
	cfg       config.Config
}

// Deps collects the dependencies NewServer wires into routes.
type Deps struct {
	FAQs          bot.FAQStore
	SettingsStore bot.SettingsStore
	Runtime       *settings.Runtime
	Responder     *responder.Responder
	DenyList      *responder.DenyList
	Sender        bot.Sender
	Crawler       CrawlRunner
	Auth          *auth.Service
	Pinger        Pinger
	Logger        *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, cfg config.Config) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		faqs:      deps.FAQs,
		setStore:  deps.SettingsStore,
		runtime:   deps.Runtime,
		responder: deps.Responder,
		denyList:  deps.DenyList,
		sender:    deps.Sender,
		crawler:   deps.Crawler,
		authSvc:   deps.Auth,
		pinger:    deps.Pinger,
		logger:    logger,
		cfg:       cfg,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(metrics.Instrument)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/webhook", s.verifyWebhook)
	r.Post("/webhook", s.receiveWebhook)

	r.Post("/login", s.login)
	r.Post("/forgot-password", s.forgotPassword)
	r.Post("/reset-password/{token}", s.resetPassword)

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Route("/faqs", func(r chi.Router) {
			r.Get("/", s.listFAQs)
			r.Post("/", s.createFAQ)
			r.Get("/export", s.exportFAQs)
			r.Post("/import", s.importFAQs)
			r.Put("/{faq_id}", s.updateFAQ)
			r.Delete("/{faq_id}", s.deleteFAQ)
		})
		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
		r.Post("/train", s.train)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Info("request completed",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
