// Package httpapi exposes the assistant and the job catalogue over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
	"github.com/spigell/skillbridge-assistant/internal/logger"
)

// Chatter answers chat messages within a session.
type Chatter interface {
	Ask(ctx context.Context, sessionID, text string) (reply, newSessionID string)
}

// JobManager manages the job catalogue.
type JobManager interface {
	List(ctx context.Context) ([]jobs.Record, error)
	Get(ctx context.Context, id int64) (jobs.Record, error)
	Create(ctx context.Context, r jobs.Record) (jobs.Record, error)
	Update(ctx context.Context, id int64, r jobs.Record) (jobs.Record, error)
	Delete(ctx context.Context, id int64) error
}

// Deps wire the handler.
type Deps struct {
	Chat     Chatter
	Jobs     JobManager
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger

	// RateLimit is the sustained chat requests per second allowed per client
	// IP; zero disables limiting.
	RateLimit float64
	RateBurst int

	// TrustProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// Enable it only behind a reverse proxy that sets those headers.
	TrustProxy bool
}

// NewHandler builds the router.
func NewHandler(deps Deps) http.Handler {
	log := logger.OrNop(deps.Logger)

	r := chi.NewRouter()
	if deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", handleHealth)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimit > 0 {
			r.Use(newIPLimiter(deps.RateLimit, deps.RateBurst).middleware)
		}
		r.Post("/chat/api", handleChat(deps.Chat))
	})

	if deps.Jobs != nil {
		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", handleListJobs(deps.Jobs))
			r.Post("/", handleCreateJob(deps.Jobs))
			r.Get("/{id}", handleGetJob(deps.Jobs))
			r.Put("/{id}", handleUpdateJob(deps.Jobs))
			r.Delete("/{id}", handleDeleteJob(deps.Jobs))
		})
	}

	return r
}

// NewServer wraps the handler in an http.Server.
func NewServer(addr string, handler http.Handler, readTimeout time.Duration) *http.Server {
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
