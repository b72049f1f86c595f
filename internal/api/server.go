// Package api exposes the HTTP interface for the ingestion service: the
// discovery webhook, the delayed task receivers and the pipeline
// triggers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/blobstore"
	"github.com/youpredict/you-predict-core/internal/config"
	"github.com/youpredict/you-predict-core/internal/discovery"
	"github.com/youpredict/you-predict-core/internal/fanout"
	"github.com/youpredict/you-predict-core/internal/features"
	"github.com/youpredict/you-predict-core/internal/metrics"
	"github.com/youpredict/you-predict-core/internal/schedule"
	"github.com/youpredict/you-predict-core/internal/taskqueue"
	"github.com/youpredict/you-predict-core/internal/timeutil"
	"github.com/youpredict/you-predict-core/internal/transform"
	"github.com/youpredict/you-predict-core/internal/warehouse"
)

// VideoAPI is the slice of the metered API the handlers use.
type VideoAPI interface {
	ListChannels(ctx context.Context, ids []string) ([]json.RawMessage, error)
	ListVideos(ctx context.Context, ids []string) ([]json.RawMessage, error)
	ListVideoStats(ctx context.Context, ids []string) ([]json.RawMessage, error)
	ListCommentThreads(ctx context.Context, videoID string, maxPages int) ([]json.RawMessage, error)
	FetchTranscript(ctx context.Context, videoID, language string) (string, error)
}

// HubSubscriber renews feed subscriptions for tracked channels.
type HubSubscriber interface {
	Subscribe(ctx context.Context, channelID string) error
}

// Server wires HTTP handlers to the engines.
type Server struct {
	router chi.Router
	cfg    config.Config
	logger *zap.Logger

	wh       warehouse.Service
	blobs    blobstore.Store
	videoAPI VideoAPI
	hub      HubSubscriber

	discovery *discovery.Engine
	scheduler *fanout.Scheduler
	runner    *features.Runner

	channels    *transform.ChannelTransformer
	videos      *transform.VideoTransformer
	snapshots   *transform.SnapshotTransformer
	comments    *transform.CommentTransformer
	transcripts *transform.TranscriptTransformer

	now func() time.Time
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	cfg config.Config,
	logger *zap.Logger,
	wh warehouse.Service,
	blobs blobstore.Store,
	queue taskqueue.Queue,
	videoAPI VideoAPI,
	hub HubSubscriber,
) *Server {
	metrics.Init()
	sched := schedule.Default()
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		wh:          wh,
		blobs:       blobs,
		videoAPI:    videoAPI,
		hub:         hub,
		discovery:   discovery.NewEngine(wh, cfg.Monitoring.WindowHours, logger),
		scheduler:   fanout.NewScheduler(queue, sched, cfg.Server.BaseURL, logger),
		runner:      features.NewRunner(wh, logger),
		channels:    transform.NewChannelTransformer(wh, logger),
		videos:      transform.NewVideoTransformer(wh, logger),
		snapshots:   transform.NewSnapshotTransformer(wh, logger),
		comments:    transform.NewCommentTransformer(wh, logger),
		transcripts: transform.NewTranscriptTransformer(wh, logger),
		now:         timeutil.UTCNow,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(5 * time.Minute))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/webhook", s.webhookVerify)
	r.Post("/webhook", s.webhookNotify)

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/snapshot/{video_id}", s.taskSnapshot)
		r.Post("/comments/{video_id}", s.taskComments)
		r.Post("/transcript/{video_id}", s.taskTranscript)
	})

	r.Route("/pipelines", func(r chi.Router) {
		r.Post("/daily-channel-refresh", s.pipeline("daily-channel-refresh", s.runChannelRefresh))
		r.Post("/daily-video-refresh", s.pipeline("daily-video-refresh", s.runVideoRefresh))
		r.Post("/expire-monitoring", s.pipeline("expire-monitoring", s.runExpireMonitoring))
		r.Post("/renew-subscriptions", s.pipeline("renew-subscriptions", s.runRenewSubscriptions))
		r.Post("/compute-features", s.pipeline("compute-features", s.runComputeFeatures))
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	// The warehouse is the hard dependency: every handler writes to it.
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if _, err := s.wh.RunQuery(ctx, "SELECT 1 AS x"); err != nil {
		writeError(w, http.StatusServiceUnavailable, "warehouse unreachable")
		return
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

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, time.Since(start))
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
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
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
