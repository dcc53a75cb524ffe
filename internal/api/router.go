// Package api is the HTTP surface: the processing endpoint, the document
// catalog, the still-image quality check, health and metrics.
package api

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/toricodesthings/doc-verification-service/internal/config"
	"github.com/toricodesthings/doc-verification-service/internal/logging"
	"github.com/toricodesthings/doc-verification-service/internal/verify"
)

const Version = "1.0.0"

type Server struct {
	cfg    config.Config
	svc    *verify.Service
	logger *zap.Logger

	requestSem *semaphore.Weighted
	ocrSem     *semaphore.Weighted

	limitersMu sync.Mutex
	limiters   *sync.Map // per-IP *rate.Limiter

	metrics *serverMetrics
}

func NewServer(cfg config.Config, svc *verify.Service, logger *zap.Logger) *Server {
	reqs := cfg.MaxConcurrentRequests
	if reqs <= 0 {
		reqs = 15
	}
	ocrs := cfg.MaxOCRConcurrent
	if ocrs <= 0 {
		ocrs = 3
	}
	return &Server{
		cfg:        cfg,
		svc:        svc,
		logger:     logging.OrNop(logger),
		requestSem: semaphore.NewWeighted(reqs),
		ocrSem:     semaphore.NewWeighted(ocrs),
		limiters:   &sync.Map{},
		metrics:    &serverMetrics{},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withLogging)
	r.Use(s.withRecovery)
	r.Use(s.withCORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found", "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/documents", s.handleDocuments)
		r.Get("/documents/{id}", s.handleDocument)

		r.Group(func(r chi.Router) {
			r.Use(s.withRateLimit)
			r.Use(s.withConcurrencyLimit)

			r.Post("/ocr/process", s.handleProcess)
			r.Post("/scan/analyze", s.handleAnalyze)
		})
	})

	return r
}

// RunJanitor periodically logs process stats and drops the per-IP limiters
// until ctx ends.
func (s *Server) RunJanitor(ctx context.Context) {
	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		snap := s.metrics.snapshot()
		s.logger.Info("stats",
			zap.Int64("active", snap.ActiveRequests),
			zap.Int64("total", snap.TotalRequests),
			zap.Int64("processed", snap.Processed),
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.Uint64("mem_mb", m.Alloc/(1<<20)),
		)

		s.resetLimiters()
	}
}

func (s *Server) resetLimiters() {
	s.limitersMu.Lock()
	s.limiters = &sync.Map{}
	s.limitersMu.Unlock()
}

func (s *Server) limiterMap() *sync.Map {
	s.limitersMu.Lock()
	defer s.limitersMu.Unlock()
	return s.limiters
}
