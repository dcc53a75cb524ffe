package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/toricodesthings/doc-verification-service/internal/apperr"
	"github.com/toricodesthings/doc-verification-service/internal/extract"
	"github.com/toricodesthings/doc-verification-service/internal/types"
	"github.com/toricodesthings/doc-verification-service/internal/verify"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, active := s.metrics.get()
	status := "healthy"
	code := http.StatusOK

	ratio := s.cfg.HealthDegradeRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.9
	}

	if s.cfg.MaxConcurrentRequests > 0 && active >= int64(float64(s.cfg.MaxConcurrentRequests)*ratio) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"active":  active,
		"version": Version,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeJSON(w, http.StatusOK, map[string]any{
		"requests":   s.metrics.snapshot(),
		"goroutines": runtime.NumGoroutine(),
		"memAllocMB": m.Alloc / (1 << 20),
		"memSysMB":   m.Sys / (1 << 20),
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": extract.Catalog(),
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := extract.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown_document", "Unknown document type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"document": doc,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[types.ProcessRequest](w, r, s.cfg.MaxJSONBodyBytes, verify.CheckProcessRequest)
	if err != nil {
		s.writeAppErr(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context(), s.cfg.ProcessTimeout)
	defer cancel()

	if err := s.ocrSem.Acquire(ctx, 1); err != nil {
		writeErr(w, http.StatusServiceUnavailable, "ocr_capacity", "OCR at capacity")
		return
	}
	defer s.ocrSem.Release(1)

	res, err := s.svc.Process(ctx, req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindRecognition {
			s.metrics.recordRecognitionFailure()
		}
		s.writeAppErr(w, r, err)
		return
	}

	s.metrics.recordProcessed(res.IsValid)
	writeJSON(w, http.StatusOK, types.ProcessResponse{
		Success:          true,
		ValidationResult: &res,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[types.AnalyzeRequest](w, r, s.cfg.MaxJSONBodyBytes, verify.CheckAnalyzeRequest)
	if err != nil {
		s.writeAppErr(w, r, err)
		return
	}

	ctx, cancel := withTimeout(r.Context(), s.cfg.AnalyzeTimeout)
	defer cancel()

	// Decoding and measuring a full image is as CPU heavy as recognition.
	if err := s.ocrSem.Acquire(ctx, 1); err != nil {
		writeErr(w, http.StatusServiceUnavailable, "ocr_capacity", "OCR at capacity")
		return
	}
	defer s.ocrSem.Release(1)

	rep, err := s.svc.Analyze(ctx, req)
	if err != nil {
		s.writeAppErr(w, r, err)
		return
	}

	s.metrics.recordAnalyzed()
	writeJSON(w, http.StatusOK, types.AnalyzeResponse{
		Success: true,
		Report:  &rep,
	})
}

// writeAppErr renders err in the uniform envelope. Input errors carry their
// own message; everything else is reported generically and logged.
func (s *Server) writeAppErr(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		status = http.StatusRequestEntityTooLarge
	}

	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("path", sanitizeLogString(r.URL.Path)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err),
		)
	}

	message := apperr.Message(err)
	if apperr.KindOf(err) == apperr.KindRecognition {
		message = "Failed to process image"
	}
	writeErr(w, status, apperr.Code(err), message)
}

// parseJSON reads a single JSON value of at most limit bytes, checks it
// against the request schema and decodes it into T.
func parseJSON[T any](w http.ResponseWriter, r *http.Request, limit int64, check func(any) error) (T, error) {
	var out T

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return out, apperr.Input("payload_too_large", "Request body too large", err)
		}
		return out, apperr.Input("bad_request", "Could not read request body", err)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return out, apperr.Input("bad_request", "Request body is not valid JSON", err)
	}
	if check != nil {
		if err := check(raw); err != nil {
			return out, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, apperr.Input("bad_request", "Invalid request body", err)
	}

	// Ensure there's nothing else after the first JSON value
	if err := dec.Decode(new(any)); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected trailing data")
		}
		return out, apperr.Input("bad_request", "Invalid request body", err)
	}

	return out, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
