// Package verify is the processing pipeline behind the HTTP endpoints:
// payload decode, text recognition, field extraction and aggregation.
package verify

import (
	"bytes"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/toricodesthings/doc-verification-service/internal/apperr"
	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/logging"
	"github.com/toricodesthings/doc-verification-service/internal/ocr"
	"github.com/toricodesthings/doc-verification-service/internal/quality"
	"github.com/toricodesthings/doc-verification-service/internal/types"
	"github.com/toricodesthings/doc-verification-service/internal/validation"
)

type Service struct {
	recognizer ocr.Recognizer
	sampler    frame.Sampler
	maxPixels  int
	logger     *zap.Logger
}

func NewService(r ocr.Recognizer, sampleWidth int, logger *zap.Logger) *Service {
	return &Service{
		recognizer: r,
		sampler:    frame.NewSampler(sampleWidth),
		maxPixels:  frame.DefaultMaxPixels,
		logger:     logging.OrNop(logger),
	}
}

// WithMaxPixels sets the largest still image Analyze will decode.
func (s *Service) WithMaxPixels(n int) *Service {
	if n > 0 {
		s.maxPixels = n
	}
	return s
}

// Process decodes the request image and validates it as req.DocumentType.
// Input problems come back as apperr input errors; a recognizer failure is a
// recognition error and yields no partial result.
func (s *Service) Process(ctx context.Context, req types.ProcessRequest) (types.ValidationResult, error) {
	img, err := DecodePayload(req.Image)
	if err != nil {
		return types.ValidationResult{}, err
	}
	return s.ProcessImage(ctx, img, req.DocumentType)
}

// ProcessImage is Process for an already decoded image.
func (s *Service) ProcessImage(ctx context.Context, img []byte, docType string) (types.ValidationResult, error) {
	start := time.Now()

	raw, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		s.logger.Warn("recognition failed",
			zap.String("document_type", docType),
			zap.Int("image_bytes", len(img)),
			zap.Error(err),
		)
		return types.ValidationResult{}, apperr.Recognition("Failed to process image", err)
	}

	text := CleanText(raw)
	result := validation.Validate(text, docType)

	s.logger.Info("document processed",
		zap.String("document_type", docType),
		zap.Int("text_chars", len(text)),
		zap.Int("fields", len(result.OCRFields)),
		zap.Bool("valid", result.IsValid),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// Analyze runs one unthrottled quality analysis over a still image. With no
// history to smooth against, readiness is judged on the raw clarity.
func (s *Service) Analyze(ctx context.Context, req types.AnalyzeRequest) (types.QualityReport, error) {
	img, err := DecodePayload(req.Image)
	if err != nil {
		return types.QualityReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.QualityReport{}, err
	}

	f, err := frame.DecodeLimit(bytes.NewReader(img), s.maxPixels)
	if errors.Is(err, frame.ErrTooLarge) {
		return types.QualityReport{}, apperr.Input("invalid_image", "Image dimensions too large", err)
	}
	if err != nil {
		return types.QualityReport{}, apperr.Input("invalid_image", "Image could not be decoded", err)
	}

	a := quality.Assess(quality.Measure(s.sampler.Sample(f)), f.Width)
	ready := quality.Ready(a.RawClarity, a)
	return quality.Report(a, f.Width, f.Height, ready), nil
}
