// Package ocr holds the text-recognition collaborators. Each one takes an
// encoded image and returns newline-delimited text, possibly empty.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/toricodesthings/doc-verification-service/internal/config"
)

type Recognizer interface {
	Recognize(ctx context.Context, img []byte) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img []byte) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img []byte) (string, error) {
	return f(ctx, img)
}

var ErrEmptyImage = errors.New("ocr: empty image")

type Config struct {
	Provider string // tesseract | mistral | hybrid | gosseract

	Tesseract   string // binary name or path
	Lang        string
	TessdataDir string

	MistralAPIKey string
	MistralModel  string

	Timeout time.Duration
}

// ConfigFrom picks the recognizer settings out of the process config.
func ConfigFrom(c config.Config) Config {
	return Config{
		Provider:      c.OCRProvider,
		Tesseract:     c.TesseractPath,
		Lang:          c.TesseractLang,
		TessdataDir:   c.TessdataDir,
		MistralAPIKey: c.MistralAPIKey,
		MistralModel:  c.DefaultOCRModel,
		Timeout:       c.OCRTimeout,
	}
}

// New builds the configured recognizer, bounded by cfg.Timeout per call.
func New(cfg Config, logger *zap.Logger) (Recognizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var r Recognizer
	switch strings.ToLower(cfg.Provider) {
	case "", "tesseract":
		r = NewTesseract(cfg, nil, logger)
	case "mistral":
		m, err := NewMistral(cfg.MistralAPIKey, cfg.MistralModel)
		if err != nil {
			return nil, err
		}
		r = m
	case "hybrid":
		m, err := NewMistral(cfg.MistralAPIKey, cfg.MistralModel)
		if err != nil {
			return nil, err
		}
		r = NewHybrid(NewTesseract(cfg, nil, logger), m, logger)
	case "gosseract":
		g, err := newGosseract(cfg)
		if err != nil {
			return nil, err
		}
		r = g
	default:
		return nil, fmt.Errorf("ocr: unknown provider %q", cfg.Provider)
	}

	if cfg.Timeout > 0 {
		r = WithTimeout(r, cfg.Timeout)
	}
	return r, nil
}

// WithTimeout bounds every Recognize call on r.
func WithTimeout(r Recognizer, d time.Duration) Recognizer {
	return RecognizerFunc(func(ctx context.Context, img []byte) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return r.Recognize(ctx, img)
	})
}
