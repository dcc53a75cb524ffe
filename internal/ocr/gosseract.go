//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognizes in-process through the libtesseract binding. A
// client is not safe for concurrent use, so calls are serialized.
type Gosseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func newGosseract(cfg Config) (Recognizer, error) {
	client := gosseract.NewClient()
	if cfg.Lang != "" {
		if err := client.SetLanguage(cfg.Lang); err != nil {
			client.Close()
			return nil, fmt.Errorf("gosseract: language: %w", err)
		}
	}
	if cfg.TessdataDir != "" {
		client.TessdataPrefix = cfg.TessdataDir
	}
	return &Gosseract{client: client}, nil
}

func (g *Gosseract) Recognize(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("gosseract: set image: %w", err)
	}
	text, err := g.client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return text, nil
}

func (g *Gosseract) Close() error {
	return g.client.Close()
}
