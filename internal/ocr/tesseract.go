package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tesseract shells out to the tesseract CLI. The image is written to a
// uniquely named temp file for the duration of one call.
type Tesseract struct {
	Bin         string
	Lang        string
	TessdataDir string
	TempDir     string

	runner Runner
	logger *zap.Logger
}

// NewTesseract builds a CLI recognizer; runner may be nil for the real exec.
func NewTesseract(cfg Config, runner Runner, logger *zap.Logger) *Tesseract {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	t := &Tesseract{
		Bin:         cfg.Tesseract,
		Lang:        cfg.Lang,
		TessdataDir: cfg.TessdataDir,
		runner:      runner,
		logger:      logger,
	}
	if t.Bin == "" {
		t.Bin = "tesseract"
	}
	if t.Lang == "" {
		t.Lang = "eng"
	}
	return t
}

func (t *Tesseract) Recognize(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", ErrEmptyImage
	}

	dir := t.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "capture-"+uuid.NewString()+".img")
	if err := os.WriteFile(path, img, 0o600); err != nil {
		return "", fmt.Errorf("tesseract: stage image: %w", err)
	}
	defer os.Remove(path)

	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", t.Lang}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.Bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
