// Command scan runs one guided capture against a directory of frames standing
// in for a camera, then validates the captured image as a document type.
//
//	scan -dir ./frames -type pan-card -out capture.jpg
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/toricodesthings/doc-verification-service/internal/capture"
	"github.com/toricodesthings/doc-verification-service/internal/config"
	"github.com/toricodesthings/doc-verification-service/internal/countdown"
	"github.com/toricodesthings/doc-verification-service/internal/frame"
	"github.com/toricodesthings/doc-verification-service/internal/logging"
	"github.com/toricodesthings/doc-verification-service/internal/ocr"
	"github.com/toricodesthings/doc-verification-service/internal/scanner"
	"github.com/toricodesthings/doc-verification-service/internal/types"
	"github.com/toricodesthings/doc-verification-service/internal/validation"
	"github.com/toricodesthings/doc-verification-service/internal/verify"
)

type report struct {
	CaptureID        string                 `json:"captureId"`
	Selected         int                    `json:"selectedShot"`
	Shots            []capture.Shot         `json:"shots"`
	Status           scanner.Status         `json:"scanStatus"`
	ValidationResult types.ValidationResult `json:"validationResult"`
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of frames replayed as the camera (required)")
		docType = flag.String("type", "", "document type id, e.g. pan-card")
		out     = flag.String("out", "", "write the enhanced capture JPEG here")
		hold    = flag.Duration("hold", time.Second, "how long each frame stays on screen")
		timeout = flag.Duration("timeout", time.Minute, "give up if nothing is captured in this time")
		verbose = flag.Bool("v", false, "print every scan status change to stderr")
	)
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	rep, err := scan(ctx, cfg, logger, *dir, *docType, *out, *hold, *verbose)
	if err != nil {
		logger.Error("scan failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintln(os.Stderr, "no capture: the document never held steady long enough")
		}
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		logger.Error("write report", zap.Error(err))
		os.Exit(1)
	}
}

func scan(ctx context.Context, cfg config.Config, logger *zap.Logger, dir, docType, out string, hold time.Duration, verbose bool) (*report, error) {
	src, err := frame.NewDirSource(dir, hold)
	if err != nil {
		return nil, err
	}

	burst := capture.NewBurst(src, cfg.BurstFrames, cfg.BurstInterval, cfg.BurstStride, cfg.CaptureJPEGQuality, logger.Named("capture"))

	var onStatus func(scanner.Status)
	if verbose {
		onStatus = func(st scanner.Status) {
			fmt.Fprintf(os.Stderr, "%-8s %-9s remaining=%d clarity=%.0f lighting=%s frame=%s\n",
				st.Phase, st.Event, st.Remaining, st.Clarity, st.Lighting, src.Current())
		}
	}

	session := scanner.NewSession(src,
		scanner.NewDocumentReadiness(cfg.SampleWidth, cfg.AnalysisInterval),
		countdown.New(cfg.CountdownFrom, cfg.CountdownStep),
		burst,
		scanner.Options{
			Refresh:  cfg.RefreshInterval,
			Warmup:   cfg.WarmupDelay,
			OnStatus: onStatus,
			Logger:   logger.Named("scanner"),
		},
	)

	result, err := session.Run(ctx)
	if err != nil {
		return nil, err
	}
	status := session.Status()

	if out != "" {
		if err := os.WriteFile(out, result.Image, 0o644); err != nil {
			return nil, fmt.Errorf("write capture: %w", err)
		}
	}

	recognizer, err := ocr.New(ocr.ConfigFrom(cfg), logger.Named("ocr"))
	if err != nil {
		return nil, err
	}
	svc := verify.NewService(recognizer, cfg.SampleWidth, logger.Named("verify")).WithMaxPixels(cfg.MaxFramePixels)

	res, err := svc.ProcessImage(ctx, result.Image, docType)
	if err != nil {
		return nil, err
	}

	return &report{
		CaptureID:        result.ID,
		Selected:         result.Selected,
		Shots:            result.Shots,
		Status:           status,
		ValidationResult: validation.WithClarity(res, status.Clarity),
	}, nil
}
