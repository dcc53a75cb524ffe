package ocr

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const (
	DefaultMinWords        = 4
	DefaultMaxGarbageRatio = 0.3
)

// Decision is the verdict on one primary recognition.
type Decision struct {
	WordCount    int
	GarbageRatio float64
	NeedsRetry   bool
	Reasons      []string
}

// Hybrid runs the cheap local recognizer first and pays for the fallback only
// when the local text looks unusable.
type Hybrid struct {
	Primary  Recognizer
	Fallback Recognizer

	MinWords        int
	MaxGarbageRatio float64

	logger *zap.Logger
}

func NewHybrid(primary, fallback Recognizer, logger *zap.Logger) *Hybrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{
		Primary:         primary,
		Fallback:        fallback,
		MinWords:        DefaultMinWords,
		MaxGarbageRatio: DefaultMaxGarbageRatio,
		logger:          logger,
	}
}

func (h *Hybrid) Recognize(ctx context.Context, img []byte) (string, error) {
	text, perr := h.Primary.Recognize(ctx, img)
	if perr == nil {
		d := Score(text, h.MinWords, h.MaxGarbageRatio)
		if !d.NeedsRetry || h.Fallback == nil {
			return text, nil
		}
		h.logger.Info("primary text unusable, retrying with fallback",
			zap.Int("words", d.WordCount),
			zap.Float64("garbage_ratio", d.GarbageRatio),
			zap.Strings("reasons", d.Reasons),
		)
	} else {
		if h.Fallback == nil {
			return "", perr
		}
		h.logger.Warn("primary recognizer failed", zap.Error(perr))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	fb, err := h.Fallback.Recognize(ctx, img)
	if err != nil {
		// Weak local text beats nothing.
		if perr == nil {
			h.logger.Warn("fallback failed, keeping primary text", zap.Error(err))
			return text, nil
		}
		return "", err
	}
	return fb, nil
}

// Score judges whether recognized text is worth extracting from.
func Score(text string, minWords int, maxGarbage float64) Decision {
	text = strings.TrimSpace(text)
	d := Decision{WordCount: len(strings.Fields(text))}

	if text == "" {
		d.NeedsRetry = true
		d.Reasons = []string{"empty_text"}
		return d
	}

	var total, garbage int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(".,:;/-'()&#", r) {
			garbage++
		}
	}
	if total > 0 {
		d.GarbageRatio = float64(garbage) / float64(total)
	}

	if d.WordCount < minWords {
		d.NeedsRetry = true
		d.Reasons = append(d.Reasons, "too_few_words")
	}
	if d.GarbageRatio > maxGarbage {
		d.NeedsRetry = true
		d.Reasons = append(d.Reasons, "garbage_chars")
	}
	return d
}
