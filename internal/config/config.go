package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Limits
	MaxJSONBodyBytes int64

	// Concurrency
	MaxConcurrentRequests int64
	MaxOCRConcurrent      int64

	// Server timeouts
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request timeouts
	ProcessTimeout time.Duration
	AnalyzeTimeout time.Duration

	// rate limiting (per IP)
	RateLimitEvery time.Duration
	RateLimitBurst int

	// housekeeping
	CleanupInterval time.Duration

	// health
	HealthDegradeRatio float64

	// http
	MaxHeaderBytes  int
	CORSAllowOrigin string

	// Text recognition
	OCRProvider     string // "tesseract" | "mistral" | "hybrid" | "gosseract"
	OCRTimeout      time.Duration
	TesseractPath   string
	TesseractLang   string
	TessdataDir     string
	MistralAPIKey   string
	DefaultOCRModel string

	// Logging
	LogLevel       string
	LogDevelopment bool

	// Scanner
	SampleWidth        int
	MaxFramePixels     int
	AnalysisInterval   time.Duration
	RefreshInterval    time.Duration
	WarmupDelay        time.Duration
	CountdownFrom      int
	CountdownStep      time.Duration
	BurstFrames        int
	BurstInterval      time.Duration
	BurstStride        int
	CaptureJPEGQuality int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: envStr("PORT", "5000"),

		MaxJSONBodyBytes: int64(envInt("MAX_JSON_BODY_BYTES", 50<<20)),

		MaxConcurrentRequests: int64(envInt("MAX_CONCURRENT_REQUESTS", 15)),
		MaxOCRConcurrent:      int64(envInt("MAX_OCR_CONCURRENT", 3)),

		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:       envDur("READ_TIMEOUT", 60*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),

		ProcessTimeout: envDur("PROCESS_TIMEOUT", 90*time.Second),
		AnalyzeTimeout: envDur("ANALYZE_TIMEOUT", 15*time.Second),

		RateLimitEvery: envDur("RATE_LIMIT_EVERY", 600*time.Millisecond),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 20),

		CleanupInterval: envDur("CLEANUP_INTERVAL", 5*time.Minute),

		HealthDegradeRatio: envFloat("HEALTH_DEGRADE_RATIO", 0.9),

		MaxHeaderBytes:  envInt("MAX_HEADER_BYTES", 1<<20),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		OCRProvider:     strings.ToLower(envStr("OCR_PROVIDER", "tesseract")),
		OCRTimeout:      envDur("OCR_TIMEOUT", 60*time.Second),
		TesseractPath:   envStr("TESSERACT_PATH", "tesseract"),
		TesseractLang:   envStr("TESSERACT_LANG", "eng"),
		TessdataDir:     envStr("TESSDATA_DIR", ""),
		MistralAPIKey:   envStr("MISTRAL_API_KEY", ""),
		DefaultOCRModel: envStr("DEFAULT_OCR_MODEL", "mistral-ocr-latest"),

		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogDevelopment: envBool("LOG_DEVELOPMENT", false),

		SampleWidth:        envInt("SCAN_SAMPLE_WIDTH", 320),
		MaxFramePixels:     envInt("MAX_FRAME_PIXELS", 40_000_000),
		AnalysisInterval:   envDur("SCAN_ANALYSIS_INTERVAL", 200*time.Millisecond),
		RefreshInterval:    envDur("SCAN_REFRESH_INTERVAL", 16*time.Millisecond),
		WarmupDelay:        envDur("SCAN_WARMUP_DELAY", 500*time.Millisecond),
		CountdownFrom:      envInt("SCAN_COUNTDOWN_FROM", 3),
		CountdownStep:      envDur("SCAN_COUNTDOWN_STEP", time.Second),
		BurstFrames:        envInt("BURST_FRAMES", 3),
		BurstInterval:      envDur("BURST_INTERVAL", 100*time.Millisecond),
		BurstStride:        envInt("BURST_STRIDE", 4),
		CaptureJPEGQuality: envInt("CAPTURE_JPEG_QUALITY", 90),
	}
}

func (c Config) Validate() error {
	switch c.OCRProvider {
	case "tesseract", "gosseract":
	case "mistral", "hybrid":
		if strings.TrimSpace(c.MistralAPIKey) == "" {
			return fmt.Errorf("MISTRAL_API_KEY is required when OCR_PROVIDER=%s", c.OCRProvider)
		}
	default:
		return fmt.Errorf("unknown OCR_PROVIDER %q", c.OCRProvider)
	}
	if c.CaptureJPEGQuality > 100 {
		return fmt.Errorf("CAPTURE_JPEG_QUALITY must be within 1..100")
	}
	if c.SampleWidth < 16 {
		return fmt.Errorf("SCAN_SAMPLE_WIDTH must be at least 16")
	}
	return nil
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
