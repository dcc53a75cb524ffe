package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OCR_PROVIDER", "")
	t.Setenv("SCAN_ANALYSIS_INTERVAL", "")

	cfg := Load()
	if cfg.OCRProvider != "tesseract" {
		t.Errorf("OCRProvider = %q, want tesseract", cfg.OCRProvider)
	}
	if cfg.AnalysisInterval != 200*time.Millisecond {
		t.Errorf("AnalysisInterval = %s, want 200ms", cfg.AnalysisInterval)
	}
	if cfg.MaxJSONBodyBytes != 50<<20 {
		t.Errorf("MaxJSONBodyBytes = %d, want 50MB", cfg.MaxJSONBodyBytes)
	}
	if cfg.BurstFrames != 3 || cfg.CountdownFrom != 3 {
		t.Errorf("burst/countdown defaults = %d/%d, want 3/3", cfg.BurstFrames, cfg.CountdownFrom)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OCR_PROVIDER", "Mistral")
	t.Setenv("BURST_INTERVAL", "50ms")
	t.Setenv("BURST_FRAMES", "not-a-number")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg := Load()
	if cfg.OCRProvider != "mistral" {
		t.Errorf("OCRProvider = %q, want mistral", cfg.OCRProvider)
	}
	if cfg.BurstInterval != 50*time.Millisecond {
		t.Errorf("BurstInterval = %s, want 50ms", cfg.BurstInterval)
	}
	if cfg.BurstFrames != 3 {
		t.Errorf("BurstFrames = %d, want fallback 3", cfg.BurstFrames)
	}
	if !cfg.LogDevelopment {
		t.Error("LogDevelopment = false, want true")
	}
}

func TestValidate(t *testing.T) {
	base := Load()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "tesseract ok", mutate: func(c *Config) { c.OCRProvider = "tesseract" }},
		{name: "mistral without key", mutate: func(c *Config) { c.OCRProvider = "mistral"; c.MistralAPIKey = "" }, wantErr: true},
		{name: "mistral with key", mutate: func(c *Config) { c.OCRProvider = "mistral"; c.MistralAPIKey = "k" }},
		{name: "hybrid without key", mutate: func(c *Config) { c.OCRProvider = "hybrid"; c.MistralAPIKey = "" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.OCRProvider = "abbyy" }, wantErr: true},
		{name: "jpeg quality too high", mutate: func(c *Config) { c.OCRProvider = "tesseract"; c.CaptureJPEGQuality = 101 }, wantErr: true},
		{name: "sample width too small", mutate: func(c *Config) { c.OCRProvider = "tesseract"; c.SampleWidth = 8 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
