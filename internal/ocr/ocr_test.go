package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/toricodesthings/doc-verification-service/internal/config"
)

type fakeRunner struct {
	name   string
	args   []string
	staged []byte
	out    string
	stderr string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.name, f.args = name, args
	if len(args) > 0 {
		f.staged, _ = os.ReadFile(args[0])
	}
	return []byte(f.out), []byte(f.stderr), f.err
}

func TestTesseractRecognize(t *testing.T) {
	r := &fakeRunner{out: "INCOME TAX DEPARTMENT\nABCDE1234F\n"}
	tess := NewTesseract(Config{Lang: "eng", TessdataDir: "/td"}, r, nil)
	tess.TempDir = t.TempDir()

	text, err := tess.Recognize(context.Background(), []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != r.out {
		t.Errorf("text = %q", text)
	}
	if r.name != "tesseract" {
		t.Errorf("bin = %q", r.name)
	}
	if string(r.staged) != "jpeg-bytes" {
		t.Errorf("staged image = %q", r.staged)
	}
	wantTail := []string{"stdout", "-l", "eng", "--tessdata-dir", "/td"}
	if diff := cmp.Diff(wantTail, r.args[1:]); diff != "" {
		t.Errorf("args (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(r.args[0]); !os.IsNotExist(err) {
		t.Errorf("temp image not removed: %v", err)
	}
}

func TestTesseractFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	r := &fakeRunner{stderr: "Error opening data file", err: boom}
	tess := NewTesseract(Config{}, r, nil)
	tess.TempDir = t.TempDir()

	_, err := tess.Recognize(context.Background(), []byte("x"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "Error opening data file") {
		t.Errorf("stderr missing from %v", err)
	}

	if _, err := tess.Recognize(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image err = %v", err)
	}
}

func TestMistralRecognize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(OCRResponse{Pages: []OCRPage{
			{Index: 0, Markdown: "JOHN SMITH"},
			{Index: 1, Markdown: "ABCDE1234F"},
		}})
	}))
	defer srv.Close()

	m, err := NewMistral("k", "")
	if err != nil {
		t.Fatal(err)
	}
	m.Endpoint = srv.URL
	m.Client = srv.Client()

	png := []byte("\x89PNG\r\n\x1a\n0000")
	text, err := m.Recognize(context.Background(), png)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "JOHN SMITH\nABCDE1234F" {
		t.Errorf("text = %q", text)
	}
	if got["model"] != DefaultMistralModel {
		t.Errorf("model = %v", got["model"])
	}
	doc, _ := got["document"].(map[string]any)
	if doc["type"] != "image_url" {
		t.Errorf("document type = %v", doc["type"])
	}
	if u, _ := doc["image_url"].(string); !strings.HasPrefix(u, "data:image/png;base64,") {
		t.Errorf("image_url = %.40s", u)
	}
}

func TestMistralErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m, _ := NewMistral("k", "m")
	m.Endpoint = srv.URL

	_, err := m.Recognize(context.Background(), []byte("img"))
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v", err)
	}

	if _, err := NewMistral(" ", ""); err == nil {
		t.Error("NewMistral accepted a blank key")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default is tesseract", Config{}, false},
		{"tesseract", Config{Provider: "Tesseract"}, false},
		{"mistral", Config{Provider: "mistral", MistralAPIKey: "k"}, false},
		{"mistral without key", Config{Provider: "mistral"}, true},
		{"hybrid", Config{Provider: "hybrid", MistralAPIKey: "k"}, false},
		{"hybrid without key", Config{Provider: "hybrid"}, true},
		{"unknown", Config{Provider: "abbyy"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && r == nil {
				t.Fatal("nil recognizer")
			}
		})
	}
}

func TestWithTimeout(t *testing.T) {
	slow := RecognizerFunc(func(ctx context.Context, _ []byte) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).Recognize(context.Background(), []byte("x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigFrom(t *testing.T) {
	got := ConfigFrom(config.Config{
		OCRProvider:     "mistral",
		TesseractPath:   "/usr/bin/tesseract",
		TesseractLang:   "eng+hin",
		MistralAPIKey:   "k",
		DefaultOCRModel: "mistral-ocr-latest",
		OCRTimeout:      time.Minute,
	})
	want := Config{
		Provider:      "mistral",
		Tesseract:     "/usr/bin/tesseract",
		Lang:          "eng+hin",
		MistralAPIKey: "k",
		MistralModel:  "mistral-ocr-latest",
		Timeout:       time.Minute,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ConfigFrom (-want +got):\n%s", diff)
	}
}
