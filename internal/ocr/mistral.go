package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	MistralEndpoint     = "https://api.mistral.ai/v1/ocr"
	DefaultMistralModel = "mistral-ocr-latest"
)

type OCRPage struct {
	Index    int    `json:"index"`    // 0-indexed
	Markdown string `json:"markdown"` // extracted markdown
}

type OCRResponse struct {
	Pages []OCRPage `json:"pages"`
}

// Mistral sends the image inline as a data URI to the hosted OCR API.
type Mistral struct {
	APIKey   string
	Model    string
	Endpoint string
	Client   *http.Client
}

func NewMistral(key, model string) (*Mistral, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("missing MISTRAL_API_KEY")
	}
	if model == "" {
		model = DefaultMistralModel
	}
	return &Mistral{APIKey: key, Model: model, Endpoint: MistralEndpoint, Client: http.DefaultClient}, nil
}

func (m *Mistral) Recognize(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", ErrEmptyImage
	}

	resp, err := m.run(ctx, dataURI(img))
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(resp.Pages))
	for _, p := range resp.Pages {
		parts = append(parts, p.Markdown)
	}
	return strings.Join(parts, "\n"), nil
}

func (m *Mistral) run(ctx context.Context, imageURL string) (OCRResponse, error) {
	body := map[string]any{
		"model": m.Model,
		"document": map[string]any{
			"type":      "image_url",
			"image_url": imageURL,
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return OCRResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(b))
	if err != nil {
		return OCRResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return OCRResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return OCRResponse{}, fmt.Errorf("mistral ocr error %d: %s", resp.StatusCode, string(slurp))
	}

	var parsed OCRResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return OCRResponse{}, fmt.Errorf("mistral ocr decode: %w", err)
	}
	return parsed, nil
}

func dataURI(img []byte) string {
	mime := http.DetectContentType(img)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img)
}
