package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{name: "input", err: Input("bad_request", "No image provided", ErrNoImage), want: http.StatusBadRequest, code: "bad_request"},
		{name: "wrapped input", err: fmt.Errorf("decode: %w", Input("invalid_image", "bad base64", ErrInvalidImage)), want: http.StatusBadRequest, code: "invalid_image"},
		{name: "recognition", err: Recognition("tesseract exited", errors.New("exit 1")), want: http.StatusInternalServerError, code: "recognition_failed"},
		{name: "plain", err: errors.New("boom"), want: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
			if got := Code(tt.err); got != tt.code {
				t.Errorf("Code() = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := Recognition("ocr failed", ErrRecognition)
	if !errors.Is(err, ErrRecognition) {
		t.Fatal("errors.Is did not reach the cause")
	}
	if KindOf(err) != KindRecognition {
		t.Fatalf("KindOf = %s, want recognition", KindOf(err))
	}
	if err.Error() != "recognition_failed: ocr failed: text recognition failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Input("no_image", "No image provided", ErrNoImage)); got != "No image provided" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(errors.New("open /tmp/secret: permission denied")); got != "Internal server error" {
		t.Errorf("Message leaked %q", got)
	}
}
