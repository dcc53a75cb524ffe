//go:build !gosseract

package ocr

import "errors"

// ErrNoGosseract is returned when the binary was built without cgo tesseract support.
var ErrNoGosseract = errors.New("ocr: built without gosseract (rebuild with -tags gosseract)")

func newGosseract(Config) (Recognizer, error) {
	return nil, ErrNoGosseract
}
