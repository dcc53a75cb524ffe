package verify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/toricodesthings/doc-verification-service/internal/apperr"
)

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// DecodePayload strips an optional data:image/<fmt>;base64, prefix and
// decodes the rest. Unpadded base64 is accepted too.
func DecodePayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperr.Input("no_image", "No image provided", apperr.ErrNoImage)
	}
	s = dataURIPrefix.ReplaceAllString(s, "")

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, apperr.Input("invalid_image", "Image is not valid base64", fmt.Errorf("%w: %v", apperr.ErrInvalidImage, err))
	}
	if len(b) == 0 {
		return nil, apperr.Input("no_image", "No image provided", apperr.ErrNoImage)
	}
	return b, nil
}

// Request body schemas. Only types are constrained here; a missing image is
// reported separately with its own message.
const processRequestSchema = `{
	"type": "object",
	"properties": {
		"image":        {"type": "string"},
		"documentType": {"type": "string", "maxLength": 64}
	}
}`

const analyzeRequestSchema = `{
	"type": "object",
	"properties": {
		"image": {"type": "string"}
	}
}`

var (
	processSchema = mustCompile("process.json", processRequestSchema)
	analyzeSchema = mustCompile("analyze.json", analyzeRequestSchema)
)

func mustCompile(name, src string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader([]byte(src))); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return c.MustCompile(name)
}

// CheckProcessRequest validates a decoded JSON body against the processing
// request schema.
func CheckProcessRequest(v any) error {
	return checkSchema(processSchema, v)
}

func CheckAnalyzeRequest(v any) error {
	return checkSchema(analyzeSchema, v)
}

func checkSchema(s *jsonschema.Schema, v any) error {
	if err := s.Validate(v); err != nil {
		return apperr.Input("invalid_request", "Invalid request body", err)
	}
	return nil
}
