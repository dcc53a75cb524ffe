// Package validation assembles the final ValidationResult from a base shape
// and an extractor outcome.
package validation

import (
	"slices"

	"github.com/toricodesthings/doc-verification-service/internal/extract"
	"github.com/toricodesthings/doc-verification-service/internal/types"
)

// BaseClarity is the placeholder clarity score of a fresh result.
const BaseClarity = 85

const ReasonNoData = "No recognizable data found."

// Base is the starting result every merge builds on.
func Base() types.ValidationResult {
	return types.ValidationResult{
		IsValid:          true,
		ClarityScore:     BaseClarity,
		OCRFields:        []types.OCRField{},
		FraudFlags:       []string{},
		RejectionReasons: []string{},
	}
}

// Merge returns a new result: base fields then outcome fields, base reasons
// then outcome reasons, and the outcome's validity when it set one. A result
// with no fields at all is invalid with a single no-data reason.
// Neither input is modified.
func Merge(base types.ValidationResult, o extract.Outcome) types.ValidationResult {
	out := types.ValidationResult{
		IsValid:          base.IsValid,
		ClarityScore:     base.ClarityScore,
		OCRFields:        concat(base.OCRFields, o.Fields),
		FraudFlags:       concat(base.FraudFlags, nil),
		RejectionReasons: concat(base.RejectionReasons, o.RejectionReasons),
	}
	if o.IsValid != nil {
		out.IsValid = *o.IsValid
	}

	if len(out.OCRFields) == 0 {
		out.IsValid = false
		if !slices.Contains(out.RejectionReasons, ReasonNoData) {
			out.RejectionReasons = append(out.RejectionReasons, ReasonNoData)
		}
	}
	return out
}

// Validate extracts fields from recognized text for docType and aggregates them.
func Validate(text, docType string) types.ValidationResult {
	return Merge(Base(), extract.Extract(text, docType))
}

// WithClarity returns r with its clarity score replaced, clamped to 0-100.
func WithClarity(r types.ValidationResult, clarity float64) types.ValidationResult {
	r.ClarityScore = max(0, min(100, clarity))
	return r
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
