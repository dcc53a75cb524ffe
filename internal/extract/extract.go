// Package extract turns recognized document text into labeled, confidence
// scored fields. It is pure: no state, no I/O, safe for concurrent use.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/toricodesthings/doc-verification-service/internal/types"
)

// Outcome is what one variant found. IsValid is nil when the variant leaves
// validity to the aggregator.
type Outcome struct {
	Fields           []types.OCRField
	RejectionReasons []string
	IsValid          *bool
}

// Variant is one document family's extraction heuristic. lines is the
// preprocessed text, in original order.
type Variant interface {
	Name() string
	Extract(text string, lines []string) Outcome
}

// Lines splits text into trimmed, non-empty lines, keeping their order.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Registry maps document type ids to variants with a fallback for the rest.
type Registry struct {
	variants map[string]Variant
	fallback Variant
}

func NewRegistry(fallback Variant) *Registry {
	return &Registry{variants: map[string]Variant{}, fallback: fallback}
}

// Register binds docType to v. It is meant for setup; a Registry is read-only
// once requests are served.
func (r *Registry) Register(docType string, v Variant) {
	r.variants[docType] = v
}

func (r *Registry) Lookup(docType string) Variant {
	if v, ok := r.variants[docType]; ok {
		return v
	}
	return r.fallback
}

func (r *Registry) Extract(text, docType string) Outcome {
	return r.Lookup(docType).Extract(text, Lines(text))
}

// DefaultRegistry wires the built-in variants.
func DefaultRegistry() *Registry {
	r := NewRegistry(Generic{})
	r.Register("aadhaar-card", TwelveDigitID{})
	r.Register("pan-card", FuzzyAlnumID{})
	return r
}

var defaultRegistry = DefaultRegistry()

// Extract runs the built-in variant for docType over text.
func Extract(text, docType string) Outcome {
	return defaultRegistry.Extract(text, docType)
}

// Patterns shared by the variants.
var (
	dobRe  = regexp.MustCompile(`\b\d{2}[/-]\d{2}[/-]\d{4}\b`)
	yearRe = regexp.MustCompile(`\b\d{4}\b`)
)

const (
	labelIDNumber       = "ID Number"
	labelGender         = "Gender"
	labelDOB            = "DOB"
	labelYearOfBirth    = "Year of Birth"
	labelName           = "Name"
	labelFathersName    = "Father's Name"
	labelDocumentNumber = "Document Number"
)

func field(label, value string, confidence int) types.OCRField {
	return types.OCRField{Label: label, Extracted: value, Confidence: confidence}
}

// dateOrYear emits a full DOB when one is present, otherwise the first bare
// four digit group not inside any of the skip spans.
func dateOrYear(text string, dobConf, yearConf int, skip [][]int) (types.OCRField, bool) {
	if m := dobRe.FindString(text); m != "" {
		return field(labelDOB, m, dobConf), true
	}
	for _, loc := range yearRe.FindAllStringIndex(text, -1) {
		if overlaps(loc, skip) {
			continue
		}
		return field(labelYearOfBirth, text[loc[0]:loc[1]], yearConf), true
	}
	return types.OCRField{}, false
}

func overlaps(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func invalid(o *Outcome, reason string) {
	f := false
	o.IsValid = &f
	o.RejectionReasons = append(o.RejectionReasons, reason)
}

func newOutcome() Outcome {
	t := true
	return Outcome{Fields: []types.OCRField{}, RejectionReasons: []string{}, IsValid: &t}
}
