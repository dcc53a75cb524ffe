package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/toricodesthings/doc-verification-service/internal/types"
)

func valid(o Outcome) bool { return o.IsValid == nil || *o.IsValid }

func TestLines(t *testing.T) {
	got := Lines("  INCOME TAX  \r\n\n\t\nJOHN SMITH\n   \nABCDE1234F ")
	want := []string{"INCOME TAX", "JOHN SMITH", "ABCDE1234F"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines (-want +got):\n%s", diff)
	}
	if got := Lines(""); len(got) != 0 {
		t.Errorf("Lines(\"\") = %v", got)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		docType string
		want    string
	}{
		{"aadhaar-card", "twelve-digit-id"},
		{"pan-card", "fuzzy-alnum-id"},
		{"passport", "generic"},
		{"utility-bill", "generic"},
		{"no-such-type", "generic"},
		{"", "generic"},
	}
	for _, tt := range tests {
		if got := r.Lookup(tt.docType).Name(); got != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.docType, got, tt.want)
		}
	}
}

func TestTwelveDigitID(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []types.OCRField
		valid   bool
		reasons []string
	}{
		{
			name: "grouped number with full dob",
			text: "Government of India\nRAVI KUMAR\nDOB: 12/05/1988\nMALE\n1234 5678 9012",
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "1234 5678 9012", Confidence: 90},
				{Label: "Gender", Extracted: "Male", Confidence: 85},
				{Label: "DOB", Extracted: "12/05/1988", Confidence: 85},
			},
			valid:   true,
			reasons: []string{},
		},
		{
			name: "female wins over male substring",
			text: "Female\n123456789012\nYear of Birth : 1990",
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "123456789012", Confidence: 90},
				{Label: "Gender", Extracted: "Female", Confidence: 85},
				{Label: "Year of Birth", Extracted: "1990", Confidence: 80},
			},
			valid:   true,
			reasons: []string{},
		},
		{
			name: "id groups are not a year",
			text: "1234-5678-9012",
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "1234-5678-9012", Confidence: 90},
			},
			valid:   true,
			reasons: []string{},
		},
		{
			name: "no number",
			text: "some noise\nMale\n1985",
			want: []types.OCRField{
				{Label: "Gender", Extracted: "Male", Confidence: 85},
				{Label: "Year of Birth", Extracted: "1985", Confidence: 80},
			},
			valid:   false,
			reasons: []string{"Could not find 12-digit ID number."},
		},
		{
			name:    "empty",
			text:    "",
			want:    []types.OCRField{},
			valid:   false,
			reasons: []string{"Could not find 12-digit ID number."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, "aadhaar-card")
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("fields (-want +got):\n%s", diff)
			}
			if valid(got) != tt.valid {
				t.Errorf("valid = %v, want %v", valid(got), tt.valid)
			}
			if diff := cmp.Diff(tt.reasons, got.RejectionReasons); diff != "" {
				t.Errorf("reasons (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTwelveDigitIDNumberAloneHasNoYear(t *testing.T) {
	for _, text := range []string{"1234 5678 9012", "Aadhaar\n1990 5678 9012\nMALE"} {
		for _, f := range Extract(text, "aadhaar-card").Fields {
			if f.Label == "Year of Birth" {
				t.Errorf("%q: year %q taken from the ID number", text, f.Extracted)
			}
		}
	}
}

func TestCorrectFuzzyID(t *testing.T) {
	tests := map[string]string{
		"ABCDE1O09F": "ABCDE1009F",
		"ABCDEOOOOF": "ABCDE0000F",
		"ABCDE1234F": "ABCDE1234F",
		"OBCDE1234O": "OBCDE1234O", // letters outside the numeric segment stay
		"SHORT":      "SHORT",
	}
	for in, want := range tests {
		if got := CorrectFuzzyID(in); got != want {
			t.Errorf("CorrectFuzzyID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFuzzyAlnumIDCorrectsNumber(t *testing.T) {
	got := Extract("PERMANENT ACCOUNT NUMBER\nABCDE1O09F", "pan-card")
	if len(got.Fields) == 0 {
		t.Fatal("no fields")
	}
	want := types.OCRField{Label: "ID Number", Extracted: "ABCDE1009F", Confidence: 92}
	if diff := cmp.Diff(want, got.Fields[0]); diff != "" {
		t.Errorf("ID field (-want +got):\n%s", diff)
	}
	if !valid(got) {
		t.Error("outcome invalid")
	}
}

func TestFuzzyAlnumIDPositionalNames(t *testing.T) {
	lines := []string{"INCOME TAX DEPARTMENT", "JOHN SMITH", "ROBERT SMITH", "01/01/1990", "ABCDE1234F"}
	got := Extract(strings.Join(lines, "\n"), "pan-card")

	want := []types.OCRField{
		{Label: "ID Number", Extracted: "ABCDE1234F", Confidence: 92},
		{Label: "DOB", Extracted: "01/01/1990", Confidence: 90},
		{Label: "Father's Name", Extracted: "ROBERT SMITH", Confidence: 75},
		{Label: "Name", Extracted: "JOHN SMITH", Confidence: 75},
	}
	if diff := cmp.Diff(want, got.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestFuzzyAlnumIDNameRules(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []types.OCRField
	}{
		{
			name:  "blacklisted header above dob",
			lines: []string{"JOHN SMITH", "GOVT OF INDIA", "01/01/1990", "ABCDE1234F"},
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "ABCDE1234F", Confidence: 92},
				{Label: "DOB", Extracted: "01/01/1990", Confidence: 90},
				{Label: "Name", Extracted: "JOHN SMITH", Confidence: 75},
			},
		},
		{
			name:  "short candidates dropped",
			lines: []string{"AB", "XYZ", "01/01/1990", "ABCDE1234F"},
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "ABCDE1234F", Confidence: 92},
				{Label: "DOB", Extracted: "01/01/1990", Confidence: 90},
			},
		},
		{
			name:  "id line is the anchor without a dob",
			lines: []string{"INCOME TAX DEPARTMENT", "JANE DOE", "RICHARD DOE", "ABCDE1234F"},
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "ABCDE1234F", Confidence: 92},
				{Label: "Father's Name", Extracted: "RICHARD DOE", Confidence: 75},
				{Label: "Name", Extracted: "JANE DOE", Confidence: 75},
			},
		},
		{
			name:  "anchor too high falls back to uppercase scan",
			lines: []string{"INCOME TAX DEPARTMENT", "01/01/1990", "ABCDE1234F", "Signature", "MARY ANN LEE"},
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "ABCDE1234F", Confidence: 92},
				{Label: "DOB", Extracted: "01/01/1990", Confidence: 90},
				{Label: "Name", Extracted: "MARY ANN LEE", Confidence: 60},
			},
		},
		{
			name:  "year fallback",
			lines: []string{"born 1975", "ABCDE1234F"},
			want: []types.OCRField{
				{Label: "ID Number", Extracted: "ABCDE1234F", Confidence: 92},
				{Label: "Year of Birth", Extracted: "1975", Confidence: 70},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(strings.Join(tt.lines, "\n"), "pan-card")
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("fields (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFuzzyAlnumIDMissingNumber(t *testing.T) {
	got := Extract("INCOME TAX DEPARTMENT\nabcde1234f", "pan-card")
	if valid(got) {
		t.Error("outcome valid without a number")
	}
	if diff := cmp.Diff([]string{"Could not find valid ID number."}, got.RejectionReasons); diff != "" {
		t.Errorf("reasons (-want +got):\n%s", diff)
	}
}

func TestGeneric(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.OCRField
	}{
		{
			name: "first token wins even when it is a word",
			text: "PASSPORT\nP1234567\nDate of issue 01/02/2015",
			want: []types.OCRField{{Label: "Document Number", Extracted: "PASSPORT", Confidence: 80}},
		},
		{
			name: "first qualifying token",
			text: "No. X9876543 issued 5-6-22",
			want: []types.OCRField{{Label: "Document Number", Extracted: "X9876543", Confidence: 80}},
		},
		{
			name: "a date alone is not a document number",
			text: "Issued 01/02/2015",
			want: []types.OCRField{},
		},
		{
			name: "nothing",
			text: "hello world",
			want: []types.OCRField{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, "passport")
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("fields (-want +got):\n%s", diff)
			}
			if got.IsValid != nil {
				t.Errorf("generic variant set IsValid = %v", *got.IsValid)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	cats := Catalog()
	if len(cats) != 3 {
		t.Fatalf("categories = %d, want 3", len(cats))
	}
	total := 0
	for _, c := range cats {
		total += len(c.Documents)
		for _, d := range c.Documents {
			if d.Category != c.ID {
				t.Errorf("%s filed under %s", d.ID, c.ID)
			}
			if !d.Enabled && d.DisabledReason == "" {
				t.Errorf("%s disabled without a reason", d.ID)
			}
		}
	}
	if total != 12 {
		t.Errorf("documents = %d, want 12", total)
	}

	pan, ok := Lookup("pan-card")
	if !ok || pan.Variant != "fuzzy-alnum-id" {
		t.Errorf("Lookup(pan-card) = %+v, %v", pan, ok)
	}
	pan.Requirements[0] = "changed"
	again, _ := Lookup("pan-card")
	if again.Requirements[0] == "changed" {
		t.Error("Lookup leaked the catalog's backing array")
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup found an unknown id")
	}
}
