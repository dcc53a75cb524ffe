package extract

import (
	"regexp"
	"strings"

	"github.com/toricodesthings/doc-verification-service/internal/types"
)

// TwelveDigitID reads national ID cards carrying a 12 digit number printed
// as one run or in 4-4-4 groups.
type TwelveDigitID struct{}

var (
	twelveDigitRe = regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}\b`)
	femaleRe      = regexp.MustCompile(`(?i)female`)
	maleRe        = regexp.MustCompile(`(?i)male`)
)

func (TwelveDigitID) Name() string { return "twelve-digit-id" }

func (TwelveDigitID) Extract(text string, _ []string) Outcome {
	out := newOutcome()

	var idSpan [][]int
	if loc := twelveDigitRe.FindStringIndex(text); loc != nil {
		out.Fields = append(out.Fields, field(labelIDNumber, text[loc[0]:loc[1]], 90))
		idSpan = [][]int{loc}
	} else {
		invalid(&out, "Could not find 12-digit ID number.")
	}

	// "male" is a substring of "female", so female is checked first.
	switch {
	case femaleRe.MatchString(text):
		out.Fields = append(out.Fields, field(labelGender, "Female", 85))
	case maleRe.MatchString(text):
		out.Fields = append(out.Fields, field(labelGender, "Male", 85))
	}

	// The number's own groups are four digits too; they are not a year.
	if f, ok := dateOrYear(text, 85, 80, idSpan); ok {
		out.Fields = append(out.Fields, f)
	}

	return out
}

// FuzzyAlnumID reads tax cards whose number is five letters, four digits and
// a letter, where OCR often reads 0 as O.
type FuzzyAlnumID struct{}

var (
	fuzzyIDRe = regexp.MustCompile(`\b[A-Z]{5}[0-9O]{4}[A-Z]\b`)

	fatherBlacklistRe   = regexp.MustCompile(`(?i)Permanent|Account|Number|Card|Govt|India|Signature|Income|Tax`)
	nameBlacklistRe     = regexp.MustCompile(`(?i)INCOME|TAX|Who|Govt|India|Permanent|Account|Number|Card`)
	fallbackBlacklistRe = regexp.MustCompile(`(?i)INCOME|TAX|INDIA|GOVT|ACCOUNT|NUMBER|CARD|Permanent`)
	upperLineRe         = regexp.MustCompile(`^[A-Z\s.]+$`)

	digitFix = strings.NewReplacer("O", "0", "I", "1")
)

func (FuzzyAlnumID) Name() string { return "fuzzy-alnum-id" }

func (FuzzyAlnumID) Extract(text string, lines []string) Outcome {
	out := newOutcome()

	if m := fuzzyIDRe.FindString(text); m != "" {
		out.Fields = append(out.Fields, field(labelIDNumber, CorrectFuzzyID(m), 92))
	} else {
		invalid(&out, "Could not find valid ID number.")
	}

	if f, ok := dateOrYear(text, 90, 70, nil); ok {
		out.Fields = append(out.Fields, f)
	}

	out.Fields = append(out.Fields, names(lines)...)
	return out
}

// CorrectFuzzyID replaces O with 0 and I with 1 in the four character
// numeric segment of a matched ID. Other positions are left alone.
func CorrectFuzzyID(id string) string {
	if len(id) != 10 {
		return id
	}
	return id[:5] + digitFix.Replace(id[5:9]) + id[9:]
}

// names applies the layout heuristic: the holder's name sits two lines above
// the date of birth and the father's name right above it. Without an anchor
// far enough down, it falls back to the first plausible all-caps line.
func names(lines []string) []types.OCRField {
	anchor := indexOf(lines, dobRe)
	if anchor < 0 {
		anchor = indexOf(lines, fuzzyIDRe)
	}

	var out []types.OCRField
	if anchor >= 2 {
		if l := lines[anchor-1]; runeLen(l) > 3 && !fatherBlacklistRe.MatchString(l) {
			out = append(out, field(labelFathersName, l, 75))
		}
		if l := lines[anchor-2]; runeLen(l) > 3 && !nameBlacklistRe.MatchString(l) {
			out = append(out, field(labelName, l, 75))
		}
		return out
	}

	for _, l := range lines {
		if upperLineRe.MatchString(l) && !fallbackBlacklistRe.MatchString(l) && runeLen(l) > 3 {
			return append(out, field(labelName, l, 60))
		}
	}
	return out
}

func indexOf(lines []string, re *regexp.Regexp) int {
	for i, l := range lines {
		if re.MatchString(l) {
			return i
		}
	}
	return -1
}

// Generic is the fallback for every other document: it reports the first
// ID-like token as the document number and never fails validation by itself.
type Generic struct{}

var (
	dateLikeRe = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	tokenRe    = regexp.MustCompile(`\b[A-Z0-9]{6,12}\b`)
)

func (Generic) Name() string { return "generic" }

func (Generic) Extract(text string, _ []string) Outcome {
	out := Outcome{Fields: []types.OCRField{}, RejectionReasons: []string{}}

	dates := dateLikeRe.FindAllStringIndex(text, -1)
	for _, loc := range tokenRe.FindAllStringIndex(text, -1) {
		if overlaps(loc, dates) {
			continue
		}
		out.Fields = append(out.Fields, field(labelDocumentNumber, text[loc[0]:loc[1]], 80))
		break
	}
	return out
}
