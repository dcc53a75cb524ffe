package verify

import (
	"regexp"
	"strings"
)

var (
	zeroWidthChars     = regexp.MustCompile("[\u200B-\u200D\uFEFF\u00AD\u2060]")
	markdownImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	standaloneFileName = regexp.MustCompile(`(?mi)^[\w-]+\.(jpeg|jpg|png|gif|webp|svg|bmp|tiff?)[ \t]*$`)
	headingMarks       = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	emphasisMarks      = regexp.MustCompile(`\*\*|__|` + "`")
	tablePipes         = regexp.MustCompile(`(?m)^\|(.*)\|[ \t]*$`)
	tableRule          = regexp.MustCompile(`(?m)^[ \t]*\|?[ \t]*:?-{3,}:?[ \t]*(\|[ \t]*:?-{3,}:?[ \t]*)*\|?[ \t]*$`)
	excessiveNewlines  = regexp.MustCompile(`\n{4,}`)
	trailingSpaces     = regexp.MustCompile(`(?m)[ \t]+$`)
)

// CleanText prepares raw recognizer output for line-based extraction:
//   - strips zero-width / invisible unicode characters
//   - drops markdown image references and standalone image-filename lines
//   - removes markdown heading, emphasis and table markup, keeping the words
//   - normalises line endings and trailing whitespace
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = zeroWidthChars.ReplaceAllString(text, "")

	// Normalise line endings
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = markdownImage.ReplaceAllString(text, "")
	text = standaloneFileName.ReplaceAllString(text, "")
	text = headingMarks.ReplaceAllString(text, "")
	text = emphasisMarks.ReplaceAllString(text, "")
	text = tableRule.ReplaceAllString(text, "")
	text = tablePipes.ReplaceAllStringFunc(text, func(row string) string {
		cells := strings.Split(strings.Trim(strings.TrimSpace(row), "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		return strings.Join(cells, "\n")
	})

	text = trailingSpaces.ReplaceAllString(text, "")
	text = excessiveNewlines.ReplaceAllString(text, "\n\n\n")

	return strings.TrimSpace(text)
}
