package boleto

import (
	"regexp"
	"strings"
)

var nonDigitRE = regexp.MustCompile(`\D+`)

// CleanDigits strips every non-digit character from s. It performs no
// character substitution: OCR digit-confusion repair belongs to the
// postocr pre-pass, never to the extractor itself.
func CleanDigits(s string) string {
	return nonDigitRE.ReplaceAllString(s, "")
}

// countDigits returns how many decimal digits s contains.
func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// lineBounds returns the [start, end) offsets of the line containing the
// span [spanStart, spanEnd), bounded by the nearest newline characters.
func lineBounds(text string, spanStart, spanEnd int) (int, int) {
	if spanStart > len(text) {
		spanStart = len(text)
	}
	if spanEnd > len(text) {
		spanEnd = len(text)
	}
	ls := strings.LastIndex(text[:spanStart], "\n") + 1
	le := strings.Index(text[spanEnd:], "\n")
	if le == -1 {
		le = len(text)
	} else {
		le += spanEnd
	}
	return ls, le
}

// collapseSpaces normalizes runs of whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
