// Package postocr cleans up raw OCR text before field extraction.
//
// Two passes are available. RepairDigits is deterministic: it fixes
// common character confusions (O/0, l/1, S/5) inside tokens that are
// clearly numeric, which is where boleto extraction is most sensitive
// to OCR noise. Cleaner optionally sends the text through ChatGPT for a
// broader cleanup; it degrades to a no-op when the API is not
// configured or fails.
//
// Environment Variables:
//   - POST_OCR_ENABLED: Enable the LLM cleanup pass (default: true)
//   - OPENAI_API_KEY: OpenAI API key (LLM pass is skipped without it)
//   - OPENAI_MODEL: Model for the cleanup (default: gpt-4o-mini)
package postocr

import (
	"strings"
	"unicode"
)

// digitConfusions maps letters OCR commonly reads in place of digits.
// Applied only inside digit-dominated tokens so that ordinary words are
// never touched.
var digitConfusions = map[rune]rune{
	'O': '0',
	'o': '0',
	'Q': '0',
	'D': '0',
	'I': '1',
	'l': '1',
	'i': '1',
	'|': '1',
	'Z': '2',
	'z': '2',
	'E': '3',
	'A': '4',
	'S': '5',
	's': '5',
	'G': '6',
	'b': '6',
	'T': '7',
	'B': '8',
	'g': '9',
	'q': '9',
}

// RepairDigits rewrites letters that OCR engines commonly confuse with
// digits, but only inside tokens that are mostly digits already. Tokens
// below the density threshold pass through unchanged, so names and
// labels keep their letters.
func RepairDigits(text string) string {
	if text == "" {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		token := text[start:end]
		out.WriteString(repairToken(token))
		start = -1
	}

	for i, r := range text {
		if unicode.IsSpace(r) {
			flush(i)
			out.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(text))

	return out.String()
}

// repairToken applies digit substitutions to a single token when it is
// digit-dominated (more than half digits after counting candidate
// confusions as digits, with at least three real digits present).
func repairToken(token string) string {
	digits := 0
	candidates := 0
	total := 0
	for _, r := range token {
		total++
		switch {
		case r >= '0' && r <= '9':
			digits++
		default:
			if _, ok := digitConfusions[r]; ok {
				candidates++
			}
		}
	}
	if digits < 3 || total == 0 {
		return token
	}
	if float64(digits+candidates)/float64(total) <= 0.5 {
		return token
	}

	var repaired strings.Builder
	repaired.Grow(len(token))
	for _, r := range token {
		if sub, ok := digitConfusions[r]; ok {
			repaired.WriteRune(sub)
		} else {
			repaired.WriteRune(r)
		}
	}
	return repaired.String()
}
