package boleto

import (
	"regexp"
	"strings"
	"time"
)

// dueDateKeywords are the labels that anchor a due date on Brazilian
// payment slips. Matching is case-insensitive.
var dueDateKeywords = []string{
	"vencimento",
	"data de vencimento",
	"venc",
	"vcto",
	"pagamento até",
	"pagar até",
	"vencto",
}

var (
	// Common BR date shapes: 15/11/2025, 15-11-25, 15.11.2025. Spaces
	// around the separators are accepted because PDF extraction often
	// injects them.
	dateRE = regexp.MustCompile(`\b(\d{1,2})\s*[./\-]\s*(\d{1,2})\s*[./\-]\s*(\d{2,4})\b`)

	// Keyword followed by up to 60 non-digit characters of noise, then a
	// date. Catches layouts where boxes or junk sit between label and
	// value.
	kwdDateRE = regexp.MustCompile(`(?i)(vencimento|data\s+de\s+vencimento|venc|vcto|vencto|pagamento\s+até|pagar\s+até)[^0-9]{0,60}(\d{1,2}\s*[./\-]\s*\d{1,2}\s*[./\-]\s*\d{2,4})`)
)

// DueDate is a due date recovered from free text, with the source span
// it was read from and a keyword-proximity confidence bucket.
type DueDate struct {
	// Date is the parsed calendar date.
	Date time.Time

	// Original is the date substring exactly as it appeared in the text.
	Original string

	// Confidence is "high", "medium" or "low".
	Confidence string

	// Start and End are the source span offsets of Original.
	Start, End int

	// Score is the raw proximity score the confidence derives from.
	Score float64
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d *DueDate) ISO() string {
	return d.Date.Format("2006-01-02")
}

// normalizeYear maps two-digit years onto 2000-2049 / 1950-1999.
func normalizeYear(y int, width int) int {
	if width == 4 {
		return y
	}
	if y <= 49 {
		return 2000 + y
	}
	return 1900 + y
}

// parseCalendarDate builds a date from day/month/year tokens, rejecting
// values that fail calendar validation (month 13, day 32, Feb 30).
func parseCalendarDate(dayStr, monthStr, yearStr string) (time.Time, bool) {
	day := atoi(dayStr)
	month := atoi(monthStr)
	year := normalizeYear(atoi(yearStr), len(yearStr))

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

type dateCandidate struct {
	date       time.Time
	start, end int
}

// findAllDates collects date candidates in two passes: every date-shaped
// token, then keyword-anchored dates (whose span is the date substring
// itself, not the keyword).
func findAllDates(text string) []dateCandidate {
	var results []dateCandidate

	for _, m := range dateRE.FindAllStringSubmatchIndex(text, -1) {
		d, ok := parseCalendarDate(text[m[2]:m[3]], text[m[4]:m[5]], text[m[6]:m[7]])
		if !ok {
			continue
		}
		results = append(results, dateCandidate{date: d, start: m[0], end: m[1]})
	}

	for _, m := range kwdDateRE.FindAllStringSubmatchIndex(text, -1) {
		dateText := text[m[4]:m[5]]
		sub := dateRE.FindStringSubmatch(dateText)
		if sub == nil {
			continue
		}
		d, ok := parseCalendarDate(sub[1], sub[2], sub[3])
		if !ok {
			continue
		}
		results = append(results, dateCandidate{date: d, start: m[4], end: m[5]})
	}

	return results
}

type keywordSpan struct {
	keyword    string
	start, end int
}

// findKeywordSpans locates every due-date keyword occurrence.
func findKeywordSpans(text string) []keywordSpan {
	var spans []keywordSpan
	lower := strings.ToLower(text)
	for _, kw := range dueDateKeywords {
		from := 0
		for {
			i := strings.Index(lower[from:], kw)
			if i == -1 {
				break
			}
			start := from + i
			spans = append(spans, keywordSpan{keyword: kw, start: start, end: start + len(kw)})
			from = start + len(kw)
		}
	}
	return spans
}

// scoreDate ranks a date candidate by proximity to the nearest keyword:
// 1/(1+minDist), tripled when the date sits on the same line at or after
// a keyword (the "label: value" layout of a boleto table).
func scoreDate(c dateCandidate, keywords []keywordSpan, text string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	minDist := -1
	for _, ks := range keywords {
		d := absInt(c.start - ks.start)
		if e := absInt(c.end - ks.end); e < d {
			d = e
		}
		if minDist == -1 || d < minDist {
			minDist = d
		}
	}
	score := 1.0 / (1.0 + float64(minDist))

	ls, le := lineBounds(text, c.start, c.end)
	lineText := strings.ToLower(text[ls:le])
	dateText := strings.ToLower(text[c.start:c.end])
	for _, ks := range keywords {
		kwPos := strings.Index(lineText, ks.keyword)
		if kwPos == -1 {
			continue
		}
		if dtPos := strings.Index(lineText, dateText); dtPos != -1 && dtPos >= kwPos {
			score *= 3.0
			break
		}
	}

	return score
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// confidenceBucket maps a proximity score to its confidence label.
func confidenceBucket(score float64) string {
	switch {
	case score > 0.05:
		return "high"
	case score > 0.005:
		return "medium"
	default:
		return "low"
	}
}

// ExtractDueDate finds the most plausible due date in document text.
// Returns nil when the text holds no calendar-valid date. Ties on score
// keep the first candidate found.
func ExtractDueDate(text string) *DueDate {
	if text == "" {
		return nil
	}

	dates := findAllDates(text)
	if len(dates) == 0 {
		return nil
	}

	keywords := findKeywordSpans(text)

	best := dates[0]
	bestScore := -1.0
	for _, c := range dates {
		if s := scoreDate(c, keywords, text); s > bestScore {
			best = c
			bestScore = s
		}
	}

	return &DueDate{
		Date:       best.date,
		Original:   text[best.start:best.end],
		Confidence: confidenceBucket(bestScore),
		Start:      best.start,
		End:        best.end,
		Score:      bestScore,
	}
}
