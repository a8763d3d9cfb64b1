package boleto

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"boleto-tools/pkg/models"
)

// factorEpoch is the base date of the due-date factor in the national
// clearing-house numbering scheme. Fixed; must not be altered.
var factorEpoch = time.Date(1997, time.October, 7, 0, 0, 0, 0, time.UTC)

// currencyCodes are the digit values accepted at position 4 of a payment
// line (9 = BRL; 6, 7, 8 appear on legacy and arrecadação layouts).
const currencyCodes = "9687"

var (
	// Strict form: 44-56 raw characters of digits with at most one
	// separator after each digit.
	digitableRE = regexp.MustCompile(`(?:\b|^)(?:\d[\s.\-]?){44,56}(?:\b|$)`)

	// Looser form: tolerates up to three separator characters between
	// digits, including non-breaking space and en/em dashes.
	digitableFlexRE = regexp.MustCompile(`(?:\d[\s\x{00A0}.\-\x{2013}\x{2014}]{0,3}){45,70}`)
)

// FindPaymentLine locates the boleto payment line ("linha digitável") in
// free text and returns its digits, or "" when none is found.
//
// Matching falls back through three strategies of decreasing strictness:
// a strict separator regex, a loose separator-tolerant scan, and a
// line-by-line digit count. Candidates are deduplicated by digit content
// in discovery order; exact 47/48-digit runs win over windowed segments
// carved out of longer runs.
func FindPaymentLine(text string) string {
	var candidates []string

	for _, m := range digitableRE.FindAllString(text, -1) {
		digits := CleanDigits(m)
		if len(digits) == 47 || len(digits) == 48 {
			candidates = append(candidates, digits)
		}
	}

	if len(candidates) == 0 {
		for _, m := range digitableFlexRE.FindAllString(text, -1) {
			digits := CleanDigits(m)
			if len(digits) >= 45 && len(digits) <= 80 {
				candidates = append(candidates, digits)
			}
		}
	}

	if len(candidates) == 0 {
		for _, line := range strings.Split(text, "\n") {
			digits := CleanDigits(line)
			if len(digits) >= 40 && len(digits) <= 60 {
				candidates = append(candidates, digits)
			}
		}
	}

	seen := make(map[string]bool, len(candidates))
	ordered := candidates[:0]
	for _, d := range candidates {
		if !seen[d] {
			seen[d] = true
			ordered = append(ordered, d)
		}
	}

	for _, d := range ordered {
		if len(d) == 47 || len(d) == 48 {
			return d
		}
	}

	// Longer runs usually carry OCR noise glued to the real line. Slide
	// a 48 then 47 digit window and keep the first segment whose 4th
	// digit is a known currency code.
	for _, d := range ordered {
		if len(d) <= 48 {
			continue
		}
		for _, width := range []int{48, 47} {
			for i := 0; i+width <= len(d); i++ {
				seg := d[i : i+width]
				if strings.ContainsRune(currencyCodes, rune(seg[3])) {
					return seg
				}
			}
		}
	}

	if len(ordered) > 0 {
		return ordered[0]
	}
	return ""
}

// paymentLineSpans returns the [start, end) line-expanded spans of every
// strict payment line match, used to keep other matchers from reading
// payment line digits as their own field.
func paymentLineSpans(text string) [][2]int {
	var spans [][2]int
	for _, loc := range digitableRE.FindAllStringIndex(text, -1) {
		ls, le := lineBounds(text, loc[0], loc[1])
		spans = append(spans, [2]int{ls, le})
	}
	return spans
}

// inSpans reports whether offset i falls inside any of the spans.
func inSpans(spans [][2]int, i int) bool {
	for _, s := range spans {
		if s[0] <= i && i <= s[1] {
			return true
		}
	}
	return false
}

// looksLikePaymentLine reports whether s is plausibly a payment line:
// either it holds 20+ digits or it matches the strict digitable form.
func looksLikePaymentLine(s string) bool {
	return len(CleanDigits(s)) >= 20 || digitableRE.MatchString(s)
}

// ValidateLine checks the three mod-10 block check digits of a 47-digit
// payment line and decodes its embedded fields (bank code, currency,
// due-date factor, amount). Candidates with any other digit count are
// reported invalid with an explanatory error; they are never discarded
// upstream, since a best-effort value still helps a human reviewer.
func ValidateLine(line string) models.LineValidation {
	digits := CleanDigits(line)
	if len(digits) != 47 {
		return models.LineValidation{
			Valido: false,
			Erro:   fmt.Sprintf("Linha digitável deve ter 47 dígitos, encontrados %d", len(digits)),
		}
	}

	block1, dv1 := digits[0:9], int(digits[9]-'0')
	block2, dv2 := digits[10:20], int(digits[20]-'0')
	block3, dv3 := digits[21:31], int(digits[31]-'0')

	c1, _ := Mod10(block1)
	c2, _ := Mod10(block2)
	c3, _ := Mod10(block3)
	ok1, ok2, ok3 := c1 == dv1, c2 == dv2, c3 == dv3

	bankCode := digits[0:3]
	currency := digits[3:4]
	factor, _ := strconv.Atoi(digits[33:37])

	var amount *float64
	if cents, err := strconv.ParseInt(digits[37:47], 10, 64); err == nil && cents > 0 {
		v := float64(cents) / 100.0
		amount = &v
	}

	details := models.LineDetails{
		CodigoBanco:           bankCode,
		Moeda:                 currency,
		FatorVencimento:       factor,
		DataVencimentoDoFator: factorEpoch.AddDate(0, 0, factor).Format("2006-01-02"),
		Valor:                 amount,
		ValidacaoBloco1:       ok1,
		ValidacaoBloco2:       ok2,
		ValidacaoBloco3:       ok3,
	}

	// Reassemble the 44-digit barcode field (minus its own check digit,
	// which sits at payment line position 32) and compute the mod-11
	// digit for informational reporting.
	barcode := bankCode + currency + digits[33:37] + digits[37:47] + block1[4:] + block2 + block3
	if dv, err := Mod11(barcode); err == nil {
		match := dv == int(digits[32]-'0')
		details.DVCodigoBarras = &dv
		details.DVCodigoBarrasConfere = &match
	}

	valid := ok1 && ok2 && ok3
	v := models.LineValidation{
		Valido:   valid,
		Detalhes: details,
	}
	if !valid {
		v.Erro = "Um ou mais dígitos verificadores estão incorretos"
	}
	return v
}
