package boleto

import (
	"regexp"
	"strconv"
	"strings"
)

// Tax ID shapes, masked and plain.
var (
	cnpjMaskedRE = regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`)
	cpfMaskedRE  = regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`)
	cnpjPlainRE  = regexp.MustCompile(`\b\d{14}\b`)
	cpfPlainRE   = regexp.MustCompile(`\b\d{11}\b`)
)

// Label-anchored tax ID patterns, most specific first.
var taxIDLabelREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(cpf\s*/\s*cnpj|cpf\s*[- ]?cnpj|cnpj\s*/\s*cpf)\b\s*[:\-]?\s*([\d./\-]+)`),
	regexp.MustCompile(`(?i)\b(cpf\s*cnpj)\b\s*[:\-]?\s*([\d./\-]+)`),
	regexp.MustCompile(`(?i)\b(cnpj)\b\s*[:\-]?\s*([\d./\-]+)`),
	regexp.MustCompile(`(?i)\b(cpf)\b\s*[:\-]?\s*([\d./\-]+)`),
}

// Amount patterns, most specific first. A candidate must carry exactly
// two digits after the decimal comma (centavos); grouped thousands with
// dots are accepted.
var amountREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)valor\s*(?:do\s+)?(?:documento|boleto)?\s*[:\-]?\s*r?\$?\s*((?:\d{1,3}(?:\.\d{3})+|\d+),\d{2})\b`),
	regexp.MustCompile(`(?i)valor\s*(?:a\s+)?(?:pagar|cobrar)?\s*[:\-]?\s*r?\$?\s*((?:\d{1,3}(?:\.\d{3})+|\d+),\d{2})\b`),
	regexp.MustCompile(`(?i)r\$\s*((?:\d{1,3}(?:\.\d{3})+|\d+),\d{2})\b`),
	regexp.MustCompile(`(?i)\b((?:\d{1,3}(?:\.\d{3})+|\d+),\d{2})\s*reais\b`),
}

var (
	bankRE        = regexp.MustCompile(`(?i)banco\s+(\d{3})|\b(\d{3})\s*-\s*(?:banese|brasil|banco|bradesco|itau|caixa|santander|bb)`)
	nossoNumeroRE = regexp.MustCompile(`(?i)nosso\s+n(?:ú|u)mero\s*[:\-]?\s*([\d\s\-.]+)`)
	agenciaRE     = regexp.MustCompile(`(?i)\b(?:agência|agencia|ag)\.?\s*[:\-]\s*(\d[\d./\-]*)`)
	contaRE       = regexp.MustCompile(`(?i)\bconta(?:\s+corrente)?\b\s*[:\-]?\s*(\d[\d./\-]*)`)

	cedenteRE       = regexp.MustCompile(`(?i)\b(cedente)\b\s*[:\-]?\s*(.*)`)
	beneficiarioREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(beneficiário|beneficiario|favorecido)\b\s*[:\-]?\s*(.+)`),
		regexp.MustCompile(`(?i)\b(agência/código\s+beneficiário|agencia/codigo\s+beneficiario)\b\s*[:\-]?\s*(.+)`),
	}
	shortNumericTokenRE = regexp.MustCompile(`\b\d{3,}\b`)
)

// beneficiaryStopLabels mark lines that belong to other boleto fields;
// a beneficiary scan skips them.
var beneficiaryStopLabels = []string{
	"cpf", "cnpj", "agência", "agencia", "código", "codigo",
	"benefici", "favorecido", "linha", "digit", "nosso", "número",
	"numero", "vencimento", "data", "valor", "carteira",
	"quantidade", "espécie", "especie",
}

// FormatTaxID applies the standard CNPJ or CPF mask to a digit string.
// Returns "" for any other digit count.
func FormatTaxID(digits string) string {
	switch len(digits) {
	case 14:
		return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
	case 11:
		return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11]
	}
	return ""
}

// ExtractTaxID finds the payee CNPJ or CPF and returns it formatted, or
// "" when none is found. Candidates sitting on the same line as a
// payment line match are excluded so that payment line digits are never
// mistaken for a tax ID.
func ExtractTaxID(text string) string {
	avoid := paymentLineSpans(text)

	for _, re := range taxIDLabelREs {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if inSpans(avoid, m[0]) {
				continue
			}
			digits := CleanDigits(text[m[4]:m[5]])
			if formatted := FormatTaxID(digits); formatted != "" {
				return formatted
			}
		}
	}

	for _, re := range []*regexp.Regexp{cnpjMaskedRE, cpfMaskedRE, cnpjPlainRE, cpfPlainRE} {
		loc := re.FindStringIndex(text)
		if loc == nil || inSpans(avoid, loc[0]) {
			continue
		}
		if formatted := FormatTaxID(CleanDigits(text[loc[0]:loc[1]])); formatted != "" {
			return formatted
		}
	}

	return ""
}

// ExtractAmount finds the document amount in free text. Patterns are
// tried from most to least specific; the first parseable match wins.
// Returns nil when no amount is found.
func ExtractAmount(text string) *float64 {
	for _, re := range amountREs {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			return &v
		}
	}
	return nil
}

// ExtractBank finds the 3-digit issuing bank code, either after the
// word "banco" or as the code prefix of a "341 - Itaú" style header.
func ExtractBank(text string) string {
	for _, m := range bankRE.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			return m[1]
		}
		if m[2] != "" {
			return m[2]
		}
	}
	return ""
}

// ExtractNossoNumero finds the bank-internal reference number.
func ExtractNossoNumero(text string) string {
	for _, m := range nossoNumeroRE.FindAllStringSubmatch(text, -1) {
		nn := strings.Join(strings.Fields(m[1]), "")
		if nn != "" {
			return nn
		}
	}
	return ""
}

// ExtractAgencia finds the branch ("agência") code.
func ExtractAgencia(text string) string {
	if m := agenciaRE.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], "./-")
	}
	return ""
}

// ExtractConta finds the account number.
func ExtractConta(text string) string {
	if m := contaRE.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], "./-")
	}
	return ""
}

// mostlyDigitsOrCodes reports whether a line is dominated by digits or
// code-like content: 20+ digits or at least half of its runes digits.
func mostlyDigitsOrCodes(s string) bool {
	digits := countDigits(s)
	if digits >= 20 {
		return true
	}
	runes := len([]rune(s))
	return runes > 0 && float64(digits) >= 0.5*float64(runes)
}

// containsStopLabel reports whether the line mentions another field's
// label.
func containsStopLabel(lower string) bool {
	for _, lbl := range beneficiaryStopLabels {
		if strings.Contains(lower, lbl) {
			return true
		}
	}
	return false
}

// acceptBeneficiary applies the shared candidate filters: minimum
// length, no payment line content, no digit-dominated lines, and no
// short numeric tokens posing as names.
func acceptBeneficiary(cand string) bool {
	if len(cand) < 3 {
		return false
	}
	lower := strings.ToLower(cand)
	if strings.Contains(lower, "linha") && strings.Contains(lower, "digit") {
		return false
	}
	if looksLikePaymentLine(cand) || mostlyDigitsOrCodes(cand) {
		return false
	}
	if shortNumericTokenRE.MatchString(cand) && len(strings.Fields(cand)) <= 3 {
		return false
	}
	return true
}

// splitLabelValue returns what follows the first ':' or '-' in line.
func splitLabelValue(line string) string {
	if idx := strings.IndexAny(line, ":-"); idx != -1 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

// ExtractBeneficiario finds the payee name. "Cedente" is the standard
// boleto label and wins; when its value is not on the same line, up to
// 10 following non-empty lines are scanned, skipping lines that belong
// to other fields or look like codes. Falls back to the
// "beneficiário"/"favorecido" labels, and finally to the line preceding
// a detected CNPJ. The last heuristic can mis-attribute payer text on
// unusual layouts, but is kept for recall.
func ExtractBeneficiario(text string) string {
	for _, m := range cedenteRE.FindAllStringIndex(text, -1) {
		ls, le := lineBounds(text, m[0], m[1])
		cand := splitLabelValue(text[ls:le])

		if cand == "" {
			scanPos := le + 1
			for i := 0; i < 10 && scanPos <= len(text); i++ {
				nextEnd := strings.Index(text[scanPos:], "\n")
				if nextEnd == -1 {
					nextEnd = len(text)
				} else {
					nextEnd += scanPos
				}
				line := strings.TrimSpace(text[scanPos:nextEnd])
				scanPos = nextEnd + 1
				if line == "" {
					continue
				}
				lower := strings.ToLower(line)
				if containsStopLabel(lower) {
					continue
				}
				if (strings.Contains(lower, "linha") && strings.Contains(lower, "digit")) ||
					looksLikePaymentLine(line) || mostlyDigitsOrCodes(line) {
					continue
				}
				cand = line
				break
			}
		}

		if cand = collapseSpaces(cand); acceptBeneficiary(cand) {
			return cand
		}
	}

	for _, re := range beneficiarioREs {
		for _, m := range re.FindAllString(text, -1) {
			cand := collapseSpaces(splitLabelValue(m))
			if cand == "" {
				continue
			}
			if acceptBeneficiary(cand) {
				return cand
			}
		}
	}

	// Last resort: the line immediately preceding the first CNPJ.
	loc := cnpjMaskedRE.FindStringIndex(text)
	if loc == nil {
		loc = cnpjPlainRE.FindStringIndex(text)
	}
	if loc != nil {
		ls := strings.LastIndex(text[:loc[0]], "\n")
		var prev string
		if ls >= 0 {
			ps := strings.LastIndex(text[:ls], "\n") + 1
			prev = collapseSpaces(strings.TrimSpace(text[ps:ls]))
		}
		if len(prev) >= 3 && len(prev) <= 120 &&
			!looksLikePaymentLine(prev) && !mostlyDigitsOrCodes(prev) {
			lower := strings.ToLower(prev)
			if !containsStopLabel(lower) &&
				!(strings.Contains(lower, "linha") && strings.Contains(lower, "digit")) {
				return prev
			}
		}
	}

	return ""
}
