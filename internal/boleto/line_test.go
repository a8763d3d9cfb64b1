package boleto

import (
	"fmt"
	"strings"
	"testing"
)

// buildLine assembles a checksum-valid 47-digit payment line from its
// raw parts: 3-digit bank code, 1 currency digit, 25 free-field digits,
// 4-digit due-date factor and 10-digit amount in centavos.
func buildLine(t *testing.T, bank, currency, free, factor, cents string) string {
	t.Helper()

	if len(bank) != 3 || len(currency) != 1 || len(free) != 25 || len(factor) != 4 || len(cents) != 10 {
		t.Fatalf("buildLine: bad part lengths %d/%d/%d/%d/%d",
			len(bank), len(currency), len(free), len(factor), len(cents))
	}

	b1 := bank + currency + free[0:5]
	b2 := free[5:15]
	b3 := free[15:25]

	dv1, err := Mod10(b1)
	if err != nil {
		t.Fatalf("Mod10(%q) error: %v", b1, err)
	}
	dv2, err := Mod10(b2)
	if err != nil {
		t.Fatalf("Mod10(%q) error: %v", b2, err)
	}
	dv3, err := Mod10(b3)
	if err != nil {
		t.Fatalf("Mod10(%q) error: %v", b3, err)
	}

	barcode := bank + currency + factor + cents + b1[4:] + b2 + b3
	barDV, err := Mod11(barcode)
	if err != nil {
		t.Fatalf("Mod11(%q) error: %v", barcode, err)
	}

	return fmt.Sprintf("%s%d%s%d%s%d%d%s%s", b1, dv1, b2, dv2, b3, dv3, barDV, factor, cents)
}

// flipDigit returns line with the digit at position i replaced by a
// different digit.
func flipDigit(line string, i int) string {
	b := []byte(line)
	b[i] = '0' + byte((int(b[i]-'0')+1)%10)
	return string(b)
}

func TestValidateLineDecodesFields(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")

	v := ValidateLine(line)

	if !v.Valido {
		t.Fatalf("Valido = false (%s), want true", v.Erro)
	}
	if v.Erro != "" {
		t.Errorf("Erro = %q, want empty", v.Erro)
	}

	d := v.Detalhes
	if d.CodigoBanco != "341" {
		t.Errorf("CodigoBanco = %q, want %q", d.CodigoBanco, "341")
	}
	if d.Moeda != "9" {
		t.Errorf("Moeda = %q, want %q", d.Moeda, "9")
	}
	if d.FatorVencimento != 1000 {
		t.Errorf("FatorVencimento = %d, want 1000", d.FatorVencimento)
	}
	if d.DataVencimentoDoFator != "2000-07-03" {
		t.Errorf("DataVencimentoDoFator = %q, want %q", d.DataVencimentoDoFator, "2000-07-03")
	}
	if d.Valor == nil || *d.Valor != 1500.00 {
		t.Errorf("Valor = %v, want 1500.00", d.Valor)
	}
	if !d.ValidacaoBloco1 || !d.ValidacaoBloco2 || !d.ValidacaoBloco3 {
		t.Errorf("block validations = %v/%v/%v, want all true",
			d.ValidacaoBloco1, d.ValidacaoBloco2, d.ValidacaoBloco3)
	}
	if d.DVCodigoBarras == nil || d.DVCodigoBarrasConfere == nil {
		t.Fatal("barcode check digit not reported")
	}
	if !*d.DVCodigoBarrasConfere {
		t.Error("DVCodigoBarrasConfere = false, want true")
	}
}

func TestValidateLineWrongCheckDigit(t *testing.T) {
	line := buildLine(t, "001", "9", "1234512345678901234567890", "9000", "0000003550")

	tests := []struct {
		name     string
		position int
		block    int
	}{
		{"block 1 check digit", 9, 1},
		{"block 2 check digit", 20, 2},
		{"block 3 check digit", 31, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateLine(flipDigit(line, tt.position))

			if v.Valido {
				t.Fatal("Valido = true, want false")
			}
			if v.Erro != "Um ou mais dígitos verificadores estão incorretos" {
				t.Errorf("Erro = %q", v.Erro)
			}

			oks := []bool{v.Detalhes.ValidacaoBloco1, v.Detalhes.ValidacaoBloco2, v.Detalhes.ValidacaoBloco3}
			for i, ok := range oks {
				wantOK := i+1 != tt.block
				if ok != wantOK {
					t.Errorf("block %d validation = %v, want %v", i+1, ok, wantOK)
				}
			}
		})
	}
}

func TestValidateLineWrongLength(t *testing.T) {
	v := ValidateLine("123")
	if v.Valido {
		t.Error("Valido = true, want false")
	}
	if v.Erro != "Linha digitável deve ter 47 dígitos, encontrados 3" {
		t.Errorf("Erro = %q", v.Erro)
	}
}

func TestValidateLineZeroAmount(t *testing.T) {
	line := buildLine(t, "237", "9", "1112223334445556667778889", "0000", "0000000000")

	v := ValidateLine(line)
	if !v.Valido {
		t.Fatalf("Valido = false (%s), want true", v.Erro)
	}
	if v.Detalhes.Valor != nil {
		t.Errorf("Valor = %v, want nil for all-zero amount field", *v.Detalhes.Valor)
	}
}

func TestValidateLineBarcodeDigitMismatch(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")

	// Position 32 is the embedded barcode check digit. Corrupting it must
	// flip the informational match flag without affecting validity.
	v := ValidateLine(flipDigit(line, 32))

	if !v.Valido {
		t.Fatalf("Valido = false (%s), want true", v.Erro)
	}
	if v.Detalhes.DVCodigoBarrasConfere == nil || *v.Detalhes.DVCodigoBarrasConfere {
		t.Error("DVCodigoBarrasConfere = true, want false")
	}
}

func TestValidateLineToleratesSeparators(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")
	formatted := line[0:5] + "." + line[5:10] + " " + line[10:15] + "." + line[15:21] + " " +
		line[21:26] + "." + line[26:32] + " " + line[32:33] + " " + line[33:47]

	v := ValidateLine(formatted)
	if !v.Valido {
		t.Fatalf("Valido = false (%s) for formatted line, want true", v.Erro)
	}
}

func TestFindPaymentLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "formatted with separators",
			text: "Pague até o vencimento.\n34191.09008 61713.957308 71444.640008 8 91150000026000\nObrigado.",
			want: "34191090086171395730871444640008891150000026000",
		},
		{
			name: "contiguous digits",
			text: "linha 34191090086171395730871444640008891150000026000 fim",
			want: "34191090086171395730871444640008891150000026000",
		},
		{
			name: "noise glued to the line",
			text: "cod 1234191090086171395730871444640008891150000026000",
			want: "34191090086171395730871444640008891150000026000",
		},
		{
			name: "short digit run on its own line",
			text: "referência\n1234567890123456789012345678901234567890123\nfim",
			want: "1234567890123456789012345678901234567890123",
		},
		{
			name: "no digits",
			text: "documento sem linha digitável",
			want: "",
		},
		{
			name: "empty",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPaymentLine(tt.text)
			if got != tt.want {
				t.Errorf("FindPaymentLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindPaymentLinePrefersExactLength(t *testing.T) {
	exact := strings.Repeat("34191", 9) + "09" // 47 digits
	text := "ruído 123456789012345678901234567890123456789012345678901234\n" + exact

	got := FindPaymentLine(text)
	if got != exact {
		t.Errorf("FindPaymentLine() = %q, want the 47-digit candidate %q", got, exact)
	}
}

func TestCleanDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"34191.09008 61713", "341910900861713"},
		{"abc", ""},
		{"", ""},
		{"1-2 3.4", "1234"},
	}
	for _, tt := range tests {
		if got := CleanDigits(tt.in); got != tt.want {
			t.Errorf("CleanDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
