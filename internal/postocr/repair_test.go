package postocr

import (
	"context"
	"testing"
)

func TestRepairDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "letter O inside digitable line",
			input: "34191.O9008 61713.957308",
			want:  "34191.09008 61713.957308",
		},
		{
			name:  "lowercase l as one",
			input: "8485l322",
			want:  "84851322",
		},
		{
			name:  "S and B inside amount token",
			input: "valor 1.S23,B7",
			want:  "valor 1.523,87",
		},
		{
			name:  "plain word untouched",
			input: "Vencimento",
			want:  "Vencimento",
		},
		{
			name:  "word with few digits untouched",
			input: "Bloco2",
			want:  "Bloco2",
		},
		{
			name:  "beneficiary name untouched",
			input: "BANCO DO BRASIL SA",
			want:  "BANCO DO BRASIL SA",
		},
		{
			name:  "mixed line repairs only numeric tokens",
			input: "Cedente: ACME LTDA 12.345.678/OOO1-90",
			want:  "Cedente: ACME LTDA 12.345.678/0001-90",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "preserves whitespace layout",
			input: "  34191\t09008\n",
			want:  "  34191\t09008\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairDigits(tt.input)
			if got != tt.want {
				t.Errorf("RepairDigits(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairDigitsIdempotent(t *testing.T) {
	input := "linha 34191.O9008 61713.957308 7O144.7O1Z4 5 84851322OOOO199999"
	once := RepairDigits(input)
	twice := RepairDigits(once)
	if once != twice {
		t.Errorf("RepairDigits is not idempotent: %q != %q", once, twice)
	}
}

func TestCleanerDisabled(t *testing.T) {
	cleaner := NewCleanerWithClient(nil, CleanerConfig{Enabled: false})

	input := "Vencimento: 15/11/2025"
	if got := cleaner.Clean(context.Background(), input); got != input {
		t.Errorf("disabled Clean() = %q, want input unchanged", got)
	}
}

func TestCleanerNoClient(t *testing.T) {
	// Enabled but without an API key configured: must pass through.
	cleaner := NewCleanerWithClient(nil, CleanerConfig{Enabled: true, Model: "gpt-4o-mini"})

	input := "Cedente: ACME LTDA"
	if got := cleaner.Clean(context.Background(), input); got != input {
		t.Errorf("Clean() without client = %q, want input unchanged", got)
	}
}

func TestCleanerEmptyText(t *testing.T) {
	cleaner := NewCleaner()
	if got := cleaner.Clean(context.Background(), "   "); got != "   " {
		t.Errorf("Clean() on blank text = %q, want input unchanged", got)
	}
}
