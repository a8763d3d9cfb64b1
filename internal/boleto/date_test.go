package boleto

import "testing"

func TestExtractDueDateKeywordAnchored(t *testing.T) {
	due := ExtractDueDate("Vencimento: 15/11/2025\nValor do Documento: R$ 260,00")

	if due == nil {
		t.Fatal("ExtractDueDate() = nil, want a date")
	}
	if due.ISO() != "2025-11-15" {
		t.Errorf("ISO() = %q, want %q", due.ISO(), "2025-11-15")
	}
	if due.Original != "15/11/2025" {
		t.Errorf("Original = %q, want %q", due.Original, "15/11/2025")
	}
	if due.Confidence != "high" {
		t.Errorf("Confidence = %q, want %q", due.Confidence, "high")
	}
}

func TestExtractDueDatePrefersKeywordProximity(t *testing.T) {
	text := "Data do Documento: 01/01/2024\n" +
		"Número do Documento: 000123\n" +
		"Espécie: DM\n" +
		"Vencimento: 20/03/2026\n"

	due := ExtractDueDate(text)
	if due == nil {
		t.Fatal("ExtractDueDate() = nil, want a date")
	}
	if due.ISO() != "2026-03-20" {
		t.Errorf("ISO() = %q, want the keyword-adjacent date %q", due.ISO(), "2026-03-20")
	}
}

func TestExtractDueDateSeparatorVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"slashes", "Vencimento: 05/09/2026", "2026-09-05"},
		{"dashes", "Vencimento: 05-09-2026", "2026-09-05"},
		{"dots", "Vencimento: 05.09.2026", "2026-09-05"},
		{"spaced separators", "Vencimento: 05 / 09 / 2026", "2026-09-05"},
		{"single digit day and month", "Venc: 5/9/2026", "2026-09-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := ExtractDueDate(tt.text)
			if due == nil {
				t.Fatal("ExtractDueDate() = nil, want a date")
			}
			if due.ISO() != tt.want {
				t.Errorf("ISO() = %q, want %q", due.ISO(), tt.want)
			}
		})
	}
}

func TestExtractDueDateTwoDigitYears(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Vencimento: 10/05/49", "2049-05-10"},
		{"Vencimento: 10/05/50", "1950-05-10"},
		{"Vencimento: 10/05/00", "2000-05-10"},
		{"Vencimento: 10/05/99", "1999-05-10"},
	}

	for _, tt := range tests {
		due := ExtractDueDate(tt.text)
		if due == nil {
			t.Fatalf("ExtractDueDate(%q) = nil, want a date", tt.text)
		}
		if due.ISO() != tt.want {
			t.Errorf("ExtractDueDate(%q).ISO() = %q, want %q", tt.text, due.ISO(), tt.want)
		}
	}
}

func TestExtractDueDateRejectsInvalidCalendar(t *testing.T) {
	for _, text := range []string{
		"Vencimento: 31/02/2025",
		"Vencimento: 10/13/2025",
		"Vencimento: 00/05/2025",
	} {
		if due := ExtractDueDate(text); due != nil {
			t.Errorf("ExtractDueDate(%q) = %q, want nil", text, due.ISO())
		}
	}
}

func TestExtractDueDateNoKeywords(t *testing.T) {
	due := ExtractDueDate("Relatório emitido em 12/08/2025 pelo sistema")

	if due == nil {
		t.Fatal("ExtractDueDate() = nil, want a date")
	}
	if due.ISO() != "2025-08-12" {
		t.Errorf("ISO() = %q, want %q", due.ISO(), "2025-08-12")
	}
	if due.Confidence != "low" {
		t.Errorf("Confidence = %q, want %q without any due-date keyword", due.Confidence, "low")
	}
}

func TestExtractDueDateNoDate(t *testing.T) {
	for _, text := range []string{"", "texto sem nenhuma data", "Vencimento: em breve"} {
		if due := ExtractDueDate(text); due != nil {
			t.Errorf("ExtractDueDate(%q) = %q, want nil", text, due.ISO())
		}
	}
}
