package boleto

import (
	"errors"
	"testing"
)

func TestMod10(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  int
	}{
		{"nine digit block", "001905009", 4},
		{"single zero", "0", 0},
		{"single nine", "9", 1},
		{"two digits", "25", 3},
		{"ten digit block", "1111111111", 5},
		{"all zeros", "0000000000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mod10(tt.block)
			if err != nil {
				t.Fatalf("Mod10(%q) returned error: %v", tt.block, err)
			}
			if got != tt.want {
				t.Errorf("Mod10(%q) = %d, want %d", tt.block, got, tt.want)
			}
		})
	}
}

func TestMod10InvalidInput(t *testing.T) {
	for _, block := range []string{"", "12a4", "123 456", "12.345"} {
		if _, err := Mod10(block); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Mod10(%q) error = %v, want ErrInvalidInput", block, err)
		}
	}
}

func TestMod11(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  int
	}{
		{"all zeros", "0000000000", 0},
		{"trailing one", "0000000001", 9},
		{"all nines", "9999999999", 0},
		{"single digit", "4", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mod11(tt.field)
			if err != nil {
				t.Fatalf("Mod11(%q) returned error: %v", tt.field, err)
			}
			if got != tt.want {
				t.Errorf("Mod11(%q) = %d, want %d", tt.field, got, tt.want)
			}
		})
	}
}

func TestMod11InvalidInput(t *testing.T) {
	for _, field := range []string{"", "1x3", "1-2"} {
		if _, err := Mod11(field); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Mod11(%q) error = %v, want ErrInvalidInput", field, err)
		}
	}
}

func TestExtractionErrorMessage(t *testing.T) {
	err := NewExtractionError("Mod10", ErrInvalidInput, "empty digit block")
	want := "boleto: Mod10 failed: empty digit block: invalid input: expected a non-empty digit string"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
}
