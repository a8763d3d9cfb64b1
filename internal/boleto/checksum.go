package boleto

import "fmt"

// Mod10 computes the check digit of a payment line block using the
// weighted modulo-10 algorithm: digits are processed right to left with
// alternating multipliers 2 and 3 (2 on the rightmost digit), products
// above 9 are reduced by summing their own decimal digits, and the check
// digit is the distance from the digit sum to the next multiple of 10.
//
// Used for the three 10/11-digit blocks of a 47-digit payment line.
func Mod10(block string) (int, error) {
	const op = "Mod10"

	if block == "" {
		return 0, NewExtractionError(op, ErrInvalidInput, "empty digit block")
	}

	sum := 0
	mult := 2
	for i := len(block) - 1; i >= 0; i-- {
		d := block[i]
		if d < '0' || d > '9' {
			return 0, NewExtractionError(op, ErrInvalidInput, fmt.Sprintf("non-digit character %q", d))
		}
		prod := int(d-'0') * mult
		if prod > 9 {
			prod = prod/10 + prod%10
		}
		sum += prod
		mult = 5 - mult // alternate 2 and 3
	}

	rest := sum % 10
	if rest == 0 {
		return 0, nil
	}
	return 10 - rest, nil
}

// Mod11 computes the check digit of the 44-digit barcode field using the
// modulo-11 algorithm: digits are processed right to left with cyclic
// multipliers 2..9; remainders below 2 map to check digit 0.
//
// The barcode check digit is informational in this design and never
// gates payment line validity.
func Mod11(field string) (int, error) {
	const op = "Mod11"

	if field == "" {
		return 0, NewExtractionError(op, ErrInvalidInput, "empty digit field")
	}

	weights := []int{2, 3, 4, 5, 6, 7, 8, 9}
	sum := 0
	idx := 0
	for i := len(field) - 1; i >= 0; i-- {
		d := field[i]
		if d < '0' || d > '9' {
			return 0, NewExtractionError(op, ErrInvalidInput, fmt.Sprintf("non-digit character %q", d))
		}
		sum += int(d-'0') * weights[idx%len(weights)]
		idx++
	}

	rest := sum % 11
	if rest < 2 {
		return 0, nil
	}
	return 11 - rest, nil
}
