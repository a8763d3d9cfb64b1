// Package boleto extracts structured payment data from OCR-degraded
// text of Brazilian payment slips (boletos).
//
// The extraction engine is a single deterministic pass per field: a set
// of pattern matchers locate candidate spans in unstructured text, a
// keyword-proximity scorer ranks date candidates, and the check-digit
// algorithms of the "linha digitável" format verify the payment line.
// Every heuristic is an independent pure function over the input text,
// so each is testable in isolation.
//
// The engine has no I/O and no knowledge of how the text was produced.
// It never fails on malformed input: absent fields are simply omitted
// from the result, and every validity signal is carried in the returned
// record's validation report. Calls are stateless and safe to run
// concurrently.
//
// Input text is treated as already normalized. OCR digit-confusion
// repair, when wanted, is the postocr package's pre-pass.
package boleto

import (
	"math"

	"boleto-tools/internal/logger"
	"boleto-tools/pkg/models"
)

// amountTolerance is the maximum difference, in reais, accepted between
// the free-text amount and the amount decoded from the payment line.
const amountTolerance = 0.01

// ExtractPaymentInfo runs every matcher over the document text and
// assembles the structured payment record with its per-field validation
// report.
//
// The overall boleto_valido flag is true only when the payment line
// block checks pass, a due date was found, and any independently
// extracted amount agrees with the line-decoded amount within 0.01.
// Empty input yields an all-absent record with boleto_valido=false.
func ExtractPaymentInfo(text string) *models.PaymentRecord {
	log := logger.WithComponent("boleto-extract")

	record := &models.PaymentRecord{
		Validacoes: models.ValidationReport{
			LinhaDigitavel: models.LineValidation{
				Valido: false,
				Erro:   "Linha digitável não encontrada",
			},
			DataVencimento: models.DueDateValidation{Confianca: "low"},
		},
	}
	if text == "" {
		return record
	}

	due := ExtractDueDate(text)
	line := FindPaymentLine(text)
	amount := ExtractAmount(text)
	bank := ExtractBank(text)
	beneficiary := ExtractBeneficiario(text)
	taxID := ExtractTaxID(text)

	record.LinhaDigitavel = line
	record.Beneficiario = beneficiary
	record.CNPJBeneficiario = taxID
	record.Valor = amount
	record.BancoEmissor = bank
	record.NossoNumero = ExtractNossoNumero(text)

	var lineValidation models.LineValidation
	if line != "" {
		lineValidation = ValidateLine(line)
		record.Validacoes.LinhaDigitavel = lineValidation
	}

	if due != nil {
		record.DataVencimento = due.ISO()
		record.Validacoes.DataVencimento = models.DueDateValidation{
			Valido:    true,
			Valor:     due.ISO(),
			Confianca: due.Confidence,
		}
	}

	record.Validacoes.Valor = models.AmountValidation{
		Valido:                amount != nil && *amount > 0,
		Valor:                 amount,
		ValorDaLinhaDigitavel: lineValidation.Detalhes.Valor,
	}

	bankValidation := models.BankValidation{
		Valido:                 bank != "",
		Codigo:                 bank,
		CodigoDaLinhaDigitavel: lineValidation.Detalhes.CodigoBanco,
	}
	if bank != "" && lineValidation.Detalhes.CodigoBanco != "" {
		consistent := bank == lineValidation.Detalhes.CodigoBanco
		bankValidation.Consistente = &consistent
	}
	record.Validacoes.BancoEmissor = bankValidation

	record.Validacoes.Beneficiario = models.BeneficiaryValidation{
		Valido: beneficiary != "",
		Nome:   beneficiary,
	}
	record.Validacoes.CNPJBeneficiario = models.TaxIDValidation{
		Valido: taxID != "",
		Valor:  taxID,
	}

	valid := record.Validacoes.LinhaDigitavel.Valido && record.Validacoes.DataVencimento.Valido
	if amount != nil && lineValidation.Detalhes.Valor != nil {
		valid = valid && math.Abs(*amount-*lineValidation.Detalhes.Valor) < amountTolerance
	}
	record.BoletoValido = valid

	log.Debug().
		Bool("boleto_valido", record.BoletoValido).
		Bool("linha_encontrada", line != "").
		Bool("vencimento_encontrado", due != nil).
		Bool("valor_encontrado", amount != nil).
		Msg("Payment info extraction completed")

	return record
}
