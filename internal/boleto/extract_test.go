package boleto

import (
	"math"
	"testing"
)

func TestExtractPaymentInfoEmptyInput(t *testing.T) {
	record := ExtractPaymentInfo("")

	if record.BoletoValido {
		t.Error("BoletoValido = true, want false")
	}
	if record.LinhaDigitavel != "" {
		t.Errorf("LinhaDigitavel = %q, want empty", record.LinhaDigitavel)
	}
	if record.Validacoes.LinhaDigitavel.Erro != "Linha digitável não encontrada" {
		t.Errorf("LinhaDigitavel.Erro = %q", record.Validacoes.LinhaDigitavel.Erro)
	}
	if record.Validacoes.DataVencimento.Confianca != "low" {
		t.Errorf("DataVencimento.Confianca = %q, want %q", record.Validacoes.DataVencimento.Confianca, "low")
	}
}

func TestExtractPaymentInfoFullRecord(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")
	text := "Banco 341\n" +
		"Cedente: ACME Comercio LTDA\n" +
		"CNPJ: 12.345.678/0001-90\n" +
		"Nosso Número: 00123456789\n" +
		"Vencimento: 15/11/2025\n" +
		"Valor do Documento: R$ 1.500,00\n" +
		line + "\n"

	record := ExtractPaymentInfo(text)

	if !record.BoletoValido {
		t.Fatalf("BoletoValido = false, want true (line error: %q)", record.Validacoes.LinhaDigitavel.Erro)
	}
	if record.LinhaDigitavel != line {
		t.Errorf("LinhaDigitavel = %q, want %q", record.LinhaDigitavel, line)
	}
	if record.DataVencimento != "2025-11-15" {
		t.Errorf("DataVencimento = %q, want %q", record.DataVencimento, "2025-11-15")
	}
	if record.Beneficiario != "ACME Comercio LTDA" {
		t.Errorf("Beneficiario = %q", record.Beneficiario)
	}
	if record.CNPJBeneficiario != "12.345.678/0001-90" {
		t.Errorf("CNPJBeneficiario = %q", record.CNPJBeneficiario)
	}
	if record.NossoNumero != "00123456789" {
		t.Errorf("NossoNumero = %q", record.NossoNumero)
	}
	if record.BancoEmissor != "341" {
		t.Errorf("BancoEmissor = %q, want %q", record.BancoEmissor, "341")
	}
	if record.Valor == nil || math.Abs(*record.Valor-1500.00) > 1e-9 {
		t.Errorf("Valor = %v, want 1500.00", record.Valor)
	}

	v := record.Validacoes
	if !v.LinhaDigitavel.Valido {
		t.Errorf("LinhaDigitavel.Valido = false (%s)", v.LinhaDigitavel.Erro)
	}
	if !v.DataVencimento.Valido || v.DataVencimento.Valor != "2025-11-15" {
		t.Errorf("DataVencimento validation = %+v", v.DataVencimento)
	}
	if v.DataVencimento.Confianca != "high" {
		t.Errorf("DataVencimento.Confianca = %q, want %q", v.DataVencimento.Confianca, "high")
	}
	if !v.Valor.Valido || v.Valor.ValorDaLinhaDigitavel == nil || *v.Valor.ValorDaLinhaDigitavel != 1500.00 {
		t.Errorf("Valor validation = %+v", v.Valor)
	}
	if v.BancoEmissor.CodigoDaLinhaDigitavel != "341" {
		t.Errorf("CodigoDaLinhaDigitavel = %q", v.BancoEmissor.CodigoDaLinhaDigitavel)
	}
	if v.BancoEmissor.Consistente == nil || !*v.BancoEmissor.Consistente {
		t.Error("BancoEmissor.Consistente = false, want true")
	}
	if !v.Beneficiario.Valido || !v.CNPJBeneficiario.Valido {
		t.Error("beneficiary validations = false, want true")
	}
}

func TestExtractPaymentInfoAmountMismatch(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")
	text := "Vencimento: 15/11/2025\n" +
		"Valor do Documento: R$ 99,90\n" +
		line + "\n"

	record := ExtractPaymentInfo(text)

	if !record.Validacoes.LinhaDigitavel.Valido {
		t.Fatalf("LinhaDigitavel.Valido = false (%s)", record.Validacoes.LinhaDigitavel.Erro)
	}
	if record.BoletoValido {
		t.Error("BoletoValido = true, want false when the free-text amount disagrees with the line")
	}
}

func TestExtractPaymentInfoBankInconsistency(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")
	text := "Banco 237\n" +
		"Vencimento: 15/11/2025\n" +
		line + "\n"

	record := ExtractPaymentInfo(text)

	c := record.Validacoes.BancoEmissor.Consistente
	if c == nil || *c {
		t.Error("BancoEmissor.Consistente = true, want false for mismatched bank codes")
	}
	// A bank mismatch is reported, never fatal.
	if !record.BoletoValido {
		t.Errorf("BoletoValido = false (%s), want true", record.Validacoes.LinhaDigitavel.Erro)
	}
}

func TestExtractPaymentInfoInvalidCheckDigits(t *testing.T) {
	line := buildLine(t, "001", "9", "1234512345678901234567890", "9000", "0000003550")
	text := "Vencimento: 20/03/2026\n" + flipDigit(line, 9) + "\n"

	record := ExtractPaymentInfo(text)

	if record.BoletoValido {
		t.Error("BoletoValido = true, want false")
	}
	if record.Validacoes.LinhaDigitavel.Erro != "Um ou mais dígitos verificadores estão incorretos" {
		t.Errorf("LinhaDigitavel.Erro = %q", record.Validacoes.LinhaDigitavel.Erro)
	}
}

func TestExtractPaymentInfoMissingDueDate(t *testing.T) {
	line := buildLine(t, "341", "9", "0900861713957307144464000", "1000", "0000150000")

	record := ExtractPaymentInfo("documento sem data\n" + line + "\n")

	if !record.Validacoes.LinhaDigitavel.Valido {
		t.Fatalf("LinhaDigitavel.Valido = false (%s)", record.Validacoes.LinhaDigitavel.Erro)
	}
	if record.BoletoValido {
		t.Error("BoletoValido = true, want false without a due date")
	}
	if record.DataVencimento != "" {
		t.Errorf("DataVencimento = %q, want empty", record.DataVencimento)
	}
}
