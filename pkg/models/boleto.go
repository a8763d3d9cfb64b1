package models

// PaymentRecord is the structured result of extracting a boleto from
// OCR'd document text. Absent fields are empty strings or nil pointers;
// the JSON shape is flat and stable for downstream consumers.
type PaymentRecord struct {
	// LinhaDigitavel is the 47 or 48 digit payment line, digits only.
	LinhaDigitavel string `json:"linha_digitavel,omitempty"`

	// DataVencimento is the due date in ISO format (YYYY-MM-DD).
	DataVencimento string `json:"data_vencimento,omitempty"`

	// Beneficiario is the payee name as printed on the slip.
	Beneficiario string `json:"beneficiario,omitempty"`

	// CNPJBeneficiario is the payee tax ID, formatted as
	// dd.ddd.ddd/dddd-dd (CNPJ) or ddd.ddd.ddd-dd (CPF).
	CNPJBeneficiario string `json:"cnpj_beneficiario,omitempty"`

	// Valor is the amount extracted from free text, in reais.
	Valor *float64 `json:"valor"`

	// BancoEmissor is the 3-digit issuing bank code found in free text.
	BancoEmissor string `json:"banco_emissor,omitempty"`

	// NossoNumero is the bank-internal reference number.
	NossoNumero string `json:"nosso_numero,omitempty"`

	// Validacoes carries the per-field validation report.
	Validacoes ValidationReport `json:"validacoes"`

	// BoletoValido is true only when the payment line checksums pass, a
	// due date was found, and any free-text amount matches the amount
	// decoded from the payment line within 0.01.
	BoletoValido bool `json:"boleto_valido"`
}

// ValidationReport holds one validation entry per extracted field.
type ValidationReport struct {
	LinhaDigitavel   LineValidation        `json:"linha_digitavel"`
	DataVencimento   DueDateValidation     `json:"data_vencimento"`
	Valor            AmountValidation      `json:"valor"`
	BancoEmissor     BankValidation        `json:"banco_emissor"`
	Beneficiario     BeneficiaryValidation `json:"beneficiario"`
	CNPJBeneficiario TaxIDValidation       `json:"cnpj_beneficiario"`
}

// LineValidation is the checksum validation of the payment line.
type LineValidation struct {
	// Valido is the AND of the three block check-digit validations.
	Valido bool `json:"valido"`

	// Erro explains why validation failed, empty when Valido is true.
	Erro string `json:"erro,omitempty"`

	// Detalhes holds the values decoded from the payment line.
	Detalhes LineDetails `json:"detalhes"`
}

// LineDetails contains the fields decoded from a 47-digit payment line.
// All values are raw decodes; cross-checks against free-text fields are
// reported in the sibling validation entries.
type LineDetails struct {
	// CodigoBanco is the issuing bank code (digits 0-2).
	CodigoBanco string `json:"codigo_banco,omitempty"`

	// Moeda is the currency code digit (digit 3, "9" for BRL).
	Moeda string `json:"moeda,omitempty"`

	// FatorVencimento is the due-date factor, days since 1997-10-07.
	FatorVencimento int `json:"fator_vencimento,omitempty"`

	// DataVencimentoDoFator is the ISO date decoded from the factor.
	DataVencimentoDoFator string `json:"data_vencimento_do_fator,omitempty"`

	// Valor is the amount decoded from the trailing 10-digit field, in
	// reais. Nil when the field is all zeros or unparseable.
	Valor *float64 `json:"valor"`

	ValidacaoBloco1 bool `json:"validacao_bloco1"`
	ValidacaoBloco2 bool `json:"validacao_bloco2"`
	ValidacaoBloco3 bool `json:"validacao_bloco3"`

	// DVCodigoBarras is the mod-11 check digit computed over the
	// reassembled barcode field. Informational only: it never gates
	// Valido.
	DVCodigoBarras *int `json:"dv_codigo_barras,omitempty"`

	// DVCodigoBarrasConfere reports whether the computed barcode check
	// digit matches the one embedded in the payment line.
	DVCodigoBarrasConfere *bool `json:"dv_codigo_barras_confere,omitempty"`
}

// DueDateValidation reports the due date found in free text.
type DueDateValidation struct {
	Valido bool `json:"valido"`

	// Valor is the ISO due date, empty when none was found.
	Valor string `json:"valor,omitempty"`

	// Confianca is "high", "medium" or "low" depending on how close the
	// winning date candidate sat to a due-date keyword.
	Confianca string `json:"confianca"`
}

// AmountValidation reports the free-text amount and its counterpart
// decoded from the payment line, for cross-checking.
type AmountValidation struct {
	Valido bool     `json:"valido"`
	Valor  *float64 `json:"valor"`

	// ValorDaLinhaDigitavel is the amount decoded from the payment line.
	ValorDaLinhaDigitavel *float64 `json:"valor_da_linha_digitavel"`
}

// BankValidation reports the issuing bank code and its consistency with
// the bank code decoded from the payment line.
type BankValidation struct {
	Valido bool   `json:"valido"`
	Codigo string `json:"codigo,omitempty"`

	// CodigoDaLinhaDigitavel is the bank code decoded from the line.
	CodigoDaLinhaDigitavel string `json:"codigo_da_linha_digitavel,omitempty"`

	// Consistente is nil when either side is absent.
	Consistente *bool `json:"consistente"`
}

// BeneficiaryValidation reports presence of the payee name.
type BeneficiaryValidation struct {
	Valido bool   `json:"valido"`
	Nome   string `json:"nome,omitempty"`
}

// TaxIDValidation reports presence of the payee tax ID.
type TaxIDValidation struct {
	Valido bool   `json:"valido"`
	Valor  string `json:"valor,omitempty"`
}
