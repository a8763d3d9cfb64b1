package boleto

import "testing"

func TestFormatTaxID(t *testing.T) {
	tests := []struct {
		digits string
		want   string
	}{
		{"12345678000190", "12.345.678/0001-90"},
		{"12345678901", "123.456.789-01"},
		{"1234567", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatTaxID(tt.digits); got != tt.want {
			t.Errorf("FormatTaxID(%q) = %q, want %q", tt.digits, got, tt.want)
		}
	}
}

func TestExtractTaxID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labeled masked cnpj",
			text: "Cedente: ACME LTDA\nCNPJ: 12.345.678/0001-90",
			want: "12.345.678/0001-90",
		},
		{
			name: "labeled plain cnpj",
			text: "CNPJ 12345678000190",
			want: "12.345.678/0001-90",
		},
		{
			name: "labeled cpf",
			text: "CPF: 123.456.789-01",
			want: "123.456.789-01",
		},
		{
			name: "combined label",
			text: "CPF/CNPJ: 12.345.678/0001-90",
			want: "12.345.678/0001-90",
		},
		{
			name: "unlabeled masked cnpj",
			text: "ACME Comercio LTDA 12.345.678/0001-90",
			want: "12.345.678/0001-90",
		},
		{
			name: "cnpj on payment line row is ignored",
			text: "34191.09008 61713.957308 71444.640008 8 91150000026000 12.345.678/0001-90",
			want: "",
		},
		{
			name: "no tax id",
			text: "documento sem identificação",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTaxID(tt.text); got != tt.want {
				t.Errorf("ExtractTaxID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"valor do documento", "Valor do Documento: R$ 1.234,56", 1234.56},
		{"valor a pagar", "Valor a pagar: 89,90", 89.90},
		{"currency prefix only", "Total R$ 99,90", 99.90},
		{"reais suffix", "cobrança de 123,45 reais", 123.45},
		{"grouped thousands", "Valor: R$ 12.345.678,00", 12345678.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAmount(tt.text)
			if got == nil {
				t.Fatal("ExtractAmount() = nil, want a value")
			}
			if *got != tt.want {
				t.Errorf("ExtractAmount() = %v, want %v", *got, tt.want)
			}
		})
	}
}

func TestExtractAmountAbsent(t *testing.T) {
	for _, text := range []string{
		"",
		"sem valores monetários",
		"Valor: 1234",
		"Valor: 12,3",
	} {
		if got := ExtractAmount(text); got != nil {
			t.Errorf("ExtractAmount(%q) = %v, want nil", text, *got)
		}
	}
}

func TestExtractBank(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"banco prefix", "Banco 341 Agência: 1234", "341"},
		{"code dash name header", "104 - Caixa Econômica Federal", "104"},
		{"banese header", "047 - Banese", "047"},
		{"no bank", "banco do brasil sem código", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBank(tt.text); got != tt.want {
				t.Errorf("ExtractBank() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractNossoNumero(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Nosso Número: 00123456789", "00123456789"},
		{"spaced digits", "Nosso numero 123 456", "123456"},
		{"with check digit", "Nosso Número: 123456-7", "123456-7"},
		{"absent", "sem referência", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractNossoNumero(tt.text); got != tt.want {
				t.Errorf("ExtractNossoNumero() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractAgenciaConta(t *testing.T) {
	text := "Agência: 1234-5\nConta corrente: 98765-0"

	if got := ExtractAgencia(text); got != "1234-5" {
		t.Errorf("ExtractAgencia() = %q, want %q", got, "1234-5")
	}
	if got := ExtractConta(text); got != "98765-0" {
		t.Errorf("ExtractConta() = %q, want %q", got, "98765-0")
	}
	if got := ExtractAgencia("sem agência aqui"); got != "" {
		t.Errorf("ExtractAgencia() = %q, want empty", got)
	}
}

func TestExtractBeneficiario(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "cedente same line",
			text: "Cedente: ACME Comercio LTDA\nVencimento: 15/11/2025",
			want: "ACME Comercio LTDA",
		},
		{
			name: "cedente value on a later line",
			text: "Cedente:\nCNPJ: 12.345.678/0001-90\nACME Comercio LTDA\nValor: R$ 100,00",
			want: "ACME Comercio LTDA",
		},
		{
			name: "cedente scan skips digit lines",
			text: "Cedente:\n34191090086171395730871444640008891150000026000\nEmpresa Real SA",
			want: "Empresa Real SA",
		},
		{
			name: "beneficiario label",
			text: "Beneficiário: Empresa XYZ SA",
			want: "Empresa XYZ SA",
		},
		{
			name: "favorecido label",
			text: "Favorecido: Condominio Solar",
			want: "Condominio Solar",
		},
		{
			name: "line preceding cnpj fallback",
			text: "Pagador: Joana Silva\nEmpresa ABC Ltda\n12.345.678/0001-90\n",
			want: "Empresa ABC Ltda",
		},
		{
			name: "cnpj fallback rejects field label lines",
			text: "Sacado: Fulano de Tal\nVencimento conforme indicado\n12.345.678/0001-99\n",
			want: "",
		},
		{
			name: "absent",
			text: "documento sem emissor identificado",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBeneficiario(tt.text); got != tt.want {
				t.Errorf("ExtractBeneficiario() = %q, want %q", got, tt.want)
			}
		})
	}
}
