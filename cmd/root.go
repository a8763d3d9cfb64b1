package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"boleto-tools/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "boleto",
	Short: "Boleto Tools - extract and validate Brazilian payment slips",
	Long: `Boleto Tools reads boleto documents (PDFs, scans, or plain text),
extracts the payment fields (linha digitável, vencimento, beneficiário,
CNPJ/CPF, valor, banco, nosso número) and validates the digitable line
check digits, producing a structured JSON record.

OCR input goes through Google Cloud Vision with a Document AI fallback;
extraction itself is fully offline and works on any text.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Boleto Tools executed")

		fmt.Println("Boleto Tools")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
