package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"boleto-tools/internal/boleto"
	"boleto-tools/internal/config"
	"boleto-tools/internal/logger"
	"boleto-tools/internal/postocr"
	"boleto-tools/internal/results"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract and validate payment fields from a boleto",
	Long: `Extract payment fields from a boleto document and validate them.

Text files (.txt) are read directly; PDFs and images go through cloud
OCR first. The extracted fields are the linha digitável (with check
digit validation of all three blocks), vencimento, beneficiário,
CNPJ/CPF, valor, banco emissor and nosso número. The output is a JSON
record that includes a per-field validation report and an overall
boleto_valido flag.

OCR text gets a deterministic digit-confusion repair pass, plus an
optional ChatGPT cleanup when OPENAI_API_KEY is set (disable with
POST_OCR_ENABLED=false or --no-clean).

Required environment variables (OCR input only):
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string

Optional environment variables:
  OPENAI_API_KEY - Enables the ChatGPT cleanup pass
  OPENAI_MODEL - Model for the cleanup (default: gpt-4o-mini)
  RETURNS_DIR - Directory for --save results (default: retornos)`,
	Example: `  # Extract from a plain text transcription
  boleto extract transcricao.txt

  # Extract from a PDF via OCR
  boleto extract boleto.pdf

  # Save the record (and the transcription) under retornos/
  boleto extract boleto.pdf --save

  # Write the JSON record to a file, skip the LLM cleanup
  boleto extract scan.jpg --no-clean -o resultado.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("save", false, "Save extraction and transcription to the returns directory")
	extractCmd.Flags().Bool("no-clean", false, "Skip the ChatGPT OCR cleanup pass")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")
	noClean, _ := cmd.Flags().GetBool("no-clean")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	docPath := args[0]

	log.Info().
		Str("file", docPath).
		Bool("save", save).
		Msg("Starting boleto extraction")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	text, engine, err := readDocumentText(ctx, docPath, !noClean, log)
	if err != nil {
		return err
	}

	record := boleto.ExtractPaymentInfo(text)

	log.Info().
		Bool("boleto_valido", record.BoletoValido).
		Str("linha_digitavel", record.LinhaDigitavel).
		Str("data_vencimento", record.DataVencimento).
		Msg("Extraction completed")

	if save {
		store, err := results.NewStore(cfg.ReturnsDir)
		if err != nil {
			return fmt.Errorf("failed to open returns directory: %w", err)
		}
		if path, err := store.SaveExtraction(record); err != nil {
			log.Warn().Err(err).Msg("Failed to save extraction")
		} else {
			log.Info().Str("path", path).Msg("Extraction saved")
		}
		if !store.IsDuplicateTranscription(text) {
			tr := &results.Transcription{Transcricao: text, Arquivo: docPath, Engine: engine}
			if _, err := store.SaveTranscription(tr); err != nil {
				log.Warn().Err(err).Msg("Failed to save transcription")
			}
		}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal extraction result: %w", err)
	}
	data = append(data, '\n')

	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("output_file", outputPath).Msg("Extraction result written to file")
		return nil
	}

	_, err = os.Stdout.Write(data)
	return err
}

// readDocumentText returns the text content of a boleto input. Plain
// text files bypass OCR entirely; other formats go through the engine
// chain followed by the post-OCR repair passes. The second return value
// names the OCR engine used ("" for direct text).
func readDocumentText(ctx context.Context, docPath string, clean bool, log zerolog.Logger) (string, string, error) {
	if strings.HasSuffix(strings.ToLower(docPath), ".txt") {
		raw, err := os.ReadFile(docPath)
		if err != nil {
			return "", "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(raw), "", nil
	}

	fileInfo, mimeType, err := validateDocumentFile(docPath, log)
	if err != nil {
		return "", "", err
	}

	chain, err := createEngineChain(ctx, log)
	if err != nil {
		return "", "", err
	}

	docFile, err := os.Open(docPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to open document: %w", err)
	}
	defer docFile.Close()

	log.Info().
		Str("file", docPath).
		Int64("size", fileInfo.Size()).
		Str("mime_type", mimeType).
		Msg("Running OCR")

	result, err := chain.ExtractTextWithMetadata(ctx, docFile, mimeType)
	if err != nil {
		return "", "", handleOCRError(err, log)
	}

	text := postocr.RepairDigits(result.Text)
	if clean {
		text = postocr.NewCleaner().Clean(ctx, text)
	}

	return text, result.Engine, nil
}
