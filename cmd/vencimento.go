package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"boleto-tools/internal/boleto"
	"boleto-tools/internal/config"
	"boleto-tools/internal/logger"
	"boleto-tools/internal/results"
)

var vencimentoCmd = &cobra.Command{
	Use:   "vencimento [file]",
	Short: "Extract only the due date from a boleto",
	Long: `Extract the vencimento (due date) from a boleto document.

Pass a file path (.txt, .pdf or an image) or "-" to read plain text
from stdin. The output is a small JSON object with the normalized date,
the original matched text and a confidence bucket (high, medium, low).

When reading from a file, the full extraction record and the raw
transcription are also saved to the returns directory, mirroring the
extract command with --save.`,
	Example: `  # From a saved transcription
  boleto vencimento transcricao.txt

  # From a PDF via OCR
  boleto vencimento boleto.pdf

  # From stdin
  cat texto.txt | boleto vencimento -`,
	Args: cobra.ExactArgs(1),
	RunE: runVencimento,
}

// dueDateOutput is the JSON shape printed by the vencimento command.
type dueDateOutput struct {
	DueDate    string `json:"due_date"`
	Original   string `json:"original"`
	Confidence string `json:"confidence"`
}

func init() {
	rootCmd.AddCommand(vencimentoCmd)

	vencimentoCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runVencimento(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("vencimento")

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	input := args[0]

	// Stdin: run only the due date matcher over the piped text.
	if input == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		var out dueDateOutput
		if due := boleto.ExtractDueDate(string(raw)); due != nil {
			out = dueDateOutput{
				DueDate:    due.ISO(),
				Original:   due.Original,
				Confidence: due.Confidence,
			}
		}
		return printJSON(out)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	text, engine, err := readDocumentText(ctx, input, true, log)
	if err != nil {
		return err
	}

	record := boleto.ExtractPaymentInfo(text)

	// Results are persisted best-effort; a broken returns dir must not
	// swallow the answer.
	if store, err := results.NewStore(cfg.ReturnsDir); err != nil {
		log.Warn().Err(err).Msg("Failed to open returns directory")
	} else {
		if _, err := store.SaveExtraction(record); err != nil {
			log.Warn().Err(err).Msg("Failed to save extraction")
		}
		if !store.IsDuplicateTranscription(text) {
			tr := &results.Transcription{Transcricao: text, Arquivo: input, Engine: engine}
			if _, err := store.SaveTranscription(tr); err != nil {
				log.Warn().Err(err).Msg("Failed to save transcription")
			}
		}
	}

	out := dueDateOutput{DueDate: record.DataVencimento}
	if record.Validacoes.DataVencimento.Valido {
		out.Confidence = record.Validacoes.DataVencimento.Confianca
	}
	return printJSON(out)
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
