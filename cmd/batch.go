package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"boleto-tools/internal/boleto"
	"boleto-tools/internal/config"
	"boleto-tools/internal/logger"
	"boleto-tools/internal/ocr"
	"boleto-tools/internal/results"
	"boleto-tools/internal/sheets"
	"boleto-tools/pkg/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Process all boletos in a folder and optionally export to Google Sheets",
	Long: `Process every boleto document in a folder in parallel.

Each PDF, image or text file is OCRed (when needed), run through the
field extraction and validation, and saved as extracao_N.json in the
returns directory. With a configured sheet URL the results are also
appended to a Google Sheet, one row per file.

Required environment variables (OCR input only):
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string

Optional environment variables:
  GOOGLE_SHEET_URL - Google Sheets URL to write results
  GOOGLE_SHEET_WORKSHEET - Worksheet name (default: Boletos)
  RETURNS_DIR - Directory for result files (default: retornos)
  BATCH_WORKERS - Number of parallel workers (default: 4)`,
	Example: `  # Process a folder of boletos
  boleto batch ./boletos

  # Process and export to the configured Google Sheet
  boleto batch ./boletos --sheet

  # Only validate, don't write result files
  boleto batch ./boletos --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchJob is one document handed to a worker.
type batchJob struct {
	FilePath string
	Index    int
}

// batchOutcome is the per-file result collected from the workers.
type batchOutcome struct {
	Filename string
	Record   *models.PaymentRecord
	Text     string
	Engine   string
	Error    error
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("sheet", false, "Append results to the Google Sheet from GOOGLE_SHEET_URL")
	batchCmd.Flags().Bool("dry-run", false, "Process files but don't write result files or sheets")
	batchCmd.Flags().Bool("no-clean", false, "Skip the ChatGPT OCR cleanup pass")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	folderPath := args[0]
	useSheet, _ := cmd.Flags().GetBool("sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noClean, _ := cmd.Flags().GetBool("no-clean")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	files, err := findBoletoFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to list folder: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("Nenhum arquivo de boleto encontrado na pasta.")
		return nil
	}

	log.Info().
		Str("folder", folderPath).
		Int("files", len(files)).
		Int("workers", cfg.BatchWorkers).
		Bool("dry_run", dryRun).
		Msg("Starting batch processing")

	fmt.Printf("Processando %d arquivos com %d workers...\n\n", len(files), cfg.BatchWorkers)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	outcomes := processBatch(ctx, files, cfg.BatchWorkers, !noClean, log)

	validCount := 0
	invalidCount := 0
	errorCount := 0
	for _, outcome := range outcomes {
		switch {
		case outcome.Error != nil:
			errorCount++
		case outcome.Record != nil && outcome.Record.BoletoValido:
			validCount++
		default:
			invalidCount++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Válidos: %d\n", validCount)
	fmt.Printf("Inválidos: %d\n", invalidCount)
	if errorCount > 0 {
		fmt.Printf("Erros: %d\n", errorCount)
	}
	fmt.Println(strings.Repeat("=", 50))

	if !dryRun {
		if err := saveBatchResults(outcomes, cfg.ReturnsDir, log); err != nil {
			return err
		}
	}

	if useSheet && !dryRun {
		if cfg.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --sheet")
		}

		fmt.Println("Escrevendo resultados no Google Sheet...")

		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets service: %w", err)
		}

		sheetResults := make([]sheets.ExtractionResult, len(outcomes))
		for i, outcome := range outcomes {
			sheetResults[i] = sheets.ExtractionResult{
				Filename: outcome.Filename,
				Record:   outcome.Record,
				Error:    outcome.Error,
			}
		}

		if err := sheetsService.AppendRecords(ctx, sheetResults, cfg.GoogleSheetWorksheet); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}

		fmt.Printf("Planilha: %s\n", cfg.GoogleSheetWorksheet)
		fmt.Printf("URL: %s\n", cfg.GoogleSheetURL)
	}

	log.Info().
		Int("total", len(files)).
		Int("valid", validCount).
		Int("invalid", invalidCount).
		Int("errors", errorCount).
		Msg("Batch processing completed")

	return nil
}

// findBoletoFiles lists every supported document in the folder tree.
func findBoletoFiles(folderPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(info.Name()), ".txt") || ocr.MimeTypeForPath(path) != "" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// processBatch runs the extraction over all files with a worker pool.
// Results keep the input order regardless of completion order.
func processBatch(ctx context.Context, files []string, numWorkers int, clean bool, log zerolog.Logger) []batchOutcome {
	jobs := make(chan batchJob, len(files))
	outcomes := make([]batchOutcome, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", job.FilePath).
					Msg("Worker processing file")

				outcome := processBoletoFile(ctx, job.FilePath, clean, log)
				outcomes[job.Index] = outcome

				mu.Lock()
				processedCount++
				status := "✅"
				if outcome.Error != nil {
					status = "❌"
				} else if outcome.Record == nil || !outcome.Record.BoletoValido {
					status = "⚠️"
				}
				fmt.Printf("[%d/%d] %s - %s", processedCount, len(files), outcome.Filename, status)
				if outcome.Error != nil {
					fmt.Printf(" (%s)", outcome.Error.Error())
				} else if outcome.Record != nil && outcome.Record.Valor != nil {
					fmt.Printf(" (R$ %.2f)", *outcome.Record.Valor)
				}
				fmt.Println()
				mu.Unlock()
			}
		}(w)
	}

	for i, file := range files {
		jobs <- batchJob{FilePath: file, Index: i}
	}
	close(jobs)

	wg.Wait()

	return outcomes
}

// processBoletoFile extracts a single document.
func processBoletoFile(ctx context.Context, path string, clean bool, log zerolog.Logger) batchOutcome {
	outcome := batchOutcome{Filename: filepath.Base(path)}

	text, engine, err := readDocumentText(ctx, path, clean, log)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	outcome.Text = text
	outcome.Engine = engine
	outcome.Record = boleto.ExtractPaymentInfo(text)
	return outcome
}

// saveBatchResults persists every successful outcome to the returns
// directory.
func saveBatchResults(outcomes []batchOutcome, returnsDir string, log zerolog.Logger) error {
	store, err := results.NewStore(returnsDir)
	if err != nil {
		return fmt.Errorf("failed to open returns directory: %w", err)
	}

	saved := 0
	for _, outcome := range outcomes {
		if outcome.Error != nil || outcome.Record == nil {
			continue
		}
		if _, err := store.SaveExtraction(outcome.Record); err != nil {
			log.Warn().Err(err).Str("file", outcome.Filename).Msg("Failed to save extraction")
			continue
		}
		if outcome.Text != "" && !store.IsDuplicateTranscription(outcome.Text) {
			tr := &results.Transcription{Transcricao: outcome.Text, Arquivo: outcome.Filename, Engine: outcome.Engine}
			if _, err := store.SaveTranscription(tr); err != nil {
				log.Warn().Err(err).Str("file", outcome.Filename).Msg("Failed to save transcription")
			}
		}
		saved++
	}

	fmt.Printf("Resultados salvos em %s (%d arquivos)\n", returnsDir, saved)
	return nil
}
