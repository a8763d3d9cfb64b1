// Package sheets appends boleto extraction results to a Google Sheet.
//
// Authentication uses a service account: GOOGLE_APPLICATION_CREDENTIALS
// (file path) or GOOGLE_CREDENTIALS (inline JSON). The target
// spreadsheet is identified by its full URL.
package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"boleto-tools/internal/logger"
	"boleto-tools/pkg/models"
)

// Service handles Google Sheets operations
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// RecordRow is the flattened form of one extraction written to a sheet
// row.
type RecordRow struct {
	Filename       string
	LinhaDigitavel string
	Vencimento     string
	Beneficiario   string
	CNPJ           string
	Valor          string
	Banco          string
	NossoNumero    string
	Valido         string
	Erro           string
	ProcessedAt    string
}

// NewSheetsService creates a new Google Sheets service
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	log := logger.WithComponent("sheets")

	// Extract spreadsheet ID from URL
	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}

	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	// Get Google credentials
	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	// Create Google Sheets service
	config, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	// Pattern for Google Sheets URLs
	re := regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	matches := re.FindStringSubmatch(url)

	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}

	return matches[1], nil
}

// ExtractionResult pairs a source file with its extraction outcome.
type ExtractionResult struct {
	Filename string
	Record   *models.PaymentRecord
	Error    error
}

// AppendRecords writes extraction results to the named sheet, creating
// the sheet and its header row if needed.
func (s *Service) AppendRecords(ctx context.Context, results []ExtractionResult, sheetName string) error {
	const op = "AppendRecords"

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(results)).
		Msg("Writing extraction results to Google Sheet")

	rows := s.convertResultsToRows(results)

	// Ensure sheet exists and get headers
	err := s.ensureSheetWithHeaders(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("%s: failed to ensure sheet exists: %w", op, err)
	}

	// Prepare values for batch update
	var values [][]interface{}
	for _, row := range rows {
		values = append(values, s.rowToValues(row))
	}

	// Write to sheet
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err = s.sheetsService.Spreadsheets.Values.Append(
		s.spreadsheetID,
		sheetName+"!A:K", // A to K covers all our columns
		valueRange,
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()

	if err != nil {
		return fmt.Errorf("%s: failed to append values to sheet: %w", op, err)
	}

	s.log.Info().
		Int("rows_written", len(values)).
		Msg("Successfully wrote extraction results to Google Sheet")

	return nil
}

// convertResultsToRows flattens extraction results into sheet rows.
func (s *Service) convertResultsToRows(results []ExtractionResult) []RecordRow {
	var rows []RecordRow
	processedAt := time.Now().Format("02/01/2006 15:04:05")

	for _, result := range results {
		row := RecordRow{
			Filename:    result.Filename,
			ProcessedAt: processedAt,
		}

		// Handle error cases
		if result.Error != nil {
			row.Valido = "NÃO"
			row.Erro = result.Error.Error()
			rows = append(rows, row)
			continue
		}
		if result.Record == nil {
			row.Valido = "NÃO"
			row.Erro = "sem resultado"
			rows = append(rows, row)
			continue
		}

		record := result.Record
		row.LinhaDigitavel = record.LinhaDigitavel
		row.Vencimento = record.DataVencimento
		row.Beneficiario = record.Beneficiario
		row.CNPJ = record.CNPJBeneficiario
		row.Banco = record.BancoEmissor
		row.NossoNumero = record.NossoNumero
		if record.Valor != nil {
			row.Valor = fmt.Sprintf("%.2f", *record.Valor)
		}
		if record.BoletoValido {
			row.Valido = "SIM"
		} else {
			row.Valido = "NÃO"
			row.Erro = record.Validacoes.LinhaDigitavel.Erro
		}

		rows = append(rows, row)
	}

	return rows
}

// rowToValues converts RecordRow to interface{} slice for Google Sheets
func (s *Service) rowToValues(row RecordRow) []interface{} {
	return []interface{}{
		row.Filename,       // A: Arquivo
		row.LinhaDigitavel, // B: Linha Digitável
		row.Vencimento,     // C: Vencimento
		row.Beneficiario,   // D: Beneficiário
		row.CNPJ,           // E: CNPJ/CPF
		row.Valor,          // F: Valor
		row.Banco,          // G: Banco
		row.NossoNumero,    // H: Nosso Número
		row.Valido,         // I: Válido
		row.Erro,           // J: Erro
		row.ProcessedAt,    // K: Processado em
	}
}

// ensureSheetWithHeaders ensures the sheet exists and has proper headers
func (s *Service) ensureSheetWithHeaders(ctx context.Context, sheetName string) error {
	const op = "ensureSheetWithHeaders"

	// Check if sheet exists
	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}

	// Look for existing sheet
	var sheetExists bool
	var sheetID int64
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			sheetExists = true
			sheetID = sheet.Properties.SheetId
			break
		}
	}

	// Create sheet if it doesn't exist
	if !sheetExists {
		s.log.Info().Str("sheet", sheetName).Msg("Creating new sheet")

		addSheetReq := &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: sheetName,
			},
		}

		batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{AddSheet: addSheetReq},
			},
		}

		resp, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s: failed to create sheet: %w", op, err)
		}

		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}

	// Check if headers exist
	headerRange := fmt.Sprintf("%s!A1:K1", sheetName)
	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get headers: %w", op, err)
	}

	// Add headers if they don't exist or are empty
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		s.log.Info().Str("sheet", sheetName).Msg("Adding headers to sheet")

		headers := [][]interface{}{
			{
				"Arquivo", "Linha Digitável", "Vencimento", "Beneficiário",
				"CNPJ/CPF", "Valor", "Banco", "Nosso Número", "Válido",
				"Erro", "Processado em",
			},
		}

		valueRange := &sheets.ValueRange{Values: headers}
		_, err = s.sheetsService.Spreadsheets.Values.Update(
			s.spreadsheetID,
			headerRange,
			valueRange,
		).ValueInputOption("RAW").Context(ctx).Do()

		if err != nil {
			return fmt.Errorf("%s: failed to add headers: %w", op, err)
		}

		// Format headers (bold)
		err = s.formatHeaders(ctx, sheetID)
		if err != nil {
			s.log.Warn().Err(err).Msg("Failed to format headers, continuing anyway")
		}
	}

	return nil
}

// formatHeaders makes the header row bold and applies basic formatting
func (s *Service) formatHeaders(ctx context.Context, sheetID int64) error {
	const op = "formatHeaders"

	requests := []*sheets.Request{
		// Make header row bold
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   11, // A to K
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
						BackgroundColor: &sheets.Color{
							Red:   0.9,
							Green: 0.9,
							Blue:  0.9,
						},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		// Auto-resize columns
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   11,
				},
			},
		},
	}

	batchUpdateReq := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	_, err := s.sheetsService.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateReq).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to format headers: %w", op, err)
	}

	return nil
}

// ReadRange reads values from a specified range in the spreadsheet
func (s *Service) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	const op = "ReadRange"

	s.log.Debug().
		Str("range", rangeSpec).
		Msg("Reading range from spreadsheet")

	resp, err := s.sheetsService.Spreadsheets.Values.Get(s.spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read range %s: %w", op, rangeSpec, err)
	}

	s.log.Debug().
		Int("rows", len(resp.Values)).
		Str("range", rangeSpec).
		Msg("Successfully read range from spreadsheet")

	return resp.Values, nil
}
