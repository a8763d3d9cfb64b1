// Package ocr extracts document text from boleto files (PDFs and
// scanned images) using Google Cloud services.
//
// Two engines are provided: Google Cloud Vision document text detection
// and a Google Document AI OCR processor. An EngineChain composes them
// as an ordered list of strategies, tried until one yields non-empty
// text, so a failure or an empty read from one provider falls through
// to the next instead of aborting the extraction.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID (Document AI engine)
//
// Cloud Vision API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous PDF processing
//   - Supported formats: PDF, TIFF, PNG, JPEG, BMP
package ocr

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Engine is a single OCR text extraction backend.
type Engine interface {
	// Name identifies the engine in logs and results.
	Name() string

	// ExtractText reads a document and returns its text content.
	// mimeType tells the engine how to interpret the data (see
	// MimeTypeForPath).
	ExtractText(ctx context.Context, data io.Reader, mimeType string) (string, error)

	// ExtractTextWithMetadata reads a document and returns text plus
	// confidence and processing metadata.
	ExtractTextWithMetadata(ctx context.Context, data io.Reader, mimeType string) (*Result, error)
}

// Result contains extracted text with processing metadata.
type Result struct {
	// Text is the extracted text content, pages concatenated in
	// reading order.
	Text string `json:"text"`

	// Engine is the name of the engine that produced the text.
	Engine string `json:"engine"`

	// PageCount is the number of pages processed (PDF input only).
	PageCount int `json:"page_count,omitempty"`

	// Confidence is the average confidence score across all detected
	// text (0.0 to 1.0), when the engine reports one.
	Confidence float32 `json:"confidence,omitempty"`

	// LanguageCodes contains the detected languages in the document.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is when the extraction completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the extraction took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Supported MIME types.
const (
	MimePDF  = "application/pdf"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeTIFF = "image/tiff"
	MimeBMP  = "image/bmp"
)

// MimeTypeForPath maps a file extension to the MIME type the engines
// accept. Returns "" for unsupported extensions.
func MimeTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MimePDF
	case ".png":
		return MimePNG
	case ".jpg", ".jpeg":
		return MimeJPEG
	case ".tif", ".tiff":
		return MimeTIFF
	case ".bmp":
		return MimeBMP
	}
	return ""
}
