package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages for synchronous PDF processing
	MaxPagesSync = 5
)

// VisionEngine implements Engine using Google Cloud Vision document
// text detection. PDFs and TIFFs go through file annotation; single
// images go through document text detection directly.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine creates a Vision OCR engine with credentials from the
// environment: GOOGLE_CREDENTIALS inline JSON, a
// GOOGLE_APPLICATION_CREDENTIALS file path, or application default
// credentials, in that order.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient creates a Vision engine with an explicit
// client (for testing).
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

// Name identifies the engine.
func (g *VisionEngine) Name() string { return "google-vision" }

// ExtractText extracts text from a document.
func (g *VisionEngine) ExtractText(ctx context.Context, data io.Reader, mimeType string) (string, error) {
	result, err := g.ExtractTextWithMetadata(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractTextWithMetadata extracts text with confidence and processing
// metadata.
func (g *VisionEngine) ExtractTextWithMetadata(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	const op = "ExtractTextWithMetadata"
	startTime := time.Now()

	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read document data")
	}
	if len(raw) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(raw)))
	}

	var result *Result
	switch mimeType {
	case MimePDF, MimeTIFF:
		result, err = g.annotateFile(ctx, raw, mimeType)
	case MimePNG, MimeJPEG, MimeBMP:
		result, err = g.annotateImage(ctx, raw)
	default:
		return nil, WrapOCRError(op, ErrUnsupportedFormat, fmt.Sprintf("mime type %q", mimeType))
	}
	if err != nil {
		return nil, err
	}

	result.Engine = g.Name()
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// annotateFile runs document text detection over a multi-page file
// (PDF/TIFF) passed as inline content.
func (g *VisionEngine) annotateFile(ctx context.Context, raw []byte, mimeType string) (*Result, error) {
	const op = "annotateFile"

	if mimeType == MimePDF && (len(raw) < 4 || string(raw[:4]) != "%PDF") {
		return nil, WrapOCRError(op, ErrInvalidDocument, "missing PDF header")
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  raw,
					MimeType: mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	return collectFileResponse(fileResp)
}

// annotateImage runs document text detection over a single image.
func (g *VisionEngine) annotateImage(ctx context.Context, raw []byte) (*Result, error) {
	const op = "annotateImage"

	annotation, err := g.client.DetectDocumentText(ctx, &visionpb.Image{Content: raw}, nil)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, "no text detected in image")
	}

	var languages []string
	langSet := make(map[string]bool)
	for _, page := range annotation.Pages {
		if page.Property == nil {
			continue
		}
		for _, lang := range page.Property.DetectedLanguages {
			if lang.LanguageCode != "" && !langSet[lang.LanguageCode] {
				langSet[lang.LanguageCode] = true
				languages = append(languages, lang.LanguageCode)
			}
		}
	}

	return &Result{
		Text:          annotation.Text,
		PageCount:     1,
		LanguageCodes: languages,
	}, nil
}

// collectFileResponse aggregates per-page annotations into a Result.
func collectFileResponse(fileResp *visionpb.AnnotateFileResponse) (*Result, error) {
	const op = "collectFileResponse"

	if len(fileResp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrEmptyDocument, "no pages in response")
	}

	pageCount := len(fileResp.Responses)
	if pageCount > MaxPagesSync {
		return nil, WrapOCRError(op, ErrTooManyPages, fmt.Sprintf("document has %d pages", pageCount))
	}

	var allText strings.Builder
	var confidenceSum float32
	var confidenceCount int
	langSet := make(map[string]bool)

	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("error processing page %d: %s", pageIdx+1, page.Error.Message))
		}
		if page.FullTextAnnotation == nil {
			continue
		}

		if pageIdx > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(page.FullTextAnnotation.Text)

		for _, annotation := range page.TextAnnotations {
			if annotation.Confidence > 0 {
				confidenceSum += annotation.Confidence
				confidenceCount++
			}
		}
		for _, pageInfo := range page.FullTextAnnotation.Pages {
			if pageInfo.Property == nil {
				continue
			}
			for _, lang := range pageInfo.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					langSet[lang.LanguageCode] = true
				}
			}
		}
	}

	text := allText.String()
	if strings.TrimSpace(text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, "no text detected")
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}
	var languages []string
	for lang := range langSet {
		languages = append(languages, lang)
	}

	return &Result{
		Text:          text,
		PageCount:     pageCount,
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}, nil
}

// Close closes the underlying Vision client.
func (g *VisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
