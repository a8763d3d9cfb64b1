package ocr

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"boleto-tools/internal/logger"
)

// EngineChain tries an ordered list of OCR engines until one yields
// non-empty text. The order encodes preference, not equivalence: the
// first engine is expected to handle most documents, later ones exist
// for degraded scans the earlier ones read as blank.
type EngineChain struct {
	engines []Engine
	log     zerolog.Logger
}

// NewEngineChain builds a chain over the given engines, tried in order.
func NewEngineChain(engines ...Engine) *EngineChain {
	return &EngineChain{
		engines: engines,
		log:     logger.WithComponent("ocr-chain"),
	}
}

// NewDefaultEngineChain creates the standard chain from the
// environment: Vision first, Document AI second when configured.
// Returns an error only when no engine at all can be constructed.
func NewDefaultEngineChain(ctx context.Context) (*EngineChain, error) {
	const op = "NewDefaultEngineChain"
	log := logger.WithComponent("ocr-chain")

	var engines []Engine

	visionEngine, err := NewVisionEngine(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Vision engine unavailable")
	} else {
		engines = append(engines, visionEngine)
	}

	docaiEngine, err := NewDocumentAIEngine(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Document AI engine unavailable")
	} else {
		engines = append(engines, docaiEngine)
	}

	if len(engines) == 0 {
		return nil, NewOCRError(op, ErrMissingCredentials, "no OCR engine could be configured")
	}

	return NewEngineChain(engines...), nil
}

// Name identifies the chain.
func (c *EngineChain) Name() string { return "engine-chain" }

// ExtractText runs the chain and returns the first non-empty text.
func (c *EngineChain) ExtractText(ctx context.Context, data io.Reader, mimeType string) (string, error) {
	result, err := c.ExtractTextWithMetadata(ctx, data, mimeType)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractTextWithMetadata runs each engine in order over the same
// document bytes and returns the first non-empty result. Engine
// failures are logged and fall through; only when every engine fails is
// an error returned.
func (c *EngineChain) ExtractTextWithMetadata(ctx context.Context, data io.Reader, mimeType string) (*Result, error) {
	const op = "ExtractTextWithMetadata"

	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read document data")
	}

	var lastErr error
	for _, engine := range c.engines {
		if ctx.Err() != nil {
			return nil, WrapOCRError(op, ctx.Err(), "context done before engine ran")
		}

		result, err := engine.ExtractTextWithMetadata(ctx, bytes.NewReader(raw), mimeType)
		if err != nil {
			c.log.Warn().
				Err(err).
				Str("engine", engine.Name()).
				Msg("OCR engine failed, trying next")
			lastErr = err
			continue
		}
		if strings.TrimSpace(result.Text) == "" {
			c.log.Warn().
				Str("engine", engine.Name()).
				Msg("OCR engine returned empty text, trying next")
			lastErr = NewOCRError(op, ErrEmptyDocument, engine.Name())
			continue
		}

		c.log.Info().
			Str("engine", engine.Name()).
			Int("text_length", len(result.Text)).
			Msg("OCR extraction succeeded")
		return result, nil
	}

	if lastErr != nil {
		return nil, WrapOCRError(op, ErrAllEnginesFailed, lastErr.Error())
	}
	return nil, NewOCRError(op, ErrAllEnginesFailed, "chain has no engines")
}
