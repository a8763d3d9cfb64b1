package postocr

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"boleto-tools/internal/logger"
)

// CleanerConfig configures the LLM cleanup pass.
type CleanerConfig struct {
	Enabled     bool    // POST_OCR_ENABLED
	Model       string  // gpt-4o-mini, gpt-4o
	Temperature float32 // low temperature keeps digits stable
	MaxTokens   int
}

// Cleaner improves OCR text using ChatGPT. All failures are soft: the
// original text is returned whenever the API is unavailable, returns an
// error, or produces an empty response.
type Cleaner struct {
	client *openai.Client
	config CleanerConfig
	log    zerolog.Logger
}

// NewCleaner creates a cleaner from the environment. A nil client (no
// OPENAI_API_KEY) is valid: Clean then passes text through unchanged.
func NewCleaner() *Cleaner {
	config := CleanerConfig{
		Enabled:     os.Getenv("POST_OCR_ENABLED") != "false",
		Model:       os.Getenv("OPENAI_MODEL"),
		Temperature: 0.1,
		MaxTokens:   4000,
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}

	var client *openai.Client
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		client = openai.NewClient(apiKey)
	}

	return NewCleanerWithClient(client, config)
}

// NewCleanerWithClient creates a cleaner with explicit dependencies
// (for testing).
func NewCleanerWithClient(client *openai.Client, config CleanerConfig) *Cleaner {
	return &Cleaner{
		client: client,
		config: config,
		log:    logger.WithComponent("post-ocr"),
	}
}

// Clean sends the OCR text through ChatGPT for cleanup and returns the
// improved text. On any error, or when the pass is disabled or
// unconfigured, the input comes back unchanged.
func (c *Cleaner) Clean(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if !c.config.Enabled || c.client == nil {
		return text
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Você corrige texto OCR de boletos bancários brasileiros. " +
					"Mantenha apenas o conteúdo útil do boleto, sem comentários, " +
					"sem notas e sem formatação adicional. Corrija erros " +
					"ortográficos típicos de OCR e preserve números e datas " +
					"exatamente como aparecem.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "TEXTO OCR:\n" + text,
			},
		},
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("ChatGPT cleanup failed, keeping original text")
		return text
	}
	if len(resp.Choices) == 0 {
		c.log.Warn().Msg("ChatGPT cleanup returned no choices, keeping original text")
		return text
	}

	cleaned := strings.TrimSpace(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return text
	}

	c.log.Debug().
		Int("original_length", len(text)).
		Int("cleaned_length", len(cleaned)).
		Str("model", c.config.Model).
		Msg("OCR text cleaned")
	return cleaned
}
