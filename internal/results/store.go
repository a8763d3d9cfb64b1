// Package results persists extraction output as numbered JSON files in
// a returns directory. Extractions are written as extracao_N.json and
// raw transcriptions as transcricao_N.json, with N growing per file
// kind so reruns never overwrite earlier results.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"boleto-tools/internal/logger"
	"boleto-tools/pkg/models"
)

// ErrInvalidDir is returned when the returns directory cannot be
// created or is not a directory.
var ErrInvalidDir = errors.New("invalid returns directory")

// Transcription is the persisted form of a raw OCR text.
type Transcription struct {
	Transcricao string `json:"transcricao"`
	Arquivo     string `json:"arquivo,omitempty"`
	Engine      string `json:"engine,omitempty"`
}

// Store writes extraction results and transcriptions to a directory.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates the returns directory if needed and returns a store
// over it.
func NewStore(dir string) (*Store, error) {
	const op = "NewStore"

	if dir == "" {
		return nil, fmt.Errorf("%s: %w: empty path", op, ErrInvalidDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidDir, err)
	}

	return &Store{
		dir: dir,
		log: logger.WithComponent("results"),
	}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// SaveExtraction writes a payment record as the next extracao_N.json
// and returns the path written.
func (s *Store) SaveExtraction(record *models.PaymentRecord) (string, error) {
	const op = "SaveExtraction"

	path := s.nextPath("extracao")
	if err := s.writeJSON(path, record); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().Str("path", path).Bool("boleto_valido", record.BoletoValido).Msg("Extraction saved")
	return path, nil
}

// SaveTranscription writes raw OCR text as the next transcricao_N.json
// and returns the path written.
func (s *Store) SaveTranscription(tr *Transcription) (string, error) {
	const op = "SaveTranscription"

	path := s.nextPath("transcricao")
	if err := s.writeJSON(path, tr); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().Str("path", path).Int("text_length", len(tr.Transcricao)).Msg("Transcription saved")
	return path, nil
}

// LastTranscription returns the most recent saved transcription, or
// nil when none exists.
func (s *Store) LastTranscription() (*Transcription, error) {
	const op = "LastTranscription"

	var lastPath string
	for n := 1; ; n++ {
		candidate := filepath.Join(s.dir, fmt.Sprintf("transcricao_%d.json", n))
		if _, err := os.Stat(candidate); err != nil {
			break
		}
		lastPath = candidate
	}
	if lastPath == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(lastPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var tr Transcription
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, lastPath, err)
	}
	return &tr, nil
}

// IsDuplicateTranscription reports whether the exact text is already
// stored in some transcricao_N.json. Unreadable files are skipped
// rather than treated as errors.
func (s *Store) IsDuplicateTranscription(text string) bool {
	for n := 1; ; n++ {
		path := filepath.Join(s.dir, fmt.Sprintf("transcricao_%d.json", n))
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			continue
		}
		var tr Transcription
		if err := json.Unmarshal(raw, &tr); err != nil {
			continue
		}
		if tr.Transcricao == text {
			return true
		}
	}
	return false
}

// nextPath returns the first unused prefix_N.json path, counting from 1.
func (s *Store) nextPath(prefix string) string {
	for n := 1; ; n++ {
		candidate := filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", prefix, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// writeJSON marshals v with indentation and writes it to path.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
