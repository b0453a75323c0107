package saleimport

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped sale files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based sale loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "sale-loader").Logger(),
	}
}

// Load reads a gzipped CSV sale file.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]Row, error) {
	l.logger.Info().Str("file", filePath).Msg("loading sale file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open sale file")
		return nil, fmt.Errorf("failed to open sale file %s: %w", filePath, err)
	}
	defer file.Close()

	rows, err := Parse(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to parse sale file")
		return nil, fmt.Errorf("failed to parse sale file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("rows_loaded", len(rows)).
		Msg("sale file loaded successfully")

	return rows, nil
}
