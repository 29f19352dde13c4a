// Package chunker splits raw text into overlapping fixed-size segments.
package chunker

import (
	"fmt"

	"github.com/parchment-ai/parchment/internal/domain"
)

// Config controls the sliding-window segmentation.
type Config struct {
	// Size is the maximum chunk length in runes.
	Size int
	// Overlap is the number of runes shared between consecutive chunks.
	// Must be strictly smaller than Size.
	Overlap int
}

// DefaultConfig provides sane defaults for chunking.
func DefaultConfig() Config {
	return Config{
		Size:    1200,
		Overlap: 200,
	}
}

// Validate checks the chunking parameters up front; a window whose overlap
// reaches its size would never advance.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d: %w", c.Size, domain.ErrInvalidChunkConfig)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("chunk overlap cannot be negative, got %d: %w", c.Overlap, domain.ErrInvalidChunkConfig)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d: %w", c.Overlap, c.Size, domain.ErrInvalidChunkConfig)
	}
	return nil
}

// Split segments text into chunks of at most cfg.Size runes, each sharing
// cfg.Overlap runes with its predecessor. The final chunk may be shorter.
// Empty text yields zero chunks.
func Split(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	chunks := make([]string, 0, len(runes)/cfg.Size+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))

		if end == len(runes) {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			// Guarded by Validate, but never loop without forward progress.
			return nil, fmt.Errorf("no forward progress at offset %d: %w", start, domain.ErrInvalidChunkConfig)
		}
		start = next
	}

	return chunks, nil
}
