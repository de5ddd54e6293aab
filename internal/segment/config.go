package segment

import "fmt"

// Config controls segmentation behavior.
type Config struct {
	MaxTokensPerChunk    int // Hard ceiling on tokens per pre-overlap chunk.
	OverlapTokens        int // Tokens copied from the previous chunk's tail.
	MinViableChunkTokens int // Chunks below this floor are dropped.
}

// DefaultConfig returns the standard budgets.
func DefaultConfig() Config {
	return Config{
		MaxTokensPerChunk:    1024,
		OverlapTokens:        100,
		MinViableChunkTokens: 50,
	}
}

// Validate rejects configurations that are caller programming errors. These
// fail before any document parsing begins, unlike malformed document content,
// which always degrades gracefully.
func (c Config) Validate() error {
	if c.MaxTokensPerChunk <= 0 {
		return fmt.Errorf("max tokens per chunk must be positive, got %d", c.MaxTokensPerChunk)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("overlap tokens must not be negative, got %d", c.OverlapTokens)
	}
	if c.MinViableChunkTokens < 0 {
		return fmt.Errorf("minimum viable chunk tokens must not be negative, got %d", c.MinViableChunkTokens)
	}
	if c.OverlapTokens >= c.MaxTokensPerChunk {
		return fmt.Errorf("overlap tokens (%d) must be smaller than max tokens per chunk (%d)",
			c.OverlapTokens, c.MaxTokensPerChunk)
	}
	return nil
}
