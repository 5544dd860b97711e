// ABOUTME: Classification stage wrapping the LLM provider
// ABOUTME: Guarantees a non-empty parts list for every message
package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/soberpath/recall/internal/models"
)

// ClassifyProvider is the slice of the LLM client the classifier needs
type ClassifyProvider interface {
	Classify(ctx context.Context, text string) (models.ClassificationResult, error)
}

// Classifier turns raw messages into classified parts
type Classifier struct {
	provider ClassifyProvider
	log      zerolog.Logger
}

// NewClassifier creates a Classifier
func NewClassifier(provider ClassifyProvider, log zerolog.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		log:      log.With().Str("component", "classifier").Logger(),
	}
}

// Classify classifies a message. The result always has at least one
// part: format-level provider failures already degrade to the neutral
// fallback inside the client, and an empty parts list is treated the
// same way here. Availability errors propagate to the caller.
func (c *Classifier) Classify(ctx context.Context, text string) (models.ClassificationResult, error) {
	result, err := c.provider.Classify(ctx, text)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("classify: %w", err)
	}

	if len(result.Parts) == 0 {
		c.log.Warn().Msg("provider returned zero parts, falling back to neutral part")
		result = models.FallbackClassification(text)
	}

	c.log.Debug().Int("parts", len(result.Parts)).Strs("blocks", result.BlockTitles()).Msg("message classified")
	return result, nil
}
