package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"studymap/internal/domain"
	"studymap/pkg/logger"
)

// Generator produces raw model output for a prompt. Client implements
// it; tests substitute fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier turns study sessions into validated annotations.
type Classifier struct {
	backend Generator
	logger  *zap.Logger
}

// NewClassifier creates a classifier on top of the given backend.
func NewClassifier(backend Generator) *Classifier {
	return &Classifier{backend: backend, logger: logger.Get()}
}

// ClassifyEntry asks the backend to classify a new study session against
// the user's existing entries and validates the result. Connections may
// only reference ids present in existing.
func (c *Classifier) ClassifyEntry(ctx context.Context, topic string, skills []string, summary string, existing []domain.Entry) (*Annotation, error) {
	prompt := buildClassifyPrompt(topic, skills, summary, existing)

	raw, err := c.backend.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ann, err := ParseAnnotation(raw, knownIDs(existing))
	if err != nil {
		return nil, err
	}

	if ann.DroppedConnections > 0 || ann.DroppedBlindspots > 0 {
		c.logger.Warn("Dropped invalid annotation items",
			zap.Int("connections", ann.DroppedConnections),
			zap.Int("blindspots", ann.DroppedBlindspots),
		)
	}
	return ann, nil
}

// EnhanceNotes asks the backend to rewrite a summary as polished notes.
func (c *Classifier) EnhanceNotes(ctx context.Context, topic string, skills []string, summary string) (string, error) {
	raw, err := c.backend.Generate(ctx, buildEnhancePrompt(topic, skills, summary))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// knownIDs builds the admission set for connection targets.
func knownIDs(entries []domain.Entry) map[int64]bool {
	known := make(map[int64]bool, len(entries))
	for _, e := range entries {
		known[e.ID] = true
	}
	return known
}
