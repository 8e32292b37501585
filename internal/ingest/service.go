// Package ingest coordinates storing a study session and annotating it
// through the AI backend. The entry always persists; annotation failures
// degrade to an unannotated entry.
package ingest

import (
	"context"

	"go.uber.org/zap"

	"studymap/internal/ai"
	"studymap/internal/domain"
	"studymap/internal/store"
	"studymap/pkg/logger"
)

// Classifier is the slice of the AI layer the service needs.
type Classifier interface {
	ClassifyEntry(ctx context.Context, topic string, skills []string, summary string, existing []domain.Entry) (*ai.Annotation, error)
	EnhanceNotes(ctx context.Context, topic string, skills []string, summary string) (string, error)
}

// Service wires the store and the AI classifier together.
type Service struct {
	store      *store.Store
	classifier Classifier
	logger     *zap.Logger
}

// New creates the ingestion service.
func New(st *store.Store, classifier Classifier) *Service {
	return &Service{store: st, classifier: classifier, logger: logger.Get()}
}

// Result reports what one ingestion or reclassification stored.
// AnnotationErr is set when the entry was saved but the AI step failed.
type Result struct {
	EntryID         int64                  `json:"entry_id"`
	Classification  *domain.Classification `json:"classification"`
	Connections     []domain.Connection    `json:"connections"`
	Blindspots      []domain.Blindspot     `json:"blindspots"`
	EnhancedSummary string                 `json:"enhanced_summary,omitempty"`
	AnnotationErr   error                  `json:"-"`
}

// Ingest classifies and stores a new study session. The snapshot of
// existing entries is taken before the insert, so connections can never
// reference the entry being created.
func (s *Service) Ingest(ctx context.Context, topic string, skills []string, summary string) (*Result, error) {
	existing, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	ann, annErr := s.classifier.ClassifyEntry(ctx, topic, skills, summary, existing)
	if annErr != nil {
		s.logger.Warn("AI classification failed, storing entry without annotation",
			zap.String("topic", topic),
			zap.Error(annErr),
		)
	}

	topicID, err := s.store.GetOrCreateTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	var skillIDs []int64
	for _, name := range skills {
		id, err := s.store.GetOrCreateSkill(ctx, name)
		if err != nil {
			return nil, err
		}
		skillIDs = append(skillIDs, id)
	}

	var cls *domain.Classification
	if ann != nil {
		cls = ann.Classification
	}
	entryID, err := s.store.CreateEntry(ctx, topicID, summary, skillIDs, cls)
	if err != nil {
		return nil, err
	}

	result := &Result{EntryID: entryID, AnnotationErr: annErr}
	if ann != nil {
		result.Classification = ann.Classification
		result.EnhancedSummary = ann.EnhancedSummary
		s.applyAnnotation(ctx, entryID, ann)
		s.collectStored(ctx, entryID, result)
	}

	s.logger.Info("Ingested entry",
		zap.Int64("entry_id", entryID),
		zap.String("topic", topic),
		zap.Bool("annotated", ann != nil),
	)
	return result, nil
}

// EnhanceEntry rewrites an entry's summary through the AI backend and
// stores the result.
func (s *Service) EnhanceEntry(ctx context.Context, entryID int64) (string, error) {
	e, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return "", err
	}

	enhanced, err := s.classifier.EnhanceNotes(ctx, e.TopicTitle, e.SkillList(), e.Summary)
	if err != nil {
		return "", err
	}
	if err := s.store.AttachEnhancedSummary(ctx, entryID, enhanced); err != nil {
		return "", err
	}
	return enhanced, nil
}

// Reclassify re-runs annotation for an existing entry. Context for the
// AI call is every entry except this one, so connections to itself are
// impossible. Unlike Ingest, a failed AI call is a hard error here since
// there is nothing else to do.
func (s *Service) Reclassify(ctx context.Context, entryID int64) (*Result, error) {
	e, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	others := make([]domain.Entry, 0, len(all))
	for _, other := range all {
		if other.ID != entryID {
			others = append(others, other)
		}
	}

	ann, err := s.classifier.ClassifyEntry(ctx, e.TopicTitle, e.SkillList(), e.Summary, others)
	if err != nil {
		return nil, err
	}

	if ann.Classification != nil {
		if err := s.store.UpdateClassification(ctx, entryID, ann.Classification); err != nil {
			return nil, err
		}
	}
	s.applyAnnotation(ctx, entryID, ann)

	result := &Result{
		EntryID:         entryID,
		Classification:  ann.Classification,
		EnhancedSummary: ann.EnhancedSummary,
	}
	s.collectStored(ctx, entryID, result)

	s.logger.Info("Reclassified entry",
		zap.Int64("entry_id", entryID),
		zap.Int("connections", len(result.Connections)),
		zap.Int("blindspots", len(result.Blindspots)),
	)
	return result, nil
}

// Unclassified returns the ids of entries with no stored classification.
func (s *Service) Unclassified(ctx context.Context) ([]int64, error) {
	return s.store.UnclassifiedEntryIDs(ctx)
}

// applyAnnotation stores connections, blindspots, and the enhanced
// summary. Each item commits independently; one failure never rolls
// back the others.
func (s *Service) applyAnnotation(ctx context.Context, entryID int64, ann *ai.Annotation) {
	for _, conn := range ann.Connections {
		err := s.store.AddConnection(ctx, entryID, conn.EntryID, conn.Relationship,
			conn.Strength, nullIfEmpty(conn.Explanation))
		if err != nil {
			s.logger.Warn("Skipped connection",
				zap.Int64("entry_id", entryID),
				zap.Int64("target", conn.EntryID),
				zap.Error(err),
			)
		}
	}

	for _, bs := range ann.Blindspots {
		err := s.store.AddBlindspot(ctx, entryID, bs.Suggestion,
			nullIfEmpty(bs.Category), nullIfEmpty(bs.WhyImportant), nullIfEmpty(bs.HowItHelps))
		if err != nil {
			s.logger.Warn("Skipped blindspot",
				zap.Int64("entry_id", entryID),
				zap.String("suggestion", bs.Suggestion),
				zap.Error(err),
			)
		}
	}

	if ann.EnhancedSummary != "" {
		if err := s.store.AttachEnhancedSummary(ctx, entryID, ann.EnhancedSummary); err != nil {
			s.logger.Warn("Failed to attach enhanced summary",
				zap.Int64("entry_id", entryID),
				zap.Error(err),
			)
		}
	}
}

// collectStored fills the result with the rows actually written for
// this entry. Listing failures leave the slices empty; the writes
// themselves already succeeded.
func (s *Service) collectStored(ctx context.Context, entryID int64, result *Result) {
	result.Connections = make([]domain.Connection, 0)
	result.Blindspots = make([]domain.Blindspot, 0)

	if conns, err := s.store.ListConnections(ctx); err == nil {
		for _, c := range conns {
			if c.SourceEntryID == entryID {
				result.Connections = append(result.Connections, c)
			}
		}
	} else {
		s.logger.Warn("Listing connections after ingest failed", zap.Error(err))
	}

	if spots, err := s.store.ListBlindspots(ctx); err == nil {
		for _, b := range spots {
			if b.EntryID == entryID {
				result.Blindspots = append(result.Blindspots, b)
			}
		}
	} else {
		s.logger.Warn("Listing blindspots after ingest failed", zap.Error(err))
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
