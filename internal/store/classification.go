package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"studymap/internal/domain"
)

// marshalClassification serializes a classification to its JSON column
// value. A nil classification stores as NULL.
func marshalClassification(c *domain.Classification) (any, error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling classification: %w", err)
	}
	return string(b), nil
}

// unmarshalClassification parses the ai_classification column. Blobs that
// don't parse are treated as absent rather than failing the whole row.
func unmarshalClassification(ns sql.NullString) *domain.Classification {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var c domain.Classification
	if err := json.Unmarshal([]byte(ns.String), &c); err != nil {
		return nil
	}
	return &c
}
