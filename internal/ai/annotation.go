package ai

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"studymap/internal/domain"
	apperrors "studymap/pkg/errors"
)

// ProposedConnection links the entry being classified to a previously
// stored one. EntryID has already been checked against the known set.
type ProposedConnection struct {
	EntryID      int64
	Relationship string
	Strength     float64
	Explanation  string
}

// ProposedBlindspot suggests an area to explore next.
type ProposedBlindspot struct {
	Suggestion   string
	Category     string
	WhyImportant string
	HowItHelps   string
}

// Annotation is the validated result of a classification call. The
// Dropped counts record candidate items the validator rejected.
type Annotation struct {
	Classification  *domain.Classification
	Connections     []ProposedConnection
	Blindspots      []ProposedBlindspot
	EnhancedSummary string

	DroppedConnections int
	DroppedBlindspots  int
}

// ParseAnnotation turns raw model output into a validated annotation.
// known holds the entry ids a connection may reference; a connection
// naming any other id is dropped, as are items with missing required
// fields or unconvertible numbers. Returns ErrMalformedResponse when no
// JSON object can be recovered at all.
func ParseAnnotation(raw string, known map[int64]bool) (*Annotation, error) {
	cleaned := extractJSON(raw)

	var root struct {
		Classification  json.RawMessage `json:"classification"`
		Connections     json.RawMessage `json:"connections"`
		Blindspots      json.RawMessage `json:"blindspots"`
		EnhancedSummary json.RawMessage `json:"enhanced_summary"`
	}
	if err := json.Unmarshal([]byte(cleaned), &root); err != nil {
		return nil, apperrors.NewMalformedResponse(raw, err)
	}

	ann := &Annotation{}
	ann.Classification = parseClassification(root.Classification)
	ann.Connections, ann.DroppedConnections = parseConnections(root.Connections, known)
	ann.Blindspots, ann.DroppedBlindspots = parseBlindspots(root.Blindspots)
	if s, ok := rawString(root.EnhancedSummary); ok {
		ann.EnhancedSummary = strings.TrimSpace(s)
	}
	return ann, nil
}

// extractJSON peels markdown fences and surrounding prose off a model
// response, narrowing to the outermost JSON object when one is present.
func extractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		if i := strings.Index(cleaned, "\n"); i >= 0 {
			cleaned = cleaned[i+1:]
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(cleaned[:len(cleaned)-3])
	}

	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}
	return cleaned
}

// parseClassification normalizes the classification object. Missing or
// wrong-typed fields fall back to zero values; an absent or empty object
// yields nil.
func parseClassification(raw json.RawMessage) *domain.Classification {
	m, ok := rawMap(raw)
	if !ok || len(m) == 0 {
		return nil
	}

	cls := &domain.Classification{}
	if v, ok := toString(m["domain"]); ok {
		cls.Domain = strings.TrimSpace(v)
	}
	cls.SubTopics = toStringSlice(m["sub_topics"])
	if v, ok := toString(m["complexity"]); ok {
		cls.Complexity = strings.ToLower(strings.TrimSpace(v))
	}
	cls.KeyConcepts = toStringSlice(m["key_concepts"])
	return cls
}

func parseConnections(raw json.RawMessage, known map[int64]bool) ([]ProposedConnection, int) {
	items, ok := rawSlice(raw)
	if !ok {
		return nil, 0
	}

	var conns []ProposedConnection
	dropped := 0
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}

		id, ok := toInt64(m["entry_id"])
		if !ok || !known[id] {
			dropped++
			continue
		}

		rel, ok := toString(m["relationship"])
		rel = strings.TrimSpace(rel)
		if !ok || rel == "" {
			dropped++
			continue
		}

		strength := 0.5
		if v, present := m["strength"]; present {
			f, ok := toFloat64(v)
			if !ok {
				dropped++
				continue
			}
			strength = f
		}
		strength = clamp01(strength)

		conn := ProposedConnection{EntryID: id, Relationship: rel, Strength: strength}
		if v, ok := toString(m["explanation"]); ok {
			conn.Explanation = strings.TrimSpace(v)
		}
		conns = append(conns, conn)
	}
	return conns, dropped
}

func parseBlindspots(raw json.RawMessage) ([]ProposedBlindspot, int) {
	items, ok := rawSlice(raw)
	if !ok {
		return nil, 0
	}

	var spots []ProposedBlindspot
	dropped := 0
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}

		suggestion, ok := toString(m["suggestion"])
		suggestion = strings.TrimSpace(suggestion)
		if !ok || suggestion == "" {
			dropped++
			continue
		}

		spot := ProposedBlindspot{Suggestion: suggestion}
		if v, ok := toString(m["category"]); ok {
			spot.Category = strings.TrimSpace(v)
		}
		if v, ok := toString(m["why_important"]); ok {
			spot.WhyImportant = strings.TrimSpace(v)
		}
		if v, ok := toString(m["how_it_helps"]); ok {
			spot.HowItHelps = strings.TrimSpace(v)
		}
		spots = append(spots, spot)
	}
	return spots, dropped
}

// rawMap decodes a JSON fragment as an object. null and wrong-typed
// fragments report false.
func rawMap(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func rawSlice(raw json.RawMessage) ([]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// toInt64 accepts JSON numbers (truncating fractions) and integer
// strings.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// toFloat64 accepts JSON numbers and numeric strings. NaN and infinities
// are rejected.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
