package domain

import (
	"strings"
	"time"
)

// Topic is a unique subject the user has logged entries under
type Topic struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Skill is a unique skill or course name
type Skill struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Classification is the AI-assigned categorization of an entry
type Classification struct {
	Domain      string   `json:"domain,omitempty"`
	SubTopics   []string `json:"sub_topics,omitempty"`
	Complexity  string   `json:"complexity,omitempty"`
	KeyConcepts []string `json:"key_concepts,omitempty"`
}

// Entry is a single logged learning session. Skills holds the joined
// skill names exactly as the entry listing query returns them.
type Entry struct {
	ID              int64           `json:"id"`
	TopicID         int64           `json:"topic_id"`
	TopicTitle      string          `json:"topic_title"`
	Summary         string          `json:"summary"`
	EnhancedSummary *string         `json:"enhanced_summary"`
	Classification  *Classification `json:"ai_classification"`
	CreatedAt       time.Time       `json:"created_at"`
	Skills          string          `json:"skills"`
}

// SkillList splits the joined skills column into trimmed, non-empty names
func (e *Entry) SkillList() []string {
	if e.Skills == "" {
		return nil
	}
	var names []string
	for _, s := range strings.Split(e.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	return names
}

// Connection is an AI-discovered relationship between two entries.
// SourceTopic and TargetTopic are filled by the listing query.
type Connection struct {
	ID            int64     `json:"id"`
	SourceEntryID int64     `json:"source_entry_id"`
	TargetEntryID int64     `json:"target_entry_id"`
	Relationship  string    `json:"relationship"`
	Strength      float64   `json:"strength"`
	Explanation   *string   `json:"explanation"`
	CreatedAt     time.Time `json:"created_at"`
	SourceTopic   string    `json:"source_topic,omitempty"`
	TargetTopic   string    `json:"target_topic,omitempty"`
}

// Blindspot is an AI-suggested area to explore next, anchored to the
// entry that prompted it. TopicTitle is filled by the listing query.
type Blindspot struct {
	ID           int64     `json:"id"`
	EntryID      int64     `json:"entry_id"`
	Suggestion   string    `json:"suggestion"`
	Category     *string   `json:"category"`
	WhyImportant *string   `json:"why_important"`
	HowItHelps   *string   `json:"how_it_helps"`
	CreatedAt    time.Time `json:"created_at"`
	TopicTitle   string    `json:"topic_title,omitempty"`
}

// Stats holds table-level counts for the dashboard sidebar
type Stats struct {
	Entries     int64 `json:"entries"`
	Topics      int64 `json:"topics"`
	Skills      int64 `json:"skills"`
	Connections int64 `json:"connections"`
	Blindspots  int64 `json:"blindspots"`
}
