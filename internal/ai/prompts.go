package ai

import (
	"fmt"
	"strings"

	"studymap/internal/domain"
)

// contextSummaryLimit caps how much of each previous summary goes into
// the classification prompt.
const contextSummaryLimit = 200

func buildClassifyPrompt(topic string, skills []string, summary string, existing []domain.Entry) string {
	var context strings.Builder
	if len(existing) > 0 {
		context.WriteString("Here are the user's previous learning entries:\n")
		for _, e := range existing {
			skillsCol := e.Skills
			if skillsCol == "" {
				skillsCol = "N/A"
			}
			fmt.Fprintf(&context, "- Entry #%d | Topic: %s | Skills: %s | Summary: %s\n",
				e.ID, e.TopicTitle, skillsCol, truncate(e.Summary, contextSummaryLimit))
		}
	}

	return fmt.Sprintf(`You are a learning-analytics assistant. The user just logged a study session.

**New entry:**
- Topic/Title: %s
- Skills/Courses: %s
- Summary: %s

%s
Respond with ONLY valid JSON (no markdown fences, no explanation) matching this exact schema:
{
  "classification": {
    "domain": "<broad field, e.g. Software Engineering>",
    "sub_topics": ["<specific sub-topic>"],
    "complexity": "<beginner | intermediate | advanced>",
    "key_concepts": ["<concept>"]
  },
  "connections": [
    {
      "entry_id": 0,
      "relationship": "<short description>",
      "strength": 0.5,
      "explanation": "<one sentence on why these entries link>"
    }
  ],
  "blindspots": [
    {
      "suggestion": "<a topic or concept the user should explore next>",
      "category": "<why - e.g. prerequisite, adjacent, deeper-dive>",
      "why_important": "<one sentence>",
      "how_it_helps": "<one sentence>"
    }
  ],
  "enhanced_summary": "<the user's summary rewritten as clear study notes>"
}

Rules:
- connections array should only reference IDs from the previous entries listed above. If there are no previous entries return an empty array [].
- Provide 2-5 blindspot suggestions.
- Keep relationship descriptions concise (< 15 words).
- Output ONLY the JSON object, nothing else.
`, topic, strings.Join(skills, ", "), summary, context.String())
}

func buildEnhancePrompt(topic string, skills []string, summary string) string {
	return fmt.Sprintf(`You are a learning assistant. Rewrite the user's raw study notes as clear, well-organized notes.

**Study session:**
- Topic/Title: %s
- Skills/Courses: %s
- Raw notes: %s

Rules:
- Keep every fact the user wrote; do not invent new material.
- Organize into short paragraphs or bullet points.
- Define key terms briefly where that helps recall.
- Output ONLY the rewritten notes, no preamble.
`, topic, strings.Join(skills, ", "), summary)
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
