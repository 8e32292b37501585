// Package analytics aggregates entries into the label/data series
// rendered by the dashboard charts.
package analytics

import (
	"sort"
	"strings"

	"studymap/internal/domain"
)

const topSkillsLimit = 10

// Series pairs chart labels with their counts, index-aligned.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Dashboard bundles the four chart series served together.
type Dashboard struct {
	Activity   Series `json:"activity"`
	Skills     Series `json:"skills"`
	Complexity Series `json:"complexity"`
	Domains    Series `json:"domains"`
}

// Build assembles all dashboard series from one entry listing.
func Build(entries []domain.Entry) Dashboard {
	return Dashboard{
		Activity:   ActivityByDay(entries),
		Skills:     TopSkills(entries),
		Complexity: ComplexityHistogram(entries),
		Domains:    DomainHistogram(entries),
	}
}

// ActivityByDay counts entries per calendar day, labels ascending.
func ActivityByDay(entries []domain.Entry) Series {
	c := newCounter()
	for _, e := range entries {
		c.add(e.CreatedAt.Format("2006-01-02"))
	}
	sort.Strings(c.order)
	return c.series()
}

// TopSkills counts skill occurrences across all entries and keeps the
// ten most frequent. Ties rank in first-encountered order.
func TopSkills(entries []domain.Entry) Series {
	c := newCounter()
	for _, e := range entries {
		for _, sk := range e.SkillList() {
			c.add(sk)
		}
	}
	sort.SliceStable(c.order, func(i, j int) bool {
		return c.counts[c.order[i]] > c.counts[c.order[j]]
	})
	if len(c.order) > topSkillsLimit {
		c.order = c.order[:topSkillsLimit]
	}
	return c.series()
}

// ComplexityHistogram counts classified entries by lowercased
// complexity. Unclassified entries are excluded.
func ComplexityHistogram(entries []domain.Entry) Series {
	c := newCounter()
	for _, e := range entries {
		if e.Classification == nil {
			continue
		}
		cx := strings.ToLower(e.Classification.Complexity)
		if cx == "" {
			continue
		}
		c.add(cx)
	}
	return c.series()
}

// DomainHistogram counts classified entries by domain, skipping
// entries without one.
func DomainHistogram(entries []domain.Entry) Series {
	c := newCounter()
	for _, e := range entries {
		if e.Classification == nil || e.Classification.Domain == "" {
			continue
		}
		c.add(e.Classification.Domain)
	}
	return c.series()
}

// counter tallies keys while remembering first-seen order, so series
// labels stay deterministic across runs.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) series() Series {
	s := Series{Labels: make([]string, 0, len(c.order)), Data: make([]int, 0, len(c.order))}
	for _, k := range c.order {
		s.Labels = append(s.Labels, k)
		s.Data = append(s.Data, c.counts[k])
	}
	return s
}
