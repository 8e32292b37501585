// Package graph projects stored entries and connections into the
// node/edge shape rendered by vis-network on the map view.
package graph

import (
	"fmt"
	"strings"

	"studymap/internal/domain"
)

const (
	entryNodeColor = "#8b5cf6"
	skillNodeColor = "#ef6c4e"
	skillEdgeColor = "rgba(0,0,0,0.08)"
	connEdgeColor  = "#f43f5e"

	entryNodeSize = 28
	skillNodeSize = 20

	tooltipSummaryLimit = 120
	minConnEdgeWidth    = 1.5
)

// Font styles a node label.
type Font struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Node is a vis-network node. Entry nodes carry a tooltip title,
// skill nodes do not.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Shape string `json:"shape"`
	Size  int    `json:"size"`
	Color string `json:"color"`
	Font  Font   `json:"font"`
	Title string `json:"title,omitempty"`
}

// EdgeColor wraps the color string the way vis-network expects on edges.
type EdgeColor struct {
	Color string `json:"color"`
}

// Edge is a vis-network edge. Entry-to-skill edges are faint and
// unlabeled, connection edges carry relationship text and an arrow.
type Edge struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Label  string    `json:"label,omitempty"`
	Title  string    `json:"title,omitempty"`
	Color  EdgeColor `json:"color"`
	Width  float64   `json:"width"`
	Arrows string    `json:"arrows,omitempty"`
}

// Build projects entries and their connections into nodes and edges.
// Each entry becomes a dot node linked to one diamond node per skill;
// skill nodes are shared across entries, keyed case-insensitively and
// labeled with the casing they were first seen in.
func Build(entries []domain.Entry, connections []domain.Connection) ([]Node, []Edge) {
	nodes := make([]Node, 0, len(entries))
	edges := make([]Edge, 0, len(connections))
	seenSkills := make(map[string]bool)

	for _, e := range entries {
		nodes = append(nodes, Node{
			ID:    fmt.Sprintf("entry_%d", e.ID),
			Label: fmt.Sprintf("#%d: %s", e.ID, e.TopicTitle),
			Shape: "dot",
			Size:  entryNodeSize,
			Color: entryNodeColor,
			Font:  Font{Color: "#0f0f0f", Size: 12},
			Title: entryTooltip(e),
		})

		for _, sk := range e.SkillList() {
			key := strings.ToLower(sk)
			if !seenSkills[key] {
				nodes = append(nodes, Node{
					ID:    "skill_" + key,
					Label: sk,
					Shape: "diamond",
					Size:  skillNodeSize,
					Color: skillNodeColor,
					Font:  Font{Color: "#6b6b76", Size: 11},
				})
				seenSkills[key] = true
			}

			edges = append(edges, Edge{
				From:  fmt.Sprintf("entry_%d", e.ID),
				To:    "skill_" + key,
				Color: EdgeColor{Color: skillEdgeColor},
				Width: 1,
			})
		}
	}

	for _, c := range connections {
		title := c.Relationship
		if c.Explanation != nil && *c.Explanation != "" {
			title = *c.Explanation
		}
		width := c.Strength * 5
		if width < minConnEdgeWidth {
			width = minConnEdgeWidth
		}
		edges = append(edges, Edge{
			From:   fmt.Sprintf("entry_%d", c.SourceEntryID),
			To:     fmt.Sprintf("entry_%d", c.TargetEntryID),
			Label:  c.Relationship,
			Title:  title,
			Color:  EdgeColor{Color: connEdgeColor},
			Width:  width,
			Arrows: "to",
		})
	}

	return nodes, edges
}

func entryTooltip(e domain.Entry) string {
	skills := e.Skills
	if strings.TrimSpace(skills) == "" {
		skills = "N/A"
	}
	return fmt.Sprintf("%s...\nSkills: %s\nDate: %s",
		clip(e.Summary, tooltipSummaryLimit), skills, e.CreatedAt.Format("2006-01-02 15:04"))
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
