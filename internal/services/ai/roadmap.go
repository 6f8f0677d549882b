package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// roadmapDocument is the JSON shape the model is told to produce
type roadmapDocument struct {
	Title string `json:"title"`
	Nodes []struct {
		ID        int      `json:"id"`
		Label     string   `json:"label"`
		Details   string   `json:"details"`
		Resources []string `json:"resources"`
	} `json:"nodes"`
}

// ParseRoadmapDocument decodes a model response into a roadmap. Markdown
// code fences around the JSON are tolerated. Errors are recoverable: the
// caller keeps the previous roadmap when parsing fails.
func ParseRoadmapDocument(content string) (*models.Roadmap, error) {
	raw := StripCodeFences(content)

	var doc roadmapDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		// Some models wrap JSON in prose despite instructions.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON object in response: %w", err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &doc); err != nil {
			return nil, fmt.Errorf("invalid roadmap JSON: %w", err)
		}
	}

	if doc.Title == "" {
		return nil, errors.New("roadmap document has no title")
	}
	if len(doc.Nodes) == 0 {
		return nil, errors.New("roadmap document has no nodes")
	}

	roadmap := &models.Roadmap{
		Title: doc.Title,
		Nodes: make([]models.RoadmapNode, len(doc.Nodes)),
	}
	for i, n := range doc.Nodes {
		id := n.ID
		if id == 0 {
			id = i + 1
		}
		roadmap.Nodes[i] = models.RoadmapNode{
			ID:        id,
			Label:     n.Label,
			Details:   n.Details,
			Resources: n.Resources,
			Status:    models.NodeStatusPending,
		}
	}
	return roadmap, nil
}

// StripCodeFences removes a surrounding Markdown code fence, with or
// without a language tag, leaving other content untouched.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx != -1 {
		// Drop the language tag line (e.g. "json").
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
