package ai

import (
	"testing"

	"github.com/syntra-learn/syntra-api/internal/models"
)

const validRoadmapJSON = `{"title": "Master algebra", "nodes": [
	{"id": 1, "label": "Linear equations", "details": "Start here.", "resources": ["Khan Academy"]},
	{"id": 2, "label": "Quadratics", "details": "Then this.", "resources": []}
]}`

func TestParseRoadmapDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain json", input: validRoadmapJSON},
		{name: "fenced json", input: "```json\n" + validRoadmapJSON + "\n```"},
		{name: "fenced without language tag", input: "```\n" + validRoadmapJSON + "\n```"},
		{name: "prose wrapped json", input: "Here is your roadmap:\n" + validRoadmapJSON + "\nEnjoy!"},
		{name: "empty response", input: "", wantErr: true},
		{name: "not json at all", input: "I cannot do that.", wantErr: true},
		{name: "missing title", input: `{"nodes": [{"id": 1, "label": "x"}]}`, wantErr: true},
		{name: "missing nodes", input: `{"title": "x", "nodes": []}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRoadmapDocument(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if got.Title != "Master algebra" {
				t.Errorf("Expected title 'Master algebra', got %q", got.Title)
			}
			if len(got.Nodes) != 2 {
				t.Fatalf("Expected 2 nodes, got %d", len(got.Nodes))
			}
			for _, node := range got.Nodes {
				if node.Status != models.NodeStatusPending {
					t.Errorf("Expected fresh nodes to be pending, got %q", node.Status)
				}
			}
			if got.Nodes[0].ID != 1 || got.Nodes[1].ID != 2 {
				t.Errorf("Expected sequential ids, got %d and %d", got.Nodes[0].ID, got.Nodes[1].ID)
			}
		})
	}
}

func TestParseRoadmapDocumentAssignsMissingIDs(t *testing.T) {
	t.Parallel()

	got, err := ParseRoadmapDocument(`{"title": "t", "nodes": [{"label": "a"}, {"label": "b"}]}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Nodes[0].ID != 1 || got.Nodes[1].ID != 2 {
		t.Errorf("Expected positional ids, got %d and %d", got.Nodes[0].ID, got.Nodes[1].ID)
	}
}

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no fence", input: `{"a": 1}`, want: `{"a": 1}`},
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "fence on one line", input: "```{\"a\": 1}```", want: `{"a": 1}`},
		{name: "surrounding whitespace", input: "  \n```json\n{\"a\": 1}\n```\n ", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
