package database

import (
	"encoding/json"
	"testing"

	"github.com/syntra-learn/syntra-api/internal/models"
)

func intPtr(n int) *int { return &n }

func TestStoredNodeLegacyProgressMigration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node storedNode
		want models.NodeStatus
	}{
		{
			name: "modern status passes through",
			node: storedNode{ID: 1, Label: "Basics", Status: models.NodeStatusPending},
			want: models.NodeStatusPending,
		},
		{
			name: "modern status wins over stray progress",
			node: storedNode{ID: 1, Label: "Basics", Status: models.NodeStatusDone, Progress: intPtr(0)},
			want: models.NodeStatusDone,
		},
		{
			name: "legacy progress zero",
			node: storedNode{ID: 2, Label: "Layouts", Progress: intPtr(0)},
			want: models.NodeStatusPending,
		},
		{
			name: "legacy progress just below complete",
			node: storedNode{ID: 3, Label: "Flexbox", Progress: intPtr(99)},
			want: models.NodeStatusPending,
		},
		{
			name: "legacy progress complete",
			node: storedNode{ID: 4, Label: "Grid", Progress: intPtr(100)},
			want: models.NodeStatusDone,
		},
		{
			name: "no status and no progress",
			node: storedNode{ID: 5, Label: "Projects"},
			want: models.NodeStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.node.toModel()
			if got.Status != tt.want {
				t.Errorf("toModel().Status = %q, want %q", got.Status, tt.want)
			}
			if got.ID != tt.node.ID || got.Label != tt.node.Label {
				t.Errorf("toModel() altered identity fields: got %+v", got)
			}
		})
	}
}

func TestStoredNodeMixedLegacyDocument(t *testing.T) {
	t.Parallel()

	// A document written partly by the old client (progress) and partly by
	// the current one (status), as it looks after an in-place upgrade.
	doc := `[
		{"id": 1, "label": "HTML", "progress": 100},
		{"id": 2, "label": "CSS", "progress": 40},
		{"id": 3, "label": "JavaScript", "status": "done"},
		{"id": 4, "label": "React", "status": "pending", "resources": ["react.dev"]}
	]`

	var stored []storedNode
	if err := json.Unmarshal([]byte(doc), &stored); err != nil {
		t.Fatalf("unmarshal document: %v", err)
	}

	nodes := make([]models.RoadmapNode, len(stored))
	for i, n := range stored {
		nodes[i] = n.toModel()
	}

	want := []models.NodeStatus{
		models.NodeStatusDone,
		models.NodeStatusPending,
		models.NodeStatusDone,
		models.NodeStatusPending,
	}
	for i, status := range want {
		if nodes[i].Status != status {
			t.Errorf("node %d status = %q, want %q", nodes[i].ID, nodes[i].Status, status)
		}
	}
	if len(nodes[3].Resources) != 1 || nodes[3].Resources[0] != "react.dev" {
		t.Errorf("node 4 resources = %v, want [react.dev]", nodes[3].Resources)
	}
}
