package models

import (
	"time"

	"github.com/google/uuid"
)

// NodeStatus is the completion state of a roadmap step
type NodeStatus string

const (
	NodeStatusPending NodeStatus = "pending"
	NodeStatusDone    NodeStatus = "done"
)

// RoadmapNode is one ordered step within a generated goal plan.
// ID is the 1-based position of the node within the roadmap.
type RoadmapNode struct {
	ID        int        `json:"id"`
	Label     string     `json:"label"`
	Details   string     `json:"details"`
	Resources []string   `json:"resources"`
	Status    NodeStatus `json:"status"`
}

// Roadmap is the singleton goal plan for one user. It is replaced wholesale
// on regeneration and mutated per-node on toggle.
type Roadmap struct {
	UserID    uuid.UUID     `json:"user_id"`
	Title     string        `json:"title"`
	Nodes     []RoadmapNode `json:"nodes"`
	Notes     string        `json:"notes,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DoneCount returns how many nodes are completed.
func (r *Roadmap) DoneCount() int {
	n := 0
	for _, node := range r.Nodes {
		if node.Status == NodeStatusDone {
			n++
		}
	}
	return n
}

// NextPending returns the first node that is not done, or nil if every node
// is completed or the roadmap is empty.
func (r *Roadmap) NextPending() *RoadmapNode {
	for i := range r.Nodes {
		if r.Nodes[i].Status != NodeStatusDone {
			return &r.Nodes[i]
		}
	}
	return nil
}
