package store

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// ReconcileTasks merges a remote snapshot with the local pending overlay.
// A pending record replaces the remote record with the same ID; pending
// records unknown to the remote are appended. The result is ordered by
// CreatedAt ascending with nil timestamps (unconfirmed writes) last.
// The function is pure: inputs are never mutated.
func ReconcileTasks(remote, pending []models.Task) []models.Task {
	pendingByID := make(map[uuid.UUID]models.Task, len(pending))
	for _, t := range pending {
		pendingByID[t.ID] = t
	}

	merged := make([]models.Task, 0, len(remote)+len(pending))
	seen := make(map[uuid.UUID]bool, len(remote))
	for _, t := range remote {
		if p, ok := pendingByID[t.ID]; ok {
			merged = append(merged, p)
		} else {
			merged = append(merged, t)
		}
		seen[t.ID] = true
	}
	for _, t := range pending {
		if !seen[t.ID] {
			merged = append(merged, t)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return timeLess(merged[i].CreatedAt, merged[j].CreatedAt)
	})
	return merged
}

// ReconcileMessages merges chat history the same way. Ties and unconfirmed
// writes keep insertion order via Seq.
func ReconcileMessages(remote, pending []models.ChatMessage) []models.ChatMessage {
	pendingByID := make(map[uuid.UUID]models.ChatMessage, len(pending))
	for _, m := range pending {
		pendingByID[m.ID] = m
	}

	merged := make([]models.ChatMessage, 0, len(remote)+len(pending))
	seen := make(map[uuid.UUID]bool, len(remote))
	for _, m := range remote {
		if p, ok := pendingByID[m.ID]; ok {
			merged = append(merged, p)
		} else {
			merged = append(merged, m)
		}
		seen[m.ID] = true
	}
	for _, m := range pending {
		if !seen[m.ID] {
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return a.Seq < b.Seq
		case a.CreatedAt == nil:
			return false
		case b.CreatedAt == nil:
			return true
		case a.CreatedAt.Equal(*b.CreatedAt):
			return a.Seq < b.Seq
		default:
			return a.CreatedAt.Before(*b.CreatedAt)
		}
	})
	return merged
}

// timeLess orders timestamps ascending with nil (unconfirmed) last
func timeLess(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}
