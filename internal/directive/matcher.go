package directive

import (
	"strings"

	"github.com/syntra-learn/syntra-api/internal/models"
)

// Matcher resolves directive payloads against the user's current task list.
// Implementations must be deterministic for a given input ordering.
type Matcher interface {
	// FindDuplicate reports an existing task whose text equals the given
	// text ignoring case, or nil when none exists.
	FindDuplicate(tasks []models.Task, text string) *models.Task
	// FindTarget reports the first task whose text contains the fragment.
	// The comparison folds case only when caseSensitive is false.
	FindTarget(tasks []models.Task, fragment string, caseSensitive bool) *models.Task
}

// SubstringMatcher is the default Matcher. DONE lookups fold case so the
// model does not need to reproduce the user's capitalization, while MOD
// lookups stay case-sensitive to avoid renaming the wrong task.
type SubstringMatcher struct{}

var _ Matcher = (*SubstringMatcher)(nil)

func (SubstringMatcher) FindDuplicate(tasks []models.Task, text string) *models.Task {
	for i := range tasks {
		if strings.EqualFold(tasks[i].Text, text) {
			return &tasks[i]
		}
	}
	return nil
}

func (SubstringMatcher) FindTarget(tasks []models.Task, fragment string, caseSensitive bool) *models.Task {
	needle := fragment
	if !caseSensitive {
		needle = strings.ToLower(fragment)
	}
	for i := range tasks {
		haystack := tasks[i].Text
		if !caseSensitive {
			haystack = strings.ToLower(haystack)
		}
		if strings.Contains(haystack, needle) {
			return &tasks[i]
		}
	}
	return nil
}
