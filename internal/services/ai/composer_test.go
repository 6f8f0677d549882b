package ai

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
)

func testProfile() *models.Profile {
	return &models.Profile{
		UserID:                 uuid.MustParse("3c9b5ef8-0000-4000-8000-000000000001"),
		Name:                   "Omar",
		Age:                    "17",
		ConscientiousnessScore: 75,
		OpennessScore:          65,
	}
}

func TestComposeSystemInstructionDeterministic(t *testing.T) {
	t.Parallel()

	profile := testProfile()
	tasks := []models.Task{
		{Text: "Read chapter 3", Done: false},
		{Text: "Finish lab report", Done: true},
	}
	roadmap := &models.Roadmap{
		Title: "Master algebra",
		Nodes: []models.RoadmapNode{
			{ID: 1, Label: "Linear equations", Status: models.NodeStatusDone},
			{ID: 2, Label: "Quadratics", Status: models.NodeStatusPending},
		},
	}

	first := ComposeSystemInstruction(profile, tasks, roadmap, i18n.LanguageEnglish)
	second := ComposeSystemInstruction(profile, tasks, roadmap, i18n.LanguageEnglish)
	if first != second {
		t.Error("Expected identical instructions for identical inputs")
	}
}

func TestComposeSystemInstructionContent(t *testing.T) {
	t.Parallel()

	profile := testProfile()
	tasks := []models.Task{
		{Text: "Read chapter 3", Done: false},
		{Text: "Finish lab report", Done: true},
	}
	roadmap := &models.Roadmap{
		Title: "Master algebra",
		Nodes: []models.RoadmapNode{
			{ID: 1, Label: "Linear equations", Status: models.NodeStatusDone},
			{ID: 2, Label: "Quadratics", Status: models.NodeStatusPending},
		},
	}

	got := ComposeSystemInstruction(profile, tasks, roadmap, i18n.LanguageEnglish)

	for _, want := range []string{
		"Name: Omar, Age: 17, C:75, O:65",
		"- Read chapter 3 [open]",
		"- Finish lab report [done]",
		"1 of 2 steps done",
		"next step: Quadratics",
		"[ADD: task text]",
		"[MOD: old_task_text -> new_task_text]",
		"[DONE: task text]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected instruction to contain %q", want)
		}
	}
}

func TestComposeSystemInstructionArabic(t *testing.T) {
	t.Parallel()

	got := ComposeSystemInstruction(testProfile(), nil, nil, i18n.LanguageArabic)

	if !strings.Contains(got, "EGYPTIAN ARABIC") {
		t.Error("Expected Arabic language directive")
	}
	if !strings.Contains(got, "- (no tasks yet)") {
		t.Error("Expected empty task placeholder")
	}
	if strings.Contains(got, "ROADMAP:") {
		t.Error("Expected no roadmap section without a roadmap")
	}
}
