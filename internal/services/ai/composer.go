package ai

import (
	"fmt"
	"strings"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
)

// ComposeSystemInstruction builds the system instruction for a chat turn.
// The output is fully determined by its inputs; no timestamps or random
// identifiers appear, so identical state yields identical instructions.
func ComposeSystemInstruction(profile *models.Profile, tasks []models.Task, roadmap *models.Roadmap, lang i18n.Language) string {
	var b strings.Builder

	b.WriteString(`IDENTITY: You are "Aura", a sophisticated AI mentor using the BIG-5 personality model.` + "\n")
	fmt.Fprintf(&b, "USER PROFILE: Name: %s, Age: %s, C:%d, O:%d.\n",
		profile.Name, profile.Age, profile.ConscientiousnessScore, profile.OpennessScore)

	b.WriteString("CURRENT TASKS:\n")
	if len(tasks) == 0 {
		b.WriteString("- (no tasks yet)\n")
	}
	for _, task := range tasks {
		state := "open"
		if task.Done {
			state = "done"
		}
		fmt.Fprintf(&b, "- %s [%s]\n", task.Text, state)
	}

	if roadmap != nil && len(roadmap.Nodes) > 0 {
		fmt.Fprintf(&b, "ROADMAP: %q, %d of %d steps done", roadmap.Title, roadmap.DoneCount(), len(roadmap.Nodes))
		if next := roadmap.NextPending(); next != nil {
			fmt.Fprintf(&b, ", next step: %s", next.Label)
		}
		b.WriteString(".\n")
	}

	b.WriteString("\nCRITICAL LANGUAGE INSTRUCTIONS:\n")
	if lang == i18n.LanguageArabic {
		b.WriteString("- The user's interface language is: Arabic.\n")
		b.WriteString("- You MUST speak in EGYPTIAN ARABIC (Masri) slang. Be friendly, helpful, and sound like a cool mentor from Cairo. Do NOT use Modern Standard Arabic (Fusha).\n")
	} else {
		b.WriteString("- The user's interface language is: English.\n")
		b.WriteString("- Speak in clear English.\n")
	}

	b.WriteString("\nTOOLS & BEHAVIOR:\n")
	b.WriteString("- If the user wants to add a task, strictly write on a new line: [ADD: task text]\n")
	b.WriteString("- If the user wants to update a task, strictly write: [MOD: old_task_text -> new_task_text]\n")
	b.WriteString("- If the user says a task is finished, strictly write: [DONE: task text]\n")
	b.WriteString("- Keep responses concise and encouraging.\n")

	return b.String()
}
