package directive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
)

// TaskStore is the slice of the task layer the applier needs. The sync
// store satisfies it.
type TaskStore interface {
	ListTasks(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
}

// Applier executes parsed directives against a user's task list. Directive
// failures never abort the chat turn: a miss is logged and skipped, and the
// caller receives annotations only for mutations that actually happened.
type Applier struct {
	store   TaskStore
	matcher Matcher
	logger  *zap.Logger
}

func NewApplier(store TaskStore, matcher Matcher, logger *zap.Logger) *Applier {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &Applier{store: store, matcher: matcher, logger: logger}
}

// Apply runs each directive in order and returns one localized annotation
// line per applied mutation, suitable for appending to the assistant's
// display text.
func (a *Applier) Apply(ctx context.Context, userID uuid.UUID, lang i18n.Language, directives []Directive) []string {
	if len(directives) == 0 {
		return nil
	}

	var annotations []string
	for _, d := range directives {
		tasks, err := a.store.ListTasks(ctx, userID)
		if err != nil {
			a.logger.Warn("directive_task_list_failed",
				zap.String("user_id", userID.String()),
				zap.String("kind", string(d.Kind)),
				zap.Error(err))
			continue
		}

		switch d.Kind {
		case KindAdd:
			if note, applied := a.applyAdd(ctx, userID, lang, tasks, d); applied {
				annotations = append(annotations, note)
			}
		case KindMod:
			if note, applied := a.applyMod(ctx, lang, tasks, d); applied {
				annotations = append(annotations, note)
			}
		case KindDone:
			if note, applied := a.applyDone(ctx, lang, tasks, d); applied {
				annotations = append(annotations, note)
			}
		}
	}
	return annotations
}

func (a *Applier) applyAdd(ctx context.Context, userID uuid.UUID, lang i18n.Language, tasks []models.Task, d Directive) (string, bool) {
	if d.Text == "" {
		return "", false
	}
	if dup := a.matcher.FindDuplicate(tasks, d.Text); dup != nil {
		a.logger.Debug("directive_add_duplicate",
			zap.String("user_id", userID.String()),
			zap.String("task_id", dup.ID.String()))
		return "", false
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:         uuid.New(),
		UserID:     userID,
		Text:       d.Text,
		Done:       false,
		Provenance: models.ProvenanceAISmart,
		CreatedAt:  &now,
		UpdatedAt:  now,
	}
	if err := a.store.CreateTask(ctx, task); err != nil {
		a.logger.Warn("directive_add_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return "", false
	}
	return annotation(lang, i18n.KeyTaskAutoAdded, d.Text), true
}

func (a *Applier) applyMod(ctx context.Context, lang i18n.Language, tasks []models.Task, d Directive) (string, bool) {
	if d.OldText == "" || d.NewText == "" {
		return "", false
	}
	target := a.matcher.FindTarget(tasks, d.OldText, true)
	if target == nil {
		a.logger.Debug("directive_target_not_found",
			zap.String("kind", string(KindMod)),
			zap.String("fragment", d.OldText))
		return "", false
	}

	target.Text = d.NewText
	target.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateTask(ctx, target); err != nil {
		a.logger.Warn("directive_mod_failed",
			zap.String("task_id", target.ID.String()),
			zap.Error(err))
		return "", false
	}
	return annotation(lang, i18n.KeyTaskAutoUpdated, d.NewText), true
}

func (a *Applier) applyDone(ctx context.Context, lang i18n.Language, tasks []models.Task, d Directive) (string, bool) {
	if d.Text == "" {
		return "", false
	}
	target := a.matcher.FindTarget(tasks, d.Text, false)
	if target == nil {
		a.logger.Debug("directive_target_not_found",
			zap.String("kind", string(KindDone)),
			zap.String("fragment", d.Text))
		return "", false
	}
	if target.Done {
		return "", false
	}

	target.Done = true
	target.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateTask(ctx, target); err != nil {
		a.logger.Warn("directive_done_failed",
			zap.String("task_id", target.ID.String()),
			zap.Error(err))
		return "", false
	}
	return annotation(lang, i18n.KeyTaskAutoDone, target.Text), true
}

func annotation(lang i18n.Language, key i18n.Key, text string) string {
	return fmt.Sprintf("(✓ %s %s)", i18n.T(lang, key), text)
}
