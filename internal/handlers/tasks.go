package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/models"
	"github.com/syntra-learn/syntra-api/internal/request"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
	"github.com/syntra-learn/syntra-api/internal/store"
	"github.com/syntra-learn/syntra-api/internal/validation"
)

const (
	// MaxTaskTextLength is the maximum length for task text
	MaxTaskTextLength = 10000
	// MaxGoalLength is the maximum length for a magic breakdown goal
	MaxGoalLength = 2000
)

// TaskHandler handles planner task requests
type TaskHandler struct {
	store      *store.Sync
	aiProvider ai.AIProvider
	logger     *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(s *store.Sync, aiProvider ai.AIProvider, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{store: s, aiProvider: aiProvider, logger: logger}
}

// RegisterRoutes registers task routes on the given router.
// The router should already carry the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/magic", h.MagicBreakdown).Methods("POST")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

// UpdateTaskRequest represents an update task request
type UpdateTaskRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,min=1,max=10000"`
	Done *bool   `json:"done,omitempty"`
}

// MagicBreakdownRequest represents a goal breakdown request
type MagicBreakdownRequest struct {
	Goal string `json:"goal" validate:"required,min=1,max=2000"`
}

// ListTasksResponse carries tasks plus the store's connectivity state
type ListTasksResponse struct {
	Tasks   []models.Task `json:"tasks"`
	Offline bool          `json:"offline"`
}

// ListTasks lists tasks for the authenticated user
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	respondJSON(w, http.StatusOK, ListTasksResponse{Tasks: tasks, Offline: h.store.Offline()})
}

// CreateTask creates a manual task. Creation is idempotent on
// case-insensitive text equality, matching the chat ADD directive.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Text = validation.SanitizeText(req.Text)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Task text must be 1-10000 characters")
		return
	}

	ctx := r.Context()

	// Best-effort duplicate check; a miss here is not an error
	if existing, err := h.store.ListTasks(ctx, user.ID); err == nil {
		for i := range existing {
			if strings.EqualFold(existing[i].Text, req.Text) {
				respondJSON(w, http.StatusOK, existing[i])
				return
			}
		}
	}

	task := &models.Task{
		ID:         uuid.New(),
		UserID:     user.ID,
		Text:       req.Text,
		Provenance: models.ProvenanceManual,
	}
	if err := h.store.CreateTask(ctx, task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask updates a task's text or done state
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Text != nil {
		trimmed := validation.SanitizeText(*req.Text)
		req.Text = &trimmed
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Task text must be 1-10000 characters")
		return
	}
	if req.Text == nil && req.Done == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Nothing to update")
		return
	}

	ctx := r.Context()
	task, ok := h.findTask(ctx, user.ID, id)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	if req.Text != nil {
		task.Text = *req.Text
	}
	if req.Done != nil {
		task.Done = *req.Done
	}

	if err := h.store.UpdateTask(ctx, task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// ToggleTask flips a task's done state
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	ctx := r.Context()
	task, ok := h.findTask(ctx, user.ID, id)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	task.Done = !task.Done
	if err := h.store.UpdateTask(ctx, task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to toggle task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	if err := h.store.DeleteTask(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, store.ErrOffline) {
			respondJSONError(w, http.StatusServiceUnavailable, "Offline", "Cannot delete synced tasks while offline")
			return
		}
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// MagicBreakdown asks the model to split a goal into steps and creates one
// ai-magic task per step.
func (h *TaskHandler) MagicBreakdown(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req MagicBreakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Goal = validation.SanitizeText(req.Goal)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Goal must be 1-2000 characters")
		return
	}

	ctx := r.Context()
	lang := request.Language(r)

	steps, err := h.aiProvider.MagicBreakdown(ctx, req.Goal, lang)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			respondJSONError(w, http.StatusServiceUnavailable, "AI Disabled", "AI features are unavailable: no API key is configured")
			return
		}
		h.logger.Warn("magic_breakdown_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "AI Error", "Failed to break down goal")
		return
	}

	created := make([]models.Task, 0, len(steps))
	for _, step := range steps {
		step = validation.SanitizeText(step)
		if step == "" {
			continue
		}
		task := &models.Task{
			ID:         uuid.New(),
			UserID:     user.ID,
			Text:       step,
			Provenance: models.ProvenanceAIMagic,
		}
		if err := h.store.CreateTask(ctx, task); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create tasks")
			return
		}
		created = append(created, *task)
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) findTask(ctx context.Context, userID, id uuid.UUID) (*models.Task, bool) {
	tasks, err := h.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, false
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], true
		}
	}
	return nil, false
}
