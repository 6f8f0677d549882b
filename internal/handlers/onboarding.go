package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/database"
	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/onboarding"
	"github.com/syntra-learn/syntra-api/internal/queue"
	"github.com/syntra-learn/syntra-api/internal/request"
)

// OnboardingHandler drives the assessment flow. Sessions live in memory,
// keyed by user; the flow is short-lived and forward-only, so losing a
// session on restart just restarts the assessment.
type OnboardingHandler struct {
	profileRepo database.ProfileRepositoryInterface
	jobQueue    queue.JobQueue // nil when no queue is configured
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*onboarding.Machine
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(profileRepo database.ProfileRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *OnboardingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingHandler{
		profileRepo: profileRepo,
		jobQueue:    jobQueue,
		logger:      logger,
		sessions:    make(map[uuid.UUID]*onboarding.Machine),
	}
}

// RegisterRoutes registers onboarding routes on the given router.
// The router should already carry the /onboarding prefix.
func (h *OnboardingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.State).Methods("GET")
	r.HandleFunc("/profile", h.SubmitProfile).Methods("POST")
	r.HandleFunc("/answer", h.SubmitAnswer).Methods("POST")
	r.HandleFunc("/essay", h.SubmitEssay).Methods("POST")
	r.HandleFunc("/complete", h.Complete).Methods("POST")
}

// SubmitProfileRequest carries the profile entry fields
type SubmitProfileRequest struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

// SubmitAnswerRequest carries one scenario selection
type SubmitAnswerRequest struct {
	Option int `json:"option"`
}

// SubmitEssayRequest carries one essay response
type SubmitEssayRequest struct {
	Text string `json:"text"`
}

// ScenarioView is the localized judgment item shown to the user
type ScenarioView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// EssayView is the localized writing prompt shown to the user
type EssayView struct {
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	Key    string `json:"key"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// StateResponse describes where the user is in the flow
type StateResponse struct {
	Step     onboarding.Step `json:"step"`
	Scenario *ScenarioView   `json:"scenario,omitempty"`
	Essay    *EssayView      `json:"essay,omitempty"`
}

func (h *OnboardingHandler) machineFor(userID uuid.UUID) (*onboarding.Machine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.sessions[userID]; ok {
		return m, nil
	}
	m, err := onboarding.NewMachine(userID)
	if err != nil {
		return nil, err
	}
	h.sessions[userID] = m
	return m, nil
}

func (h *OnboardingHandler) stateView(m *onboarding.Machine, lang i18n.Language) StateResponse {
	resp := StateResponse{Step: m.Step()}

	if scenario, idx, ok := m.CurrentScenario(); ok {
		total := 0
		if all, err := onboarding.Scenarios(); err == nil {
			total = len(all)
		}
		resp.Scenario = &ScenarioView{
			Index:   idx,
			Total:   total,
			Text:    scenario.TextIn(lang),
			Options: scenario.OptionsIn(lang),
		}
	}

	if prompt, idx, ok := m.CurrentEssay(); ok {
		resp.Essay = &EssayView{
			Index:  idx,
			Total:  len(onboarding.EssayPrompts()),
			Key:    prompt.Key,
			Title:  prompt.TitleIn(lang),
			Prompt: prompt.TextIn(lang),
		}
	}

	return resp
}

// State returns the user's current position in the assessment
func (h *OnboardingHandler) State(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	m, err := h.machineFor(user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start onboarding")
		return
	}

	respondJSON(w, http.StatusOK, h.stateView(m, request.Language(r)))
}

// SubmitProfile records name and age
func (h *OnboardingHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SubmitProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	m, err := h.machineFor(user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start onboarding")
		return
	}

	if err := m.SubmitProfile(req.Name, req.Age); err != nil {
		h.respondStepError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.stateView(m, request.Language(r)))
}

// SubmitAnswer records one judgment selection
func (h *OnboardingHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	m, err := h.machineFor(user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start onboarding")
		return
	}

	if err := m.SubmitAnswer(req.Option); err != nil {
		h.respondStepError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.stateView(m, request.Language(r)))
}

// SubmitEssay records one essay response
func (h *OnboardingHandler) SubmitEssay(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req SubmitEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	m, err := h.machineFor(user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start onboarding")
		return
	}

	if err := m.SubmitEssay(req.Text); err != nil {
		h.respondStepError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.stateView(m, request.Language(r)))
}

// Complete finalizes the assessment, persists the profile, and queues the
// welcome email.
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	m, err := h.machineFor(user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start onboarding")
		return
	}

	profile, err := m.Result()
	if err != nil {
		h.respondStepError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.profileRepo.Create(ctx, profile); err != nil {
		// Profiles are write-once; a second completion conflicts
		respondJSONError(w, http.StatusConflict, "Conflict", "Profile already exists")
		return
	}

	h.mu.Lock()
	delete(h.sessions, user.ID)
	h.mu.Unlock()

	lang := request.Language(r)
	if h.jobQueue != nil {
		job := queue.NewJob(queue.JobTypeWelcomeEmail, user.ID, nil)
		job.Metadata["language"] = string(lang)
		if err := h.jobQueue.Enqueue(ctx, job); err != nil {
			h.logger.Warn("welcome_email_enqueue_failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}

		analysis := queue.NewJob(queue.JobTypeProfileAnalysis, user.ID, nil)
		if err := h.jobQueue.Enqueue(ctx, analysis); err != nil {
			h.logger.Warn("profile_analysis_enqueue_failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}

	respondJSON(w, http.StatusCreated, profile)
}

func (h *OnboardingHandler) respondStepError(w http.ResponseWriter, err error) {
	if errors.Is(err, onboarding.ErrWrongStep) || errors.Is(err, onboarding.ErrIncomplete) {
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
		return
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
}
