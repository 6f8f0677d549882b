// Package onboarding implements the personality assessment flow a new user
// walks through before reaching the app: profile entry, a situational
// judgment test, three essays, and a final analysis step that produces the
// persisted Profile. The flow is strictly forward-only.
package onboarding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/models"
)

// Step identifies a stage in the onboarding flow
type Step string

const (
	StepProfileEntry        Step = "profile_entry"
	StepSituationalJudgment Step = "situational_judgment"
	StepEssay               Step = "essay"
	StepAnalyzing           Step = "analyzing"
	StepComplete            Step = "complete"
)

// Placeholder trait scores assigned after the assessment. Real scoring is a
// product decision that has not landed; the values are fixed so downstream
// behavior is deterministic.
const (
	placeholderConscientiousness = 75
	placeholderOpenness          = 65
)

// minEssayLength is the minimum number of characters per essay response
const minEssayLength = 5

var (
	// ErrWrongStep is returned when a submission does not match the
	// current stage; the flow never moves backwards.
	ErrWrongStep = errors.New("submission does not match current onboarding step")
	// ErrIncomplete is returned when the result is requested early
	ErrIncomplete = errors.New("onboarding is not complete")
)

// EssayPrompt is one of the three writing sections
type EssayPrompt struct {
	Key    string
	Titles map[i18n.Language]string
	Texts  map[i18n.Language]string
}

var essayPrompts = []EssayPrompt{
	{
		Key: "c_essay",
		Titles: map[i18n.Language]string{
			i18n.LanguageEnglish: "Part 1: Behavior Analysis",
			i18n.LanguageArabic:  "الجزء ١: تحليل السلوك",
		},
		Texts: map[i18n.Language]string{
			i18n.LanguageEnglish: "Think about a time you had a very difficult goal. How did you handle the pressure and the planning?",
			i18n.LanguageArabic:  "افتكر موقف كان عندك فيه هدف صعب جداً. اتصرفت ازاي مع الضغط والتخطيط؟",
		},
	},
	{
		Key: "o_essay",
		Titles: map[i18n.Language]string{
			i18n.LanguageEnglish: "Part 2: Imagination Analysis",
			i18n.LanguageArabic:  "الجزء ٢: تحليل الخيال",
		},
		Texts: map[i18n.Language]string{
			i18n.LanguageEnglish: "If you could invent a new subject to be taught in schools that doesn't exist yet, what would it be and why?",
			i18n.LanguageArabic:  "لو تقدر تخترع مادة جديدة تدرس في المدارس مش موجودة دلوقتي، هتكون إيه وليه؟",
		},
	},
	{
		Key: "free_essay",
		Titles: map[i18n.Language]string{
			i18n.LanguageEnglish: "Part 3: Free Association",
			i18n.LanguageArabic:  "الجزء ٣: مساحة حرة",
		},
		Texts: map[i18n.Language]string{
			i18n.LanguageEnglish: "Free Space (20 mins): Write about anything on your mind right now.",
			i18n.LanguageArabic:  "مساحة حرة (٢٠ دقيقة): اكتب عن أي حاجة في دماغك دلوقتي.",
		},
	},
}

// EssayPrompts returns the three writing sections in order
func EssayPrompts() []EssayPrompt {
	return essayPrompts
}

// TitleIn returns the prompt title for the given language, falling back to
// English.
func (p EssayPrompt) TitleIn(lang i18n.Language) string {
	if title, ok := p.Titles[lang]; ok && title != "" {
		return title
	}
	return p.Titles[i18n.LanguageEnglish]
}

// TextIn returns the prompt text for the given language, falling back to
// English.
func (p EssayPrompt) TextIn(lang i18n.Language) string {
	if text, ok := p.Texts[lang]; ok && text != "" {
		return text
	}
	return p.Texts[i18n.LanguageEnglish]
}

// Machine tracks one user's progress through the flow
type Machine struct {
	userID    uuid.UUID
	step      Step
	name      string
	age       string
	scenarios []Scenario
	scenario  int
	essay     int
	essays    map[string]string
}

// NewMachine starts an onboarding flow for a user
func NewMachine(userID uuid.UUID) (*Machine, error) {
	scenarios, err := Scenarios()
	if err != nil {
		return nil, err
	}
	return &Machine{
		userID:    userID,
		step:      StepProfileEntry,
		scenarios: scenarios,
		essays:    make(map[string]string),
	}, nil
}

// Step returns the current stage
func (m *Machine) Step() Step {
	return m.step
}

// SubmitProfile records name and age and advances to the judgment test.
// Both fields must be non-empty.
func (m *Machine) SubmitProfile(name, age string) error {
	if m.step != StepProfileEntry {
		return ErrWrongStep
	}
	name = strings.TrimSpace(name)
	age = strings.TrimSpace(age)
	if name == "" || age == "" {
		return fmt.Errorf("name and age are required")
	}
	m.name = name
	m.age = age
	m.step = StepSituationalJudgment
	return nil
}

// CurrentScenario returns the active judgment item, or false when the test
// is not in progress.
func (m *Machine) CurrentScenario() (Scenario, int, bool) {
	if m.step != StepSituationalJudgment {
		return Scenario{}, 0, false
	}
	return m.scenarios[m.scenario], m.scenario, true
}

// SubmitAnswer records a scenario selection. Any option advances; answers
// do not influence the placeholder scores.
func (m *Machine) SubmitAnswer(option int) error {
	if m.step != StepSituationalJudgment {
		return ErrWrongStep
	}
	if option < 0 || option > 3 {
		return fmt.Errorf("option must be between 0 and 3, got %d", option)
	}
	if m.scenario < len(m.scenarios)-1 {
		m.scenario++
		return nil
	}
	m.step = StepEssay
	return nil
}

// CurrentEssay returns the active writing section, or false when essays
// are not in progress.
func (m *Machine) CurrentEssay() (EssayPrompt, int, bool) {
	if m.step != StepEssay {
		return EssayPrompt{}, 0, false
	}
	return essayPrompts[m.essay], m.essay, true
}

// SubmitEssay records one essay response. The third submission moves the
// flow to the analyzing stage.
func (m *Machine) SubmitEssay(text string) error {
	if m.step != StepEssay {
		return ErrWrongStep
	}
	if len(strings.TrimSpace(text)) < minEssayLength {
		return fmt.Errorf("essay must be at least %d characters", minEssayLength)
	}
	m.essays[essayPrompts[m.essay].Key] = text
	if m.essay < len(essayPrompts)-1 {
		m.essay++
		return nil
	}
	m.step = StepAnalyzing
	return nil
}

// Result finalizes the flow and returns the profile to persist. Only valid
// once the analyzing stage is reached; afterwards the machine is complete.
func (m *Machine) Result() (*models.Profile, error) {
	if m.step != StepAnalyzing && m.step != StepComplete {
		return nil, ErrIncomplete
	}
	m.step = StepComplete

	essays := make(map[string]string, len(m.essays))
	for k, v := range m.essays {
		essays[k] = v
	}
	return &models.Profile{
		UserID:                 m.userID,
		Name:                   m.name,
		Age:                    m.age,
		ConscientiousnessScore: placeholderConscientiousness,
		OpennessScore:          placeholderOpenness,
		Essays:                 essays,
	}, nil
}
