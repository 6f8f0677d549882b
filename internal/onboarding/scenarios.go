package onboarding

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/syntra-learn/syntra-api/internal/i18n"
)

//go:embed scenarios.yaml
var scenariosYAML []byte

// Trait names the Big Five dimension a scenario measures.
type Trait string

const (
	TraitConscientiousness Trait = "C"
	TraitOpenness          Trait = "O"
)

// Scenario is one situational judgment item. Text and options carry both
// supported languages; presentation order is the bank order.
type Scenario struct {
	ID      int                        `yaml:"id"`
	Trait   Trait                      `yaml:"trait"`
	Text    map[i18n.Language]string   `yaml:"text"`
	Options map[i18n.Language][]string `yaml:"options"`
}

// TextIn returns the scenario text for the given language, falling back to
// English.
func (s Scenario) TextIn(lang i18n.Language) string {
	if text, ok := s.Text[lang]; ok && text != "" {
		return text
	}
	return s.Text[i18n.LanguageEnglish]
}

// OptionsIn returns the scenario options for the given language, falling
// back to English.
func (s Scenario) OptionsIn(lang i18n.Language) []string {
	if opts, ok := s.Options[lang]; ok && len(opts) > 0 {
		return opts
	}
	return s.Options[i18n.LanguageEnglish]
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

var (
	bankOnce sync.Once
	bank     []Scenario
	bankErr  error
)

// Scenarios returns the embedded scenario bank. Parsing and validation
// happen once; the returned slice must not be modified.
func Scenarios() ([]Scenario, error) {
	bankOnce.Do(func() {
		bank, bankErr = parseScenarios(scenariosYAML)
	})
	return bank, bankErr
}

func parseScenarios(data []byte) ([]Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario bank: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario bank is empty")
	}

	seen := make(map[int]bool, len(file.Scenarios))
	for i, s := range file.Scenarios {
		if s.ID == 0 {
			return nil, fmt.Errorf("scenario %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate scenario id %d", s.ID)
		}
		seen[s.ID] = true

		if s.Trait != TraitConscientiousness && s.Trait != TraitOpenness {
			return nil, fmt.Errorf("scenario %d has unknown trait %q", s.ID, s.Trait)
		}
		for _, lang := range []i18n.Language{i18n.LanguageEnglish, i18n.LanguageArabic} {
			if s.Text[lang] == "" {
				return nil, fmt.Errorf("scenario %d is missing %s text", s.ID, lang)
			}
			if len(s.Options[lang]) != 4 {
				return nil, fmt.Errorf("scenario %d needs exactly 4 %s options, has %d", s.ID, lang, len(s.Options[lang]))
			}
		}
	}
	return file.Scenarios, nil
}
