package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/syntra-learn/syntra-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("provenance", validateProvenance); err != nil {
		panic(fmt.Sprintf("failed to register provenance validator: %v", err))
	}
	if err := Validate.RegisterValidation("chat_role", validateRole); err != nil {
		panic(fmt.Sprintf("failed to register chat_role validator: %v", err))
	}
	if err := Validate.RegisterValidation("node_status", validateNodeStatus); err != nil {
		panic(fmt.Sprintf("failed to register node_status validator: %v", err))
	}
}

func validateProvenance(fl validator.FieldLevel) bool {
	switch models.Provenance(fl.Field().String()) {
	case models.ProvenanceManual, models.ProvenanceAISmart, models.ProvenanceAIMagic:
		return true
	default:
		return false
	}
}

func validateRole(fl validator.FieldLevel) bool {
	switch models.Role(fl.Field().String()) {
	case models.RoleUser, models.RoleAssistant:
		return true
	default:
		return false
	}
}

func validateNodeStatus(fl validator.FieldLevel) bool {
	switch models.NodeStatus(fl.Field().String()) {
	case models.NodeStatusPending, models.NodeStatusDone:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing
// control characters except newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateProvenance validates a Provenance string value
func ValidateProvenance(value string) error {
	switch models.Provenance(value) {
	case models.ProvenanceManual, models.ProvenanceAISmart, models.ProvenanceAIMagic:
		return nil
	default:
		return fmt.Errorf("invalid provenance: %s (must be 'manual', 'ai-smart', or 'ai-magic')", value)
	}
}

// ValidateNodeStatus validates a roadmap NodeStatus string value
func ValidateNodeStatus(value string) error {
	switch models.NodeStatus(value) {
	case models.NodeStatusPending, models.NodeStatusDone:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending' or 'done')", value)
	}
}
