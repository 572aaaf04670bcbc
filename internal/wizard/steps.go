package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// Top-level field names.
const (
	FieldUniversalPrinciples = "universal_principles"
	FieldPersonas            = "personas"
	FieldProjectContext      = "project_context"
	FieldActivationRules     = "activation_rules"
)

// Step indices.
const (
	StepUniversalPrinciples = iota
	StepPersonas
	StepProjectContext
	StepActivationRules
)

// Step describes one wizard screen.
type Step struct {
	Title       string
	Description string
	// Fields are the top-level fields edited on this step.
	Fields []string
	// Required is the subset of Fields that must be non-blank to advance.
	Required []string
}

// Steps is the ordered step list. The last entry is terminal: its forward
// action is generation rather than advancing.
var Steps = []Step{
	{
		Title:       "Universal Principles",
		Description: "Principles every persona follows regardless of the task at hand.",
		Fields:      []string{FieldUniversalPrinciples},
		Required:    []string{FieldUniversalPrinciples},
	},
	{
		Title:       "Expert Personas",
		Description: "The specialists Claude should be able to switch between.",
		Fields:      []string{FieldPersonas},
		Required:    []string{FieldPersonas},
	},
	{
		Title:       "Project Context",
		Description: "What the project is, how it is built and what matters to the team.",
		Fields:      []string{FieldProjectContext},
		Required:    []string{FieldProjectContext},
	},
	{
		Title:       "Activation Rules",
		Description: "When each persona should take over.",
		Fields:      []string{FieldActivationRules},
		Required:    []string{FieldActivationRules},
	},
}

// LastStep is the index of the terminal step.
var LastStep = len(Steps) - 1

var fieldLabels = map[string]string{
	FieldUniversalPrinciples: "Universal principles",
	FieldProjectContext:      "Project context",
	FieldActivationRules:     "Activation rules",
}

// Navigation and editing errors.
var (
	ErrStepIncomplete = errors.New("step has missing required fields")
	ErrLastStep       = errors.New("already at the last step")
	ErrFirstStep      = errors.New("already at the first step")
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidStep    = errors.New("invalid step")
)

// FieldError reports a problem with one field. Persona is the persona index
// for persona fields and -1 otherwise.
type FieldError struct {
	Field   string
	Persona int
	Message string
}

func (e *FieldError) Error() string {
	if e.Persona >= 0 {
		return fmt.Sprintf("persona %d: %s", e.Persona+1, e.Message)
	}
	return e.Message
}

// ValidationResult is returned by Validate. OK is true iff Errors is empty.
type ValidationResult struct {
	OK     bool
	Errors []FieldError
}

// ValidationError is returned by Advance when the current step is incomplete.
type ValidationError struct {
	Step   int
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i := range e.Errors {
		msgs[i] = e.Errors[i].Error()
	}
	return fmt.Sprintf("%s: %s", Steps[e.Step].Title, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrStepIncomplete }

// Validate checks the required fields of step against s. It never fails;
// an out-of-range step yields a single error entry.
func Validate(s State, step int) ValidationResult {
	if step < 0 || step >= len(Steps) {
		return ValidationResult{Errors: []FieldError{{Persona: -1, Message: ErrInvalidStep.Error()}}}
	}

	var errs []FieldError
	for _, field := range Steps[step].Required {
		if field == FieldPersonas {
			for i := range s.Personas {
				errs = append(errs, ValidatePersona(s.Personas[i], i)...)
			}
			continue
		}
		value, _ := s.Field(field)
		if isBlank(value) {
			errs = append(errs, FieldError{Field: field, Persona: -1, Message: fieldLabels[field] + " is required"})
		}
	}
	return ValidationResult{OK: len(errs) == 0, Errors: errs}
}

// ValidatePersona reports the inline errors for a single persona entry.
func ValidatePersona(p Persona, index int) []FieldError {
	var errs []FieldError
	if isBlank(p.Name) {
		errs = append(errs, FieldError{Field: PersonaName, Persona: index, Message: "Name is required"})
	}
	if isBlank(p.Role) {
		errs = append(errs, FieldError{Field: PersonaRole, Persona: index, Message: "Role is required"})
	}
	return errs
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
