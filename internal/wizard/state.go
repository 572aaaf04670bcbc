// Package wizard holds the CLAUDE.md configuration wizard: the collected
// fields, the ordered step list and the navigation rules between steps.
package wizard

import "slices"

// ExpertiseLevel is a persona's seniority tier.
type ExpertiseLevel string

const (
	ExpertiseJunior    ExpertiseLevel = "junior"
	ExpertiseMid       ExpertiseLevel = "mid"
	ExpertiseSenior    ExpertiseLevel = "senior"
	ExpertisePrincipal ExpertiseLevel = "principal"
)

// ExpertiseLevels lists the tiers in ascending order.
var ExpertiseLevels = []ExpertiseLevel{ExpertiseJunior, ExpertiseMid, ExpertiseSenior, ExpertisePrincipal}

// Valid reports whether l is one of the known tiers.
func (l ExpertiseLevel) Valid() bool {
	return slices.Contains(ExpertiseLevels, l)
}

// Next returns the following tier, wrapping around after principal.
func (l ExpertiseLevel) Next() ExpertiseLevel {
	i := slices.Index(ExpertiseLevels, l)
	return ExpertiseLevels[(i+1)%len(ExpertiseLevels)]
}

// Persona field names accepted by Store.SetPersonaField.
const (
	PersonaName               = "name"
	PersonaRole               = "role"
	PersonaExpertiseLevel     = "expertise_level"
	PersonaCorePrinciples     = "core_principles"
	PersonaTechExpertise      = "tech_expertise"
	PersonaCommunicationStyle = "communication_style"
	PersonaSpecificStandards  = "specific_standards"
)

// Persona is one expert persona the generated CLAUDE.md should define.
type Persona struct {
	Name               string         `json:"name" yaml:"name"`
	Role               string         `json:"role" yaml:"role"`
	ExpertiseLevel     ExpertiseLevel `json:"expertise_level" yaml:"expertise_level"`
	CorePrinciples     string         `json:"core_principles" yaml:"core_principles"`
	TechExpertise      string         `json:"tech_expertise" yaml:"tech_expertise"`
	CommunicationStyle string         `json:"communication_style" yaml:"communication_style"`
	SpecificStandards  string         `json:"specific_standards" yaml:"specific_standards"`
}

// DefaultPersona returns the entry appended by AddPersona.
func DefaultPersona() Persona {
	return Persona{ExpertiseLevel: ExpertiseSenior}
}

// Field returns the value of a persona field by name.
func (p Persona) Field(name string) (string, bool) {
	switch name {
	case PersonaName:
		return p.Name, true
	case PersonaRole:
		return p.Role, true
	case PersonaExpertiseLevel:
		return string(p.ExpertiseLevel), true
	case PersonaCorePrinciples:
		return p.CorePrinciples, true
	case PersonaTechExpertise:
		return p.TechExpertise, true
	case PersonaCommunicationStyle:
		return p.CommunicationStyle, true
	case PersonaSpecificStandards:
		return p.SpecificStandards, true
	}
	return "", false
}

func (p *Persona) set(index int, name, value string) error {
	switch name {
	case PersonaName:
		p.Name = value
	case PersonaRole:
		p.Role = value
	case PersonaExpertiseLevel:
		level := ExpertiseLevel(value)
		if !level.Valid() {
			return &FieldError{Field: name, Persona: index, Message: "Expertise level must be junior, mid, senior or principal"}
		}
		p.ExpertiseLevel = level
	case PersonaCorePrinciples:
		p.CorePrinciples = value
	case PersonaTechExpertise:
		p.TechExpertise = value
	case PersonaCommunicationStyle:
		p.CommunicationStyle = value
	case PersonaSpecificStandards:
		p.SpecificStandards = value
	default:
		return ErrUnknownField
	}
	return nil
}

// State is everything the wizard has collected so far.
type State struct {
	CurrentStep         int       `json:"current_step" yaml:"-"`
	UniversalPrinciples string    `json:"universal_principles" yaml:"universal_principles"`
	Personas            []Persona `json:"personas" yaml:"personas"`
	ProjectContext      string    `json:"project_context" yaml:"project_context"`
	ActivationRules     string    `json:"activation_rules" yaml:"activation_rules"`

	IsGenerating     bool   `json:"is_generating" yaml:"-"`
	GeneratedContent string `json:"generated_content" yaml:"-"`
	// GenerationError is empty when the last generation did not fail.
	GenerationError string `json:"generation_error,omitempty" yaml:"-"`
}

// DefaultState returns the state a fresh wizard starts from.
func DefaultState() State {
	return State{Personas: []Persona{DefaultPersona()}}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Personas = slices.Clone(s.Personas)
	return s
}

// Normalize fills in invariants for states read from outside the store,
// such as a YAML input file: at least one persona, valid expertise levels.
func (s *State) Normalize() {
	if len(s.Personas) == 0 {
		s.Personas = []Persona{DefaultPersona()}
	}
	for i := range s.Personas {
		if !s.Personas[i].ExpertiseLevel.Valid() {
			s.Personas[i].ExpertiseLevel = ExpertiseSenior
		}
	}
	if s.CurrentStep < 0 || s.CurrentStep >= len(Steps) {
		s.CurrentStep = 0
	}
}

// Field returns a top-level text field by name.
func (s State) Field(name string) (string, bool) {
	switch name {
	case FieldUniversalPrinciples:
		return s.UniversalPrinciples, true
	case FieldProjectContext:
		return s.ProjectContext, true
	case FieldActivationRules:
		return s.ActivationRules, true
	}
	return "", false
}
