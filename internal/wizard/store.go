package wizard

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mark3labs/claudemd/internal/logger"
)

// Listener is called with a snapshot of the state after every change.
type Listener func(State)

// Store owns the wizard state. All mutations go through its named methods;
// readers get deep copies. Safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store holding DefaultState.
func NewStore() *Store {
	return &Store{state: DefaultState(), listeners: make(map[int]Listener)}
}

// NewStoreFrom creates a store seeded with s, normalized.
func NewStoreFrom(s State) *Store {
	st := NewStore()
	s = s.Clone()
	s.Normalize()
	st.state = s
	return st
}

// Get returns a snapshot of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// update applies fn under the lock and notifies listeners outside it when fn
// reports a change.
func (s *Store) update(fn func(*State) (bool, error)) error {
	s.mu.Lock()
	changed, err := fn(&s.state)
	var snapshot State
	var listeners []Listener
	if changed {
		snapshot = s.state.Clone()
		ids := make([]int, 0, len(s.listeners))
		for id := range s.listeners {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			listeners = append(listeners, s.listeners[id])
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.Clone())
	}
	return err
}

// Validate runs step validation against the current state.
func (s *Store) Validate(step int) ValidationResult {
	return Validate(s.Get(), step)
}

// CanAdvance reports whether Advance would succeed.
func (s *Store) CanAdvance() bool {
	st := s.Get()
	return st.CurrentStep < LastStep && Validate(st, st.CurrentStep).OK
}

// CanRetreat reports whether Retreat would succeed.
func (s *Store) CanRetreat() bool {
	return s.Get().CurrentStep > 0
}

// IsTerminal reports whether the wizard is on its last step.
func (s *Store) IsTerminal() bool {
	return s.Get().CurrentStep == LastStep
}

// Advance moves to the next step. It fails with ErrLastStep on the terminal
// step and with a *ValidationError (matching ErrStepIncomplete) while the
// current step has missing required fields. State is unchanged on error.
func (s *Store) Advance() error {
	return s.update(func(st *State) (bool, error) {
		if st.CurrentStep >= LastStep {
			return false, ErrLastStep
		}
		if res := Validate(*st, st.CurrentStep); !res.OK {
			return false, &ValidationError{Step: st.CurrentStep, Errors: res.Errors}
		}
		st.CurrentStep++
		logger.Debug("Wizard advanced to step %d (%s)", st.CurrentStep, Steps[st.CurrentStep].Title)
		return true, nil
	})
}

// Retreat moves to the previous step, or returns ErrFirstStep at step 0.
func (s *Store) Retreat() error {
	return s.update(func(st *State) (bool, error) {
		if st.CurrentStep == 0 {
			return false, ErrFirstStep
		}
		st.CurrentStep--
		logger.Debug("Wizard retreated to step %d (%s)", st.CurrentStep, Steps[st.CurrentStep].Title)
		return true, nil
	})
}

// GoTo jumps back to an earlier step. Moving forward is only possible
// through Advance.
func (s *Store) GoTo(step int) error {
	return s.update(func(st *State) (bool, error) {
		if step < 0 || step > st.CurrentStep {
			return false, fmt.Errorf("%w: %d", ErrInvalidStep, step)
		}
		changed := st.CurrentStep != step
		st.CurrentStep = step
		return changed, nil
	})
}

// EditField sets a top-level text field that belongs to step. It never
// changes the current step.
func (s *Store) EditField(step int, field, value string) error {
	if step < 0 || step >= len(Steps) {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	if field == FieldPersonas || !slices.Contains(Steps[step].Fields, field) {
		return fmt.Errorf("%w %q on step %d", ErrUnknownField, field, step)
	}
	return s.update(func(st *State) (bool, error) {
		switch field {
		case FieldUniversalPrinciples:
			st.UniversalPrinciples = value
		case FieldProjectContext:
			st.ProjectContext = value
		case FieldActivationRules:
			st.ActivationRules = value
		}
		return true, nil
	})
}

// AddPersona appends a default persona and returns its index.
func (s *Store) AddPersona() int {
	var index int
	_ = s.update(func(st *State) (bool, error) {
		st.Personas = append(st.Personas, DefaultPersona())
		index = len(st.Personas) - 1
		return true, nil
	})
	return index
}

// RemovePersona removes the persona at index. Removing the last remaining
// persona or an out-of-range index is a silent no-op.
func (s *Store) RemovePersona(index int) {
	_ = s.update(func(st *State) (bool, error) {
		if len(st.Personas) <= 1 || index < 0 || index >= len(st.Personas) {
			return false, nil
		}
		st.Personas = slices.Delete(st.Personas, index, index+1)
		return true, nil
	})
}

// UpdatePersona replaces the persona at index wholesale. Out-of-range
// indices are ignored.
func (s *Store) UpdatePersona(index int, p Persona) {
	_ = s.update(func(st *State) (bool, error) {
		if index < 0 || index >= len(st.Personas) {
			return false, nil
		}
		if !p.ExpertiseLevel.Valid() {
			p.ExpertiseLevel = ExpertiseSenior
		}
		st.Personas[index] = p
		return true, nil
	})
}

// SetPersonaField edits a single field of the persona at index.
func (s *Store) SetPersonaField(index int, field, value string) error {
	return s.update(func(st *State) (bool, error) {
		if index < 0 || index >= len(st.Personas) {
			return false, fmt.Errorf("persona index %d out of range", index)
		}
		if err := st.Personas[index].set(index, field, value); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Reset restores DefaultState.
func (s *Store) Reset() {
	_ = s.update(func(st *State) (bool, error) {
		*st = DefaultState()
		return true, nil
	})
}

// SetGenerating marks a generation request as in flight and clears the
// previous outcome.
func (s *Store) SetGenerating() {
	_ = s.update(func(st *State) (bool, error) {
		st.IsGenerating = true
		st.GenerationError = ""
		return true, nil
	})
}

// SetGenerated stores a successful generation.
func (s *Store) SetGenerated(content string) {
	_ = s.update(func(st *State) (bool, error) {
		st.IsGenerating = false
		st.GeneratedContent = content
		st.GenerationError = ""
		return true, nil
	})
}

// SetGenerationError stores a failed generation. Earlier generated content
// is kept so a failed retry does not lose it.
func (s *Store) SetGenerationError(msg string) {
	_ = s.update(func(st *State) (bool, error) {
		st.IsGenerating = false
		st.GenerationError = msg
		return true, nil
	})
}

// SetGeneratedContent replaces the generated document, e.g. after the user
// edits it.
func (s *Store) SetGeneratedContent(content string) {
	_ = s.update(func(st *State) (bool, error) {
		st.GeneratedContent = content
		return true, nil
	})
}

// DismissError clears GenerationError.
func (s *Store) DismissError() {
	_ = s.update(func(st *State) (bool, error) {
		if st.GenerationError == "" {
			return false, nil
		}
		st.GenerationError = ""
		return true, nil
	})
}
