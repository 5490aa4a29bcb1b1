package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Step is a named, ordered group of actions compiled into one script function.
type Step struct {
	ID      string
	Name    string
	Actions []Action
}

// NewStep creates an empty step with a fresh id.
func NewStep(name string) *Step {
	return &Step{ID: uuid.NewString(), Name: name}
}

// InsertAction inserts a at position pos (0..len).
func (s *Step) InsertAction(pos int, a Action) error {
	if pos < 0 || pos > len(s.Actions) {
		return fmt.Errorf("step %q: insert position %d out of range [0,%d]", s.Name, pos, len(s.Actions))
	}
	s.Actions = append(s.Actions, nil)
	copy(s.Actions[pos+1:], s.Actions[pos:])
	s.Actions[pos] = a
	return nil
}

// AppendAction adds a after the last action.
func (s *Step) AppendAction(a Action) {
	s.Actions = append(s.Actions, a)
}

// RemoveAction deletes the action at index i.
func (s *Step) RemoveAction(i int) error {
	if i < 0 || i >= len(s.Actions) {
		return fmt.Errorf("step %q: action index %d out of range", s.Name, i)
	}
	s.Actions = append(s.Actions[:i], s.Actions[i+1:]...)
	return nil
}

// Scenario is the root aggregate: an ordered list of steps.
type Scenario struct {
	Steps []*Step `yaml:"steps" json:"steps"`
}

// New returns an empty scenario.
func New() *Scenario {
	return &Scenario{}
}

// AddStep appends a new step with the given name.
func (sc *Scenario) AddStep(name string) *Step {
	st := NewStep(name)
	sc.Steps = append(sc.Steps, st)
	return st
}

// RemoveStep deletes the step at index i together with its actions.
func (sc *Scenario) RemoveStep(i int) error {
	if i < 0 || i >= len(sc.Steps) {
		return fmt.Errorf("step index %d out of range", i)
	}
	sc.Steps = append(sc.Steps[:i], sc.Steps[i+1:]...)
	return nil
}

// StepByID returns the step with the given id.
func (sc *Scenario) StepByID(id string) (*Step, bool) {
	for _, st := range sc.Steps {
		if st.ID == id {
			return st, true
		}
	}
	return nil, false
}

// Entry is one row of the scenario in file order: a step row (Action nil,
// ActionIndex -1) or one of its actions.
type Entry struct {
	Step        *Step
	StepIndex   int
	Action      Action
	ActionIndex int
}

// IsStep reports whether the entry is the step row itself.
func (e Entry) IsStep() bool { return e.Action == nil }

// Entries lists every step row followed by its actions.
func (sc *Scenario) Entries() []Entry {
	var out []Entry
	for si, st := range sc.Steps {
		out = append(out, Entry{Step: st, StepIndex: si, ActionIndex: -1})
		for ai, a := range st.Actions {
			out = append(out, Entry{Step: st, StepIndex: si, Action: a, ActionIndex: ai})
		}
	}
	return out
}

// Lookup maps a flattened row index (as in Entries) to its step and action.
func (sc *Scenario) Lookup(index int) (Entry, bool) {
	if index < 0 {
		return Entry{}, false
	}
	row := 0
	for si, st := range sc.Steps {
		if index == row {
			return Entry{Step: st, StepIndex: si, ActionIndex: -1}, true
		}
		if index <= row+len(st.Actions) {
			ai := index - row - 1
			return Entry{Step: st, StepIndex: si, Action: st.Actions[ai], ActionIndex: ai}, true
		}
		row += len(st.Actions) + 1
	}
	return Entry{}, false
}

// InsertRow returns the flattened index right after the last action of the
// step at stepIndex, which is where newly recorded actions appear.
func (sc *Scenario) InsertRow(stepIndex int) (int, bool) {
	if stepIndex < 0 || stepIndex >= len(sc.Steps) {
		return 0, false
	}
	row := 0
	for si, st := range sc.Steps {
		row += len(st.Actions) + 1
		if si == stepIndex {
			return row, true
		}
	}
	return 0, false
}

// ActionByID finds an action anywhere in the scenario.
func (sc *Scenario) ActionByID(id string) (Entry, bool) {
	for si, st := range sc.Steps {
		for ai, a := range st.Actions {
			if a.ActionID() == id {
				return Entry{Step: st, StepIndex: si, Action: a, ActionIndex: ai}, true
			}
		}
	}
	return Entry{}, false
}

// StepIndex returns the position of the step with the given id.
func (sc *Scenario) StepIndex(id string) (int, bool) {
	for i, st := range sc.Steps {
		if st.ID == id {
			return i, true
		}
	}
	return -1, false
}

// EditRecord replaces the properties of record index in the target path of
// the action with the given id, parsing enumeration text.
func (sc *Scenario) EditRecord(actionID string, index int, text string) error {
	e, ok := sc.ActionByID(actionID)
	if !ok {
		return fmt.Errorf("action %s: %w", actionID, ErrNotFound)
	}
	pa, ok := e.Action.(PathAction)
	if !ok {
		return fmt.Errorf("action %s (%s) has no element path", actionID, e.Action.Kind())
	}
	rec, ok := pa.TargetRecord(index)
	if !ok {
		return fmt.Errorf("action %s: record %d: %w", actionID, index, ErrNotFound)
	}
	return rec.ParseEnumeration(text)
}
