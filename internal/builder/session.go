// Package builder holds an in-progress query: the selected class, its
// conditions and the pipeline steps picked for it.
package builder

import (
	"errors"
	"fmt"

	"github.com/spinode/spinode/internal/meta"
	"github.com/spinode/spinode/internal/moquery"
)

// Session errors.
var (
	ErrNoClass         = errors.New("no class selected")
	ErrUnknownProperty = errors.New("property not defined on class")
	ErrUnknownStep     = errors.New("unknown pipeline step")
	ErrIndexOutOfRange = errors.New("condition index out of range")
)

// Session is one user's in-progress query. It is not safe for concurrent use.
type Session struct {
	class    string
	props    []meta.PropertyDescriptor
	names    map[string]bool
	conds    []moquery.Condition
	selected map[moquery.StepID]bool
}

// New starts a session for className. props may be empty when the schema store
// knows nothing about the class; properties are then not checked.
func New(className string, props []meta.PropertyDescriptor) (*Session, error) {
	if className == "" {
		return nil, ErrNoClass
	}
	return &Session{
		class:    className,
		props:    props,
		names:    meta.PropertyNames(props),
		selected: make(map[moquery.StepID]bool),
	}, nil
}

// Class returns the class being queried.
func (s *Session) Class() string { return s.class }

// Conditions returns a copy of the current condition list.
func (s *Session) Conditions() []moquery.Condition {
	out := make([]moquery.Condition, len(s.conds))
	copy(out, s.conds)
	return out
}

// PipelineOptions derives the pipeline steps offered for the class.
func (s *Session) PipelineOptions() []meta.PipelineOption {
	return meta.DerivePipelineOptions(s.names)
}

// Templates derives the starter templates offered for the class.
func (s *Session) Templates() []meta.Template {
	return meta.DeriveTemplates(s.props)
}

// Add validates raw input and appends a condition. Incomplete input leaves
// the list unchanged.
func (s *Session) Add(property, operator, value string) error {
	c, err := moquery.NewCondition(property, operator, value)
	if err != nil {
		return err
	}
	if len(s.names) > 0 && !s.names[c.Property] {
		return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, s.class, c.Property)
	}
	s.conds = append(s.conds, c)
	return nil
}

// Remove drops the condition at index i.
func (s *Session) Remove(i int) error {
	if i < 0 || i >= len(s.conds) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	s.conds = append(s.conds[:i:i], s.conds[i+1:]...)
	return nil
}

// Clear drops all conditions. Pipeline selection is kept.
func (s *Session) Clear() {
	s.conds = nil
}

// Select activates a pipeline step.
func (s *Session) Select(id moquery.StepID) error {
	if !id.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	s.selected[id] = true
	return nil
}

// Deselect deactivates a pipeline step.
func (s *Session) Deselect(id moquery.StepID) {
	delete(s.selected, id)
}

// Selected reports whether a step is active.
func (s *Session) Selected(id moquery.StepID) bool {
	return s.selected[id]
}

// SelectedSteps returns the active steps in pipeline order.
func (s *Session) SelectedSteps() []moquery.StepID {
	out := []moquery.StepID{}
	for _, id := range moquery.Steps() {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// ApplyTemplate replaces the condition list and pipeline selection with the
// template's. Nothing from the previous state survives.
func (s *Session) ApplyTemplate(t meta.Template) {
	s.conds = make([]moquery.Condition, len(t.Conditions))
	copy(s.conds, t.Conditions)
	s.selected = make(map[moquery.StepID]bool, len(t.Pipes))
	for _, id := range t.Pipes {
		s.selected[id] = true
	}
}

// Command renders the current state.
func (s *Session) Command() string {
	return moquery.RenderPipeline(s.class, s.conds, moquery.ResolvePipeline(s.selected))
}
