package engine

import (
	"context"

	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/placeholder"
	"github.com/promptab/promptvar/internal/variable"
)

// State is the interactive replacement state of a Session.
type State string

const (
	// StateIdle means no interactive action is pending.
	StateIdle State = "idle"

	// StateAwaitingInput means one occurrence is selected and the session
	// holds an editable candidate value for it.
	StateAwaitingInput State = "awaiting_input"

	// StateApplying means a replacement or variable write is in flight.
	StateApplying State = "applying"
)

// Session is one editing session over one text buffer. All methods are for
// a single cooperative caller; the session never mutates its text except
// through a confirmed replacement or an insertion, and both force the next
// selection to come from a fresh parse.
type Session struct {
	text  string
	store *variable.Store
	state State

	// selection captured at Select time; offsets are valid only against
	// the exact text snapshot they were parsed from.
	selected  placeholder.Occurrence
	candidate string
}

// NewSession starts an editing session over text.
func NewSession(text string, store *variable.Store) *Session {
	return &Session{
		text:  text,
		store: store,
		state: StateIdle,
	}
}

// Text returns the current text buffer.
func (s *Session) Text() string {
	return s.text
}

// State returns the current interactive state.
func (s *Session) State() State {
	return s.state
}

// Candidate returns the editable candidate value of the pending selection:
// the matching variable's value when the selected occurrence is resolved,
// empty otherwise.
func (s *Session) Candidate() string {
	return s.candidate
}

// View returns the current view model (resolved, unresolved, preview).
func (s *Session) View(ctx context.Context) (*View, error) {
	vars, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	view := BuildView(s.text, vars)
	return &view, nil
}

// Select captures one occurrence for interactive replacement. The occurrence
// must appear in a fresh parse of the current text; a selection carried over
// from an earlier snapshot is rejected rather than trusted, since any edit
// shifts all offsets after the edited span.
func (s *Session) Select(ctx context.Context, occ placeholder.Occurrence) error {
	if s.state != StateIdle {
		return errors.NewInvalidState("a selection is already pending; confirm or cancel it first")
	}

	if !s.isCurrent(occ) {
		return errors.NewInvalidState("selection does not match the current text; re-parse and select again")
	}

	candidate := ""
	v, err := s.store.Get(ctx, occ.Name)
	if err == nil {
		candidate = v.Value
	} else if !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	s.selected = occ
	s.candidate = candidate
	s.state = StateAwaitingInput
	return nil
}

// ConfirmExisting resolves the selected occurrence with the existing
// variable's value. The store is only read, never written.
func (s *Session) ConfirmExisting(ctx context.Context) error {
	if s.state != StateAwaitingInput {
		return errors.NewInvalidState("no pending selection")
	}

	s.state = StateApplying
	v, err := s.store.Get(ctx, s.selected.Name)
	if err != nil {
		// Nothing was replaced; the selection stays open for a retry or cancel.
		s.state = StateAwaitingInput
		return err
	}

	s.apply(v.Value)
	return nil
}

// ConfirmValue upserts the selected name with the given value, then replaces
// the selected occurrence with the value the store persisted. If the write
// fails the text is untouched and the selection stays pending, so the view
// never reflects an unpersisted change.
func (s *Session) ConfirmValue(ctx context.Context, value string) error {
	if s.state != StateAwaitingInput {
		return errors.NewInvalidState("no pending selection")
	}

	s.state = StateApplying
	v, err := s.store.UpsertByName(ctx, s.selected.Name, value, "", "")
	if err != nil {
		s.state = StateAwaitingInput
		return err
	}

	s.apply(v.Value)
	return nil
}

// Cancel discards the pending selection without any mutation.
func (s *Session) Cancel() {
	s.selected = placeholder.Occurrence{}
	s.candidate = ""
	s.state = StateIdle
}

// Insert appends a placeholder for name to the end of the text, in whichever
// syntax the surrounding document already uses. It does not go through the
// selection flow: there is no existing occurrence to resolve.
func (s *Session) Insert(name string) error {
	if name == "" {
		return errors.NewInvalidRequest("name is required")
	}
	if s.state != StateIdle {
		return errors.NewInvalidState("finish the pending selection before editing the text")
	}

	s.text = s.text + " " + placeholder.Wrap(name, placeholder.DetectSyntax(s.text))
	return nil
}

// apply performs the single-occurrence replacement and returns to Idle.
// Only the captured occurrence is replaced; other occurrences of the same
// name stay untouched until independently selected.
func (s *Session) apply(value string) {
	s.text = Replace(s.text, s.selected.Start, s.selected.End, value)
	s.selected = placeholder.Occurrence{}
	s.candidate = ""
	s.state = StateIdle
}

// isCurrent reports whether occ appears in a fresh parse of the current text.
func (s *Session) isCurrent(occ placeholder.Occurrence) bool {
	for _, current := range placeholder.ScanBoth(s.text) {
		if current == occ {
			return true
		}
	}
	return false
}
