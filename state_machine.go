package sweetshop

import (
	"github.com/goliatone/go-errors"
)

const textCodeInvalidTransition = "INVALID_SESSION_TRANSITION"

// ErrInvalidTransition is returned when a session attempts a transition
// outside of its transition table.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryInternal).
	WithTextCode(textCodeInvalidTransition).
	WithCode(errors.CodeConflict)

// State is the session lifecycle state.
type State string

const (
	StateBootstrapping State = "bootstrapping"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

func (s State) String() string {
	return string(s)
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateBootstrapping, StateAnonymous, StateAuthenticated:
		return true
	}
	return false
}

type transitionTable map[State]map[State]struct{}

// Bootstrapping is only ever left, never entered again. Authenticated to
// Authenticated covers logging in as somebody else.
func defaultTransitions() transitionTable {
	return transitionTable{
		StateBootstrapping: {
			StateAnonymous:     {},
			StateAuthenticated: {},
		},
		StateAnonymous: {
			StateAuthenticated: {},
		},
		StateAuthenticated: {
			StateAnonymous:     {},
			StateAuthenticated: {},
		},
	}
}

func (t transitionTable) check(from, to State) error {
	if from == to && to != StateAuthenticated {
		return nil
	}
	if allowed, ok := t[from]; ok {
		if _, exists := allowed[to]; exists {
			return nil
		}
	}
	return ErrInvalidTransition.Clone().WithMetadata(map[string]any{
		"from": from,
		"to":   to,
	})
}
