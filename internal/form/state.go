package form

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidOption = errors.New("invalid option")
)

// State holds the raw string value of every form field. Every catalog field
// is present from construction on; values are stored as typed by the user and
// only coerced when a Payload is built.
type State struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewState() *State {
	values := make(map[string]string, len(catalog))
	for _, f := range catalog {
		values[f.Name] = f.Default
	}
	return &State{values: values}
}

// Set replaces exactly one entry. Enumerated fields only accept one of their
// option codes.
func (s *State) Set(name, raw string) error {
	f, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if f.IsSelect() && !f.HasOption(raw) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidOption, raw, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = raw
	return nil
}

func (s *State) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Snapshot returns a copy of all values.
func (s *State) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
