package series

import (
	"fmt"
	"strings"
	"sync"

	"enefviz/internal/errors"
)

// Selector holds the currently selected indicator of a dropdown with a fixed
// set of options. It only changes through Select.
type Selector struct {
	mu      sync.RWMutex
	options []string
	current string
}

// NewSelector builds a selector over exactly two options, starting on initial
func NewSelector(options []string, initial string) (*Selector, error) {
	if len(options) != 2 {
		return nil, errors.ConfigInvalid(fmt.Sprintf("selector needs exactly two options, got %d", len(options)))
	}
	if options[0] == options[1] {
		return nil, errors.ConfigInvalid("selector options must differ")
	}
	s := &Selector{options: append([]string(nil), options...)}
	if err := s.validate(initial); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	s.current = initial
	return s, nil
}

// Current returns the selected option
func (s *Selector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Options returns the enumerated choices
func (s *Selector) Options() []string {
	return append([]string(nil), s.options...)
}

// Select applies a user selection and reports whether it changed the
// current one. Values outside the options are rejected and leave the
// current selection untouched.
func (s *Selector) Select(value string) (bool, error) {
	if err := s.validate(value); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.current != value
	s.current = value
	return changed, nil
}

// Resolve treats a non-empty value as a selection event and returns the
// selection that should be rendered, and whether the event changed it.
func (s *Selector) Resolve(value string) (string, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.Current(), false, nil
	}
	changed, err := s.Select(value)
	if err != nil {
		return "", false, err
	}
	return value, changed, nil
}

func (s *Selector) validate(value string) error {
	for _, o := range s.options {
		if o == value {
			return nil
		}
	}
	return errors.InvalidInput(fmt.Sprintf("%q is not one of %s", value, strings.Join(s.options, ", ")))
}
