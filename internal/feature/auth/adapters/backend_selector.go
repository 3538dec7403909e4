package adapters

import (
	"fmt"
	"sync/atomic"

	"kurukshetra_backend/internal/feature/auth/domain"
)

// BackendSelector holds the name of the active (primary) backend.
// The value is read atomically once per operation and may be switched at runtime.
type BackendSelector struct {
	active   atomic.Value // string
	backends map[string]UserBackend
	order    []string
}

// NewBackendSelector registers exactly two backends and makes initial the primary.
func NewBackendSelector(initial string, a, b UserBackend) (*BackendSelector, error) {
	if a == nil || b == nil || a.Name() == b.Name() {
		return nil, fmt.Errorf("backend selector needs two distinct backends")
	}
	s := &BackendSelector{
		backends: map[string]UserBackend{a.Name(): a, b.Name(): b},
		order:    []string{a.Name(), b.Name()},
	}
	if err := s.Set(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the name of the primary backend.
func (s *BackendSelector) Active() string {
	return s.active.Load().(string)
}

// Set switches the primary backend.
func (s *BackendSelector) Set(name string) error {
	if _, ok := s.backends[name]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownBackend, name)
	}
	s.active.Store(name)
	return nil
}

// Names returns the registered backend names.
func (s *BackendSelector) Names() []string {
	return append([]string(nil), s.order...)
}

// Pair returns the primary and secondary backends for a single operation.
func (s *BackendSelector) Pair() (primary, secondary UserBackend) {
	active := s.Active()
	for _, name := range s.order {
		if name == active {
			primary = s.backends[name]
		} else {
			secondary = s.backends[name]
		}
	}
	return primary, secondary
}
