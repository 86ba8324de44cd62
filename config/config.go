// Package config loads language-table configuration from TOML files and
// keeps it hot-reloadable: query files and the table itself can change on
// disk while a manager is running.
package config

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/toml"
)

// Validatable is an optional interface config structs implement to validate
// themselves before being swapped in.
type Validatable interface {
	Validate() error
}

// LoadTOML loads a TOML file into a struct of type T. A missing file yields
// the provided defaults. If T implements Validatable, validation failures
// reject the load.
func LoadTOML[T any](path string, defaults *T) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := new(T)
	if defaults != nil {
		*cfg = *defaults
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v, ok := any(cfg).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Store holds the current configuration value with atomic read/swap
// semantics.
type Store[T any] struct {
	value atomic.Pointer[T]

	mu        sync.RWMutex
	listeners []func(old, updated *T)
}

// NewStore creates a store with the given initial value.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{}
	s.value.Store(initial)
	return s
}

// Get returns the current value without locking.
func (s *Store[T]) Get() *T {
	return s.value.Load()
}

// Swap atomically replaces the value and notifies listeners.
func (s *Store[T]) Swap(updated *T) *T {
	old := s.value.Swap(updated)

	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(old, updated)
	}
	return old
}

// OnChange registers a listener called on every Swap.
func (s *Store[T]) OnChange(fn func(old, updated *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
