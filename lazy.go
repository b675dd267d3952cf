package hive

import (
	"fmt"
	"sync"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for breaking circular dependencies or deferring
// resolution of expensive services until they're actually needed.
//
// Usage:
//
//	hive.Factory(ServiceToken,
//	    func(inj *hive.Injector) *Service {
//	        return &Service{cache: hive.NewLazy[*Cache](inj, CacheToken)}
//	    },
//	    hive.InjectorToken,
//	)
type Lazy[T any] struct {
	injector *Injector
	token    any
	once     sync.Once
	value    T
	err      error
	resolved bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](inj *Injector, token any) *Lazy[T] {
	return &Lazy[T]{
		injector: inj,
		token:    token,
	}
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = Resolve[T](l.injector, l.token)
		l.resolved = l.err == nil
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.Name(), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved
}

// Name returns the display name of the dependency.
func (l *Lazy[T]) Name() string {
	return displayName(resolveForwardRef(l.token))
}

// OptionalLazy wraps an optional dependency that is resolved on first access.
// Returns the zero value without error if nothing provides the dependency.
type OptionalLazy[T any] struct {
	injector *Injector
	token    any
	once     sync.Once
	value    T
	err      error
	resolved bool
	found    bool
}

// NewOptionalLazy creates a new optional lazy dependency wrapper.
func NewOptionalLazy[T any](inj *Injector, token any) *OptionalLazy[T] {
	return &OptionalLazy[T]{
		injector: inj,
		token:    token,
	}
}

// Get resolves the dependency and returns it.
func (l *OptionalLazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.resolved = true

		if !l.injector.Has(l.token) {
			return
		}

		l.value, l.err = Resolve[T](l.injector, l.token)
		l.found = l.err == nil
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
// Returns the zero value if the dependency is not found (does not panic).
func (l *OptionalLazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("optional lazy dependency %s failed: %v", l.Name(), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *OptionalLazy[T]) IsResolved() bool {
	return l.resolved
}

// IsFound returns true if the dependency was found (only valid after resolution).
func (l *OptionalLazy[T]) IsFound() bool {
	return l.found
}

// Name returns the display name of the dependency.
func (l *OptionalLazy[T]) Name() string {
	return displayName(resolveForwardRef(l.token))
}
