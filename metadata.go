package hive

import (
	"reflect"
	"sync"
)

// MetadataSource supplies the dependency list of a class constructor, one
// entry per parameter in declaration order. It is the seam for code
// generators and registration DSLs; the injector never derives tokens from
// parameter types on its own.
type MetadataSource interface {
	ParamsFor(ctor any) ([]Dependency, bool)
}

// MetadataRegistry is an in-memory MetadataSource filled by explicit
// registration calls, typically from generated init functions.
//
// Constructors are identified by their code pointer, so closures created
// from the same function literal share one entry.
type MetadataRegistry struct {
	params map[uintptr][]Dependency
	mu     sync.RWMutex
}

// NewMetadataRegistry creates an empty registry.
func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{
		params: make(map[uintptr][]Dependency),
	}
}

// Register records the dependencies of ctor. Each entry is a bare token or
// a Dependency built with Optional, Self, SkipSelf or Inject.
func (m *MetadataRegistry) Register(ctor any, deps ...any) *MetadataRegistry {
	ptr, ok := funcPointer(ctor)
	if !ok {
		return m
	}

	params := make([]Dependency, len(deps))
	for i, dep := range deps {
		params[i] = asDependency(dep)
	}

	m.mu.Lock()
	m.params[ptr] = params
	m.mu.Unlock()

	return m
}

// ParamsFor implements MetadataSource.
func (m *MetadataRegistry) ParamsFor(ctor any) ([]Dependency, bool) {
	ptr, ok := funcPointer(ctor)
	if !ok {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	params, ok := m.params[ptr]

	return params, ok
}

func funcPointer(fn any) (uintptr, bool) {
	if fn == nil {
		return 0, false
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0, false
	}

	return v.Pointer(), true
}
