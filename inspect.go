package hive

import (
	"fmt"

	"github.com/xraph/go-utils/di"
)

// ProviderInfo contains diagnostic information about the provider of a key.
type ProviderInfo struct {
	// Key is the display name of the key.
	Key string

	// Injector is the name of the injector holding the provider, empty when
	// nothing in the chain provides the key.
	Injector string

	Multi        bool
	Factories    int
	Kinds        []string
	Deps         [][]di.Dep
	Instantiated bool
	Type         string
}

// Inspect returns diagnostic information about the provider that would
// serve token from this injector.
func (i *Injector) Inspect(token any) ProviderInfo {
	key, ok := i.registry.Lookup(token)
	if !ok {
		return ProviderInfo{Key: displayName(resolveForwardRef(token))}
	}

	info := ProviderInfo{Key: key.Name()}

	owner, rec := i.lookupRecord(key, VisibilityNone)
	if rec == nil {
		return info
	}

	owner.mu.Lock()
	defer owner.mu.Unlock()

	info.Injector = owner.name
	info.Multi = rec.multi
	info.Factories = len(rec.factories)

	for _, f := range rec.factories {
		info.Kinds = append(info.Kinds, f.kind.String())

		deps := make([]di.Dep, len(f.deps))
		for idx, dep := range f.deps {
			deps[idx] = dep.toDiDep()
		}

		info.Deps = append(info.Deps, deps)
	}

	if instance, cached := owner.instances[key]; cached {
		info.Instantiated = true
		info.Type = fmt.Sprintf("%T", instance)
	}

	return info
}

// Keys returns the display names of the keys registered directly on this
// injector, in registration order.
func (i *Injector) Keys() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	keys := i.store.keys()
	names := make([]string, len(keys))

	for idx, key := range keys {
		names[idx] = key.Name()
	}

	return names
}

// Len returns the number of keys registered directly on this injector.
func (i *Injector) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.store.len()
}

// InstanceCount returns the number of cached values of this injector.
func (i *Injector) InstanceCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return len(i.instances)
}
