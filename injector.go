package hive

import (
	"context"
	"fmt"
	"sync"

	logger "github.com/xraph/go-utils/log"
	"github.com/xraph/go-utils/metrics"
)

// Injector resolves tokens to instances. It owns a provider store and an
// instance cache; lookups that miss bubble up through the parent chain.
// Instances are singletons per injector: each key is instantiated at most
// once in the injector that holds its provider.
type Injector struct {
	name       string
	parent     *Injector
	registry   *TokenRegistry
	selfKey    *Key
	normalizer *normalizer
	store      *providerStore
	instances  map[*Key]any

	// created lists instantiated values in creation order for teardown.
	created []createdInstance

	// callbacks are registered by children; parentHook is this injector's
	// entry in the parent's callbacks.
	callbacks  []*disposeCallback
	parentHook *disposeCallback
	children   int

	logger     logger.Logger
	metrics    metrics.Metrics
	metadata   MetadataSource
	middleware *middlewareChain
	strict     bool
	disposed   bool
	mu         sync.Mutex
}

// createdInstance is one value produced by a factory of this injector.
type createdInstance struct {
	key      *Key
	instance any
}

// New creates an injector holding providers. Pass WithParent to create a
// child; CreateChild is the usual shorthand.
func New(providers []Provider, opts ...Option) (*Injector, error) {
	cfg := buildConfig(opts)
	cfg.inherit()

	if cfg.logger == nil {
		cfg.logger = logger.NewNoopLogger()
	}

	if cfg.registry == nil {
		cfg.registry = NewTokenRegistry(cfg.logger)
	}

	inj := &Injector{
		name:       cfg.name,
		parent:     cfg.parent,
		registry:   cfg.registry,
		selfKey:    cfg.registry.SelfKey(),
		store:      newProviderStore(),
		instances:  make(map[*Key]any),
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		metadata:   cfg.metadata,
		middleware: newMiddlewareChain(cfg.middleware),
		strict:     cfg.strict != nil && *cfg.strict,
	}
	inj.normalizer = &normalizer{registry: inj.registry, metadata: inj.metadata}

	if err := inj.AddProviders(providers...); err != nil {
		return nil, err
	}

	if inj.parent != nil {
		if err := inj.parent.attachChild(inj); err != nil {
			return nil, err
		}
	} else if inj.name == "" {
		inj.name = "root"
	}

	inj.logger.Debug("injector created",
		logger.String("injector", inj.name),
		logger.Int("providers", len(providers)),
	)

	return inj, nil
}

// MustNew is like New but panics on error. Use only during startup.
func MustNew(providers []Provider, opts ...Option) *Injector {
	inj, err := New(providers, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create injector: %v", err))
	}

	return inj
}

// CreateChild creates an injector whose parent is i.
func (i *Injector) CreateChild(providers []Provider, opts ...Option) (*Injector, error) {
	opts = append(opts, WithParent(i))

	return New(providers, opts...)
}

// AddProvider registers one provider. Registering a non-multi key twice is
// accepted and reported as InvalidProviderStateError when the key is first
// instantiated, unless the injector was created WithStrictDuplicates.
func (i *Injector) AddProvider(p Provider) error {
	np, err := i.normalizer.normalize(p)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.disposed {
		return ErrInjectorDisposed
	}

	if i.strict && !np.multi {
		if existing, ok := i.store.get(np.key); ok && !existing.multi {
			return InvalidProviderStateError(np.key.Name(), len(existing.factories)+1)
		}
	}

	_, err = i.store.add(np)

	return err
}

// AddProviders registers providers in order, stopping at the first error.
func (i *Injector) AddProviders(providers ...Provider) error {
	for _, p := range providers {
		if err := i.AddProvider(p); err != nil {
			return err
		}
	}

	return nil
}

// Get resolves token in this injector or the nearest ancestor providing it.
func (i *Injector) Get(token any) (any, error) {
	return i.get(token, nil, false, newResolution())
}

// GetContext is like Get but continues the resolution carried by ctx. Inside
// a factory, pass the context injected under ContextToken.
func (i *Injector) GetContext(ctx context.Context, token any) (any, error) {
	return i.get(token, nil, false, resolutionFrom(ctx))
}

// GetOr is like Get but returns notFound instead of UnknownProviderError
// when nothing in the chain provides token.
func (i *Injector) GetOr(token any, notFound any) (any, error) {
	return i.get(token, notFound, true, newResolution())
}

func (i *Injector) get(token any, notFound any, hasNotFound bool, res *resolution) (any, error) {
	key, err := i.registry.Get(token)
	if err != nil {
		return nil, err
	}

	if err := i.middleware.beforeResolve(key.Name()); err != nil {
		return nil, err
	}

	value, found, err := i.getByKeyBubble(key, VisibilityNone, res)
	if err == nil && !found {
		if hasNotFound {
			value = notFound
		} else {
			err = UnknownProviderError(key.Name())
		}
	}

	if err != nil {
		value = nil
		i.countFailure()
	}

	if mwErr := i.middleware.afterResolve(key.Name(), value, err); mwErr != nil {
		return nil, mwErr
	}

	return value, err
}

// Has reports whether token resolves in this injector or any ancestor.
func (i *Injector) Has(token any) bool {
	key, ok := i.registry.Lookup(token)
	if !ok {
		return false
	}

	if key == i.selfKey {
		return true
	}

	for inj := i; inj != nil; inj = inj.parent {
		inj.mu.Lock()
		_, exists := inj.store.get(key)
		inj.mu.Unlock()

		if exists {
			return true
		}
	}

	return false
}

// Parent returns the parent injector, or nil for a root.
func (i *Injector) Parent() *Injector {
	return i.parent
}

// Name returns the injector name.
func (i *Injector) Name() string {
	return i.name
}

// Registry returns the token registry shared by this injector tree.
func (i *Injector) Registry() *TokenRegistry {
	return i.registry
}

// IsDisposed reports whether Dispose has been called.
func (i *Injector) IsDisposed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.disposed
}

// getByKeyBubble walks from the starting injector up the parent chain and
// returns the first value found. Self stops after the starting injector;
// SkipSelf starts at the parent.
func (i *Injector) getByKeyBubble(key *Key, visibility Visibility, res *resolution) (any, bool, error) {
	start := i
	if visibility == VisibilitySkipSelf {
		start = i.parent
	}

	for inj := start; inj != nil; inj = inj.parent {
		value, found, err := inj.getByKey(key, res)
		if err != nil {
			return nil, false, err
		}

		if found {
			return value, true, nil
		}

		if visibility == VisibilitySelf {
			break
		}
	}

	return nil, false, nil
}

// getByKey resolves key against this injector only.
func (i *Injector) getByKey(key *Key, res *resolution) (any, bool, error) {
	if key == i.selfKey {
		return i, true, nil
	}

	i.mu.Lock()

	if i.disposed {
		i.mu.Unlock()

		return nil, false, ErrInjectorDisposed
	}

	record, ok := i.store.get(key)
	if !ok {
		i.mu.Unlock()

		return nil, false, nil
	}

	if value, cached := i.instances[key]; cached {
		i.mu.Unlock()

		return value, true, nil
	}

	i.mu.Unlock()

	value, err := i.instantiate(record, res)
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

// attachChild registers the dispose callback of child.
func (i *Injector) attachChild(child *Injector) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.disposed {
		return ErrInjectorDisposed
	}

	i.children++
	if child.name == "" {
		child.name = fmt.Sprintf("%s.%d", i.name, i.children)
	}

	hook := &disposeCallback{fn: child.Dispose}
	i.callbacks = append(i.callbacks, hook)
	child.parentHook = hook

	return nil
}

func (i *Injector) countFailure() {
	if i.metrics != nil {
		i.metrics.Counter("hive_resolve_failures_total").Inc()
	}
}
