package hive

import (
	"context"

	logger "github.com/xraph/go-utils/log"
)

// resolution tracks the records being instantiated by one top-level Get so
// that re-entering a record is reported as a cycle instead of recursing.
type resolution struct {
	path []*resolvedProvider
}

func newResolution() *resolution {
	return &resolution{}
}

func (r *resolution) enter(record *resolvedProvider) error {
	for idx, p := range r.path {
		if p == record {
			cycle := make([]string, 0, len(r.path)-idx+1)
			for _, q := range r.path[idx:] {
				cycle = append(cycle, q.key.Name())
			}

			return CircularDependencyError(append(cycle, record.key.Name()))
		}
	}

	r.path = append(r.path, record)

	return nil
}

func (r *resolution) leave() {
	r.path = r.path[:len(r.path)-1]
}

type resolutionKey struct{}

func withResolution(ctx context.Context, res *resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, res)
}

// resolutionFrom returns the resolution carried by ctx, or a new one.
func resolutionFrom(ctx context.Context) *resolution {
	if ctx != nil {
		if res, ok := ctx.Value(resolutionKey{}).(*resolution); ok && res != nil {
			return res
		}
	}

	return newResolution()
}

// isContextKey reports whether key is the key of ContextToken.
func isContextKey(key *Key) bool {
	return key.Token() == any(ContextToken)
}

// instantiate runs the factories of record, caches the result and records
// the created instances for teardown. Multi records append the values of
// the ancestors after their own.
func (i *Injector) instantiate(record *resolvedProvider, res *resolution) (any, error) {
	if err := res.enter(record); err != nil {
		return nil, err
	}
	defer res.leave()

	record.mu.Lock()
	defer record.mu.Unlock()

	i.mu.Lock()
	// Double-check after acquiring the record lock
	if value, cached := i.instances[record.key]; cached {
		i.mu.Unlock()

		return value, nil
	}

	factories := make([]providerFactory, len(record.factories))
	copy(factories, record.factories)
	multi := record.multi
	i.mu.Unlock()

	if !multi && len(factories) > 1 {
		return nil, InvalidProviderStateError(record.key.Name(), len(factories))
	}

	own := make([]any, 0, len(factories))
	owned := make([]createdInstance, 0, len(factories))

	// Instances built before a failure are not cached, so they are torn
	// down here instead of by Dispose.
	committed := false
	defer func() {
		if !committed {
			i.discard(owned)
		}
	}()

	for _, f := range factories {
		args, err := i.resolveArgs(record.key, f.deps, res)
		if err != nil {
			return nil, err
		}

		instance, err := i.create(record.key, f, args)
		if err != nil {
			return nil, err
		}

		own = append(own, instance)

		// Values and aliases are owned elsewhere and are not torn down here
		if f.kind == KindClass || f.kind == KindFactory {
			owned = append(owned, createdInstance{key: record.key, instance: instance})
		}
	}

	var result any

	if multi {
		values := make([]any, 0, len(own))
		values = append(values, own...)

		inherited, found, err := i.getByKeyBubble(record.key, VisibilitySkipSelf, res)
		if err != nil {
			return nil, err
		}

		if found {
			if items, ok := inherited.([]any); ok {
				values = append(values, items...)
			} else {
				values = append(values, inherited)
			}
		}

		result = values
	} else {
		result = own[0]
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.disposed {
		return nil, ErrInjectorDisposed
	}

	i.instances[record.key] = result
	i.created = append(i.created, owned...)
	committed = true

	return result, nil
}

// discard destroys instances of a failed instantiation in reverse order.
func (i *Injector) discard(owned []createdInstance) {
	for idx := len(owned) - 1; idx >= 0; idx-- {
		entry := owned[idx]
		if err := destroy(entry.instance); err != nil {
			i.logger.Warn("destroy hook failed",
				logger.String("injector", i.name),
				logger.String("key", entry.key.Name()),
				logger.Error(err),
			)
		}
	}
}

// resolveArgs resolves the dependencies of one factory. Every dependency is
// attempted so the error can list them all.
func (i *Injector) resolveArgs(owner *Key, deps []resolvedDependency, res *resolution) ([]any, error) {
	args := make([]any, len(deps))
	found := make([]bool, len(deps))
	missing := false

	for idx, dep := range deps {
		if isContextKey(dep.key) {
			args[idx] = withResolution(context.Background(), res)
			found[idx] = true

			continue
		}

		value, ok, err := i.getByResolvedDependency(dep, res)
		if err != nil {
			return nil, err
		}

		if !ok {
			if !dep.optional {
				missing = true
			}

			continue
		}

		args[idx] = value
		found[idx] = true
	}

	if missing {
		names := make([]string, len(deps))
		for idx, dep := range deps {
			names[idx] = dep.key.Name()
			if !found[idx] && dep.optional {
				names[idx] += "?"
			}
		}

		return nil, UnresolvedDependencyError(owner.Name(), names)
	}

	return args, nil
}

// getByResolvedDependency looks the dependency up with its own visibility.
func (i *Injector) getByResolvedDependency(dep resolvedDependency, res *resolution) (any, bool, error) {
	if dep.visibility != VisibilitySkipSelf {
		i.mu.Lock()
		value, cached := i.instances[dep.key]
		i.mu.Unlock()

		if cached {
			return value, true, nil
		}
	}

	return i.getByKeyBubble(dep.key, dep.visibility, res)
}

// create invokes one factory with middleware, logging and metrics around it.
func (i *Injector) create(key *Key, f providerFactory, args []any) (any, error) {
	if err := i.middleware.beforeCreate(key.Name()); err != nil {
		return nil, err
	}

	instance, err := f.factory(args)
	if err != nil {
		err = FactoryError(key.Name(), err)
	}

	if mwErr := i.middleware.afterCreate(key.Name(), instance, err); mwErr != nil {
		return nil, mwErr
	}

	if err != nil {
		i.logger.Debug("factory failed",
			logger.String("injector", i.name),
			logger.String("key", key.Name()),
			logger.Error(err),
		)

		return nil, err
	}

	i.logger.Debug("instance created",
		logger.String("injector", i.name),
		logger.String("key", key.Name()),
		logger.String("kind", f.kind.String()),
	)

	if i.metrics != nil {
		i.metrics.Counter("hive_instances_created_total").Inc()
	}

	return instance, nil
}
