package hive

import (
	"fmt"
	"io"

	"github.com/xraph/go-utils/di"
	logger "github.com/xraph/go-utils/log"
	"go.uber.org/multierr"
)

// Destroyable is implemented by instances that need teardown without
// reporting an error. Instances may instead implement di.Disposable or
// io.Closer.
type Destroyable interface {
	OnDestroy()
}

// disposeCallback is registered on a parent by each child. Callbacks are
// compared by pointer when a child unregisters itself.
type disposeCallback struct {
	fn func() error
}

// Dispose tears down the injector and, depth-first, every child created
// from it. It unregisters from the parent, disposes the children, clears the
// provider store and the instance cache, and finally runs the destroy hook
// of every instance this injector created, in reverse creation order.
//
// A failing or panicking hook does not stop the remaining hooks or the
// cascade; all failures are returned together. Calling Dispose again is a
// no-op.
func (i *Injector) Dispose() error {
	i.mu.Lock()
	if i.disposed {
		i.mu.Unlock()

		return nil
	}

	i.disposed = true
	parent := i.parent
	hook := i.parentHook
	i.parentHook = nil
	i.mu.Unlock()

	if parent != nil && hook != nil {
		parent.detachChild(hook)
	}

	// Snapshot so children removing themselves cannot corrupt the walk
	i.mu.Lock()
	callbacks := make([]*disposeCallback, len(i.callbacks))
	copy(callbacks, i.callbacks)
	i.mu.Unlock()

	var errs error

	for _, cb := range callbacks {
		errs = multierr.Append(errs, cb.fn())
	}

	i.mu.Lock()
	created := i.created
	i.created = nil
	i.callbacks = nil
	i.store.clear()
	i.instances = make(map[*Key]any)
	i.mu.Unlock()

	for idx := len(created) - 1; idx >= 0; idx-- {
		entry := created[idx]
		if err := destroy(entry.instance); err != nil {
			i.logger.Warn("destroy hook failed",
				logger.String("injector", i.name),
				logger.String("key", entry.key.Name()),
				logger.Error(err),
			)

			errs = multierr.Append(errs, fmt.Errorf("destroy %s: %w", entry.key.Name(), err))
		}
	}

	i.logger.Debug("injector disposed",
		logger.String("injector", i.name),
		logger.Int("destroyed", len(created)),
	)

	if i.metrics != nil {
		i.metrics.Counter("hive_injectors_disposed_total").Inc()
	}

	if errs != nil {
		return DisposeError(i.name, errs)
	}

	return nil
}

// detachChild removes a child's dispose callback.
func (i *Injector) detachChild(hook *disposeCallback) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for idx, cb := range i.callbacks {
		if cb == hook {
			i.callbacks = append(i.callbacks[:idx:idx], i.callbacks[idx+1:]...)

			return
		}
	}
}

// destroy runs the teardown hook of instance, converting panics to errors.
func destroy(instance any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during destroy: %v", r)
		}
	}()

	switch v := instance.(type) {
	case di.Disposable:
		return v.Dispose()
	case io.Closer:
		return v.Close()
	case Destroyable:
		v.OnDestroy()
	}

	return nil
}
