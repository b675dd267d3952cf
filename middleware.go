package hive

// Middleware provides hooks for intercepting injector operations.
// Middleware can be used for logging, metrics, security, testing, etc.
type Middleware interface {
	// BeforeResolve is called before a public Get.
	// Return error to abort resolution.
	BeforeResolve(key string) error

	// AfterResolve is called after a public Get.
	// Called even if resolution failed (instance and err may both be set).
	AfterResolve(key string, instance any, err error) error

	// BeforeCreate is called before a factory is invoked.
	// Return error to abort instantiation.
	BeforeCreate(key string) error

	// AfterCreate is called after a factory returned.
	// Called even if the factory failed.
	AfterCreate(key string, instance any, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain(mw []Middleware) *middlewareChain {
	chain := &middlewareChain{
		middleware: make([]Middleware, 0, len(mw)),
	}
	for _, m := range mw {
		chain.add(m)
	}

	return chain
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	if middleware != nil {
		m.middleware = append(m.middleware, middleware)
	}
}

// list returns a copy of the chain.
func (m *middlewareChain) list() []Middleware {
	out := make([]Middleware, len(m.middleware))
	copy(out, m.middleware)

	return out
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(key string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(key); err != nil {
			return err
		}
	}

	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(key string, instance any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterResolve(key, instance, err); mwErr != nil {
			return mwErr
		}
	}

	return nil
}

// beforeCreate calls BeforeCreate on all middleware.
func (m *middlewareChain) beforeCreate(key string) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeCreate(key); err != nil {
			return err
		}
	}

	return nil
}

// afterCreate calls AfterCreate on all middleware.
func (m *middlewareChain) afterCreate(key string, instance any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterCreate(key, instance, err); mwErr != nil {
			return mwErr
		}
	}

	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(key string) error
	AfterResolveFunc  func(key string, instance any, err error) error
	BeforeCreateFunc  func(key string) error
	AfterCreateFunc   func(key string, instance any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(key string) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(key)
	}

	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(key string, instance any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(key, instance, err)
	}

	return nil
}

// BeforeCreate implements Middleware.
func (f *FuncMiddleware) BeforeCreate(key string) error {
	if f.BeforeCreateFunc != nil {
		return f.BeforeCreateFunc(key)
	}

	return nil
}

// AfterCreate implements Middleware.
func (f *FuncMiddleware) AfterCreate(key string, instance any, err error) error {
	if f.AfterCreateFunc != nil {
		return f.AfterCreateFunc(key, instance, err)
	}

	return nil
}
