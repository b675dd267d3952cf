// Package httpscope binds a child injector to every HTTP request.
//
// The middleware creates the request scope from a root injector, exposes the
// request and response writer as providers, stores the scope on the request
// context and disposes it once the handler returns. Controllers registered
// in the scope are therefore created once per request and torn down with it.
package httpscope

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/xraph/go-utils/log"

	"github.com/xraph/hive"
)

// RequestToken resolves to the *http.Request of the current scope.
var RequestToken = hive.NewToken[*http.Request]("http.Request")

// ResponseWriterToken resolves to the http.ResponseWriter of the current scope.
var ResponseWriterToken = hive.NewToken[http.ResponseWriter]("http.ResponseWriter")

type contextKey struct{}

// ErrorHandler writes the response for a request whose scope could not be
// created or whose controller could not be resolved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures the middleware.
type Option func(*config)

type config struct {
	providers func(r *http.Request) []hive.Provider
	onError   ErrorHandler
}

// WithProviders adds request-bound providers to every scope.
func WithProviders(fn func(r *http.Request) []hive.Provider) Option {
	return func(c *config) {
		c.providers = fn
	}
}

// WithErrorHandler replaces the default 500 response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		c.onError = h
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Middleware creates a request scope under root for every request.
func Middleware(root *hive.Injector, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{onError: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	log := hive.GetLogger(root)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providers := []hive.Provider{
				hive.Value(RequestToken, r),
				hive.Value(ResponseWriterToken, w),
			}
			if cfg.providers != nil {
				providers = append(providers, cfg.providers(r)...)
			}

			scope, err := root.CreateChild(providers)
			if err != nil {
				log.Error("failed to create request scope",
					logger.String("path", r.URL.Path),
					logger.Error(err),
				)
				cfg.onError(w, r, err)

				return
			}

			defer func() {
				if err := scope.Dispose(); err != nil {
					log.Warn("request scope dispose failed",
						logger.String("scope", scope.Name()),
						logger.Error(err),
					)
				}
			}()

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// WithScope returns a context carrying scope.
func WithScope(ctx context.Context, scope *hive.Injector) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// FromContext returns the request scope stored by the middleware.
func FromContext(ctx context.Context) (*hive.Injector, bool) {
	scope, ok := ctx.Value(contextKey{}).(*hive.Injector)

	return scope, ok && scope != nil
}

// Handle adapts a controller method to an http.HandlerFunc. The controller
// is resolved from the request scope under token.
//
// Usage:
//
//	r.Get("/users/{id}", httpscope.Handle(UserControllerToken, (*UserController).Show))
func Handle[T any](token any, fn func(ctrl T, w http.ResponseWriter, r *http.Request), opts ...Option) http.HandlerFunc {
	cfg := &config{onError: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := FromContext(r.Context())
		if !ok {
			cfg.onError(w, r, hive.ErrUnknownProvider)

			return
		}

		ctrl, err := hive.Resolve[T](scope, token)
		if err != nil {
			cfg.onError(w, r, err)

			return
		}

		fn(ctrl, w, r)
	}
}

// Mount creates a sub-router at pattern whose requests run in scopes of root.
func Mount(router chi.Router, pattern string, root *hive.Injector, routes func(r chi.Router), opts ...Option) {
	router.Route(pattern, func(sub chi.Router) {
		sub.Use(Middleware(root, opts...))
		routes(sub)
	})
}
