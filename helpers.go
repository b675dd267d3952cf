package hive

import (
	"fmt"

	logger "github.com/xraph/go-utils/log"
)

// Resolve with type safety.
func Resolve[T any](inj *Injector, token any) (T, error) {
	var zero T

	instance, err := inj.Get(token)
	if err != nil {
		return zero, err
	}

	return cast[T](token, instance)
}

// ResolveOr resolves with type safety, returning fallback when nothing in
// the chain provides token.
func ResolveOr[T any](inj *Injector, token any, fallback T) (T, error) {
	var zero T

	instance, err := inj.GetOr(token, fallback)
	if err != nil {
		return zero, err
	}

	return cast[T](token, instance)
}

// ResolveType resolves the provider registered under the type T.
func ResolveType[T any](inj *Injector) (T, error) {
	return Resolve[T](inj, TypeOf[T]())
}

// ResolveAll resolves a multi-binding as a typed slice.
func ResolveAll[T any](inj *Injector, token any) ([]T, error) {
	instance, err := inj.Get(token)
	if err != nil {
		return nil, err
	}

	items, ok := instance.([]any)
	if !ok {
		return nil, TypeMismatchError(displayName(resolveForwardRef(token)), "[]any", instance)
	}

	out := make([]T, len(items))
	for idx, item := range items {
		typed, err := cast[T](token, item)
		if err != nil {
			return nil, err
		}

		out[idx] = typed
	}

	return out, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](inj *Injector, token any) T {
	instance, err := Resolve[T](inj, token)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %v: %v", displayName(resolveForwardRef(token)), err))
	}

	return instance
}

// GetLogger resolves the logger provided under the type log.Logger, or
// returns the injector's own logger when none is provided.
func GetLogger(inj *Injector) logger.Logger {
	l, err := ResolveOr[logger.Logger](inj, TypeOf[logger.Logger](), nil)
	if err != nil || l == nil {
		return inj.logger
	}

	return l
}

func cast[T any](token any, instance any) (T, error) {
	var zero T

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError(displayName(resolveForwardRef(token)), TypeOf[T]().String(), instance)
	}

	return typed, nil
}
