package hive

import (
	"context"
	"fmt"
	"reflect"
)

// Token is a typed identity for values that have no distinguishing Go type,
// such as configuration strings or one of several implementations of the
// same interface. Identity is the pointer; the name is only used for display.
//
// Example:
//
//	var DatabaseURL = hive.NewToken[string]("DatabaseURL")
//	inj, _ := hive.New([]hive.Provider{hive.Value(DatabaseURL, "postgres://...")})
//	url, _ := hive.Resolve(inj, DatabaseURL)
type Token[T any] struct {
	name string
}

// NewToken creates a new typed token.
func NewToken[T any](name string) *Token[T] {
	return &Token[T]{name: name}
}

// Name returns the token name.
func (t *Token[T]) Name() string {
	return t.name
}

// String returns the display name used by error messages.
func (t *Token[T]) String() string {
	return t.name
}

// TypeOf returns the reflect.Type of T, the canonical token for a type.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// ForwardRef is a lazily resolved token. It lets providers refer to tokens
// that are declared later in package initialization order.
type ForwardRef struct {
	fn func() any
}

// Forward wraps fn as a forward reference. fn is called every time the
// reference is interned and must keep returning the same token.
func Forward(fn func() any) *ForwardRef {
	return &ForwardRef{fn: fn}
}

// String implements fmt.Stringer.
func (f *ForwardRef) String() string {
	return fmt.Sprintf("forwardRef(%v)", f.fn())
}

// resolveForwardRef follows forward references until a concrete token remains.
func resolveForwardRef(token any) any {
	for {
		ref, ok := token.(*ForwardRef)
		if !ok || ref == nil || ref.fn == nil {
			return token
		}

		token = ref.fn()
	}
}

// InjectorToken resolves to the injector performing the lookup. Every
// injector implicitly provides itself under this token.
var InjectorToken = NewToken[*Injector]("Injector")

// ContextToken resolves, as a dependency only, to a context carrying the
// resolution in progress. A factory that looks up more tokens while it runs
// passes this context to GetContext so that re-entering a provider on the
// current path fails with CircularDependencyError instead of blocking.
var ContextToken = NewToken[context.Context]("Context")
