package hive

import (
	"fmt"
	"strings"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeUnknownProvider indicates no provider resolves a key in the injector chain
	CodeUnknownProvider = "UNKNOWN_PROVIDER"

	// CodeUnresolvedDependency indicates a required dependency could not be resolved during instantiation
	CodeUnresolvedDependency = "UNRESOLVED_DEPENDENCY"

	// CodeInvalidProviderShape indicates a provider has zero or several shapes set, or a malformed factory
	CodeInvalidProviderShape = "INVALID_PROVIDER_SHAPE"

	// CodeMultiProviderConflict indicates a key registered with mismatched multi flags
	CodeMultiProviderConflict = "MULTI_PROVIDER_CONFLICT"

	// CodeInvalidProviderState indicates several factories registered for a non-multi key
	CodeInvalidProviderState = "INVALID_PROVIDER_STATE"

	// CodeCircularDependency indicates a circular dependency was detected
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeInvalidToken indicates a token that cannot be interned
	CodeInvalidToken = "INVALID_TOKEN"

	// CodeInjectorDisposed indicates an operation on a disposed injector
	CodeInjectorDisposed = "INJECTOR_DISPOSED"

	// CodeFactoryError indicates a factory returned an error
	CodeFactoryError = "FACTORY_ERROR"

	// CodeTypeMismatch indicates a type mismatch during typed resolution
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeDisposeError indicates one or more destroy hooks failed
	CodeDisposeError = "DISPOSE_ERROR"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrUnknownProvider is a sentinel for errors.Is checks against UnknownProviderError.
var ErrUnknownProvider = errs.NewError(CodeUnknownProvider, "unknown provider", nil)

// ErrUnresolvedDependency is a sentinel for errors.Is checks against UnresolvedDependencyError.
var ErrUnresolvedDependency = errs.NewError(CodeUnresolvedDependency, "unresolved dependency", nil)

// ErrInvalidProviderShape is a sentinel for errors.Is checks against InvalidProviderShapeError.
var ErrInvalidProviderShape = errs.NewError(CodeInvalidProviderShape, "invalid provider shape", nil)

// ErrMultiProviderConflict is a sentinel for errors.Is checks against MultiProviderConflictError.
var ErrMultiProviderConflict = errs.NewError(CodeMultiProviderConflict, "multi provider conflict", nil)

// ErrInvalidProviderState is a sentinel for errors.Is checks against InvalidProviderStateError.
var ErrInvalidProviderState = errs.NewError(CodeInvalidProviderState, "invalid provider state", nil)

// ErrCircularDependency is a sentinel for errors.Is checks against CircularDependencyError.
var ErrCircularDependency = errs.NewError(CodeCircularDependency, "circular dependency", nil)

// ErrInvalidToken is a sentinel for errors.Is checks against InvalidTokenError.
var ErrInvalidToken = errs.NewError(CodeInvalidToken, "invalid token", nil)

// ErrInjectorDisposed is returned when operations are attempted on a disposed injector.
var ErrInjectorDisposed = errs.NewError(CodeInjectorDisposed, "injector has been disposed", nil)

// ErrFactory is a sentinel for errors.Is checks against FactoryError.
var ErrFactory = errs.NewError(CodeFactoryError, "factory failed", nil)

// ErrTypeMismatchSentinel is a sentinel for errors.Is checks against TypeMismatchError.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrDispose is a sentinel for errors.Is checks against DisposeError.
var ErrDispose = errs.NewError(CodeDisposeError, "dispose failed", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// UnknownProviderError creates an error for a key nothing in the chain provides.
func UnknownProviderError(key string) *errs.Error {
	return errs.NewError(
		CodeUnknownProvider,
		fmt.Sprintf("no provider for %s", key),
		nil,
	).WithContext("key", key).(*errs.Error)
}

// UnresolvedDependencyError creates an error listing every dependency of the
// provider being instantiated. Unresolved optional dependencies carry a
// trailing "?".
func UnresolvedDependencyError(key string, deps []string) *errs.Error {
	return errs.NewError(
		CodeUnresolvedDependency,
		fmt.Sprintf("cannot resolve all parameters for %s(%s)", key, strings.Join(deps, ", ")),
		nil,
	).WithContext("key", key).
		WithContext("deps", deps).(*errs.Error)
}

// InvalidProviderShapeError creates an error for a malformed provider.
func InvalidProviderShapeError(provide string, reason string) *errs.Error {
	return errs.NewError(
		CodeInvalidProviderShape,
		fmt.Sprintf("invalid provider for %s: %s", provide, reason),
		nil,
	).WithContext("provide", provide).(*errs.Error)
}

// MultiProviderConflictError creates an error for mixing multi and non-multi
// registrations of one key.
func MultiProviderConflictError(key string) *errs.Error {
	return errs.NewError(
		CodeMultiProviderConflict,
		fmt.Sprintf("cannot mix multi providers and regular providers for %s", key),
		nil,
	).WithContext("key", key).(*errs.Error)
}

// InvalidProviderStateError creates an error for a non-multi key carrying more
// than one factory.
func InvalidProviderStateError(key string, factories int) *errs.Error {
	return errs.NewError(
		CodeInvalidProviderState,
		fmt.Sprintf("%s has %d providers registered but is not a multi provider", key, factories),
		nil,
	).WithContext("key", key).
		WithContext("factories", factories).(*errs.Error)
}

// CircularDependencyError creates an error for a cycle in the resolution path.
func CircularDependencyError(cycle []string) *errs.Error {
	return errs.NewError(
		CodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> ")),
		nil,
	).WithContext("cycle", cycle).(*errs.Error)
}

// InvalidTokenError creates an error for a token that cannot serve as an identity.
func InvalidTokenError(token any, reason string) *errs.Error {
	return errs.NewError(
		CodeInvalidToken,
		fmt.Sprintf("invalid token of type %T: %s", token, reason),
		nil,
	).WithContext("token_type", fmt.Sprintf("%T", token)).(*errs.Error)
}

// FactoryError wraps an error returned by a provider's factory.
func FactoryError(key string, cause error) *errs.Error {
	return errs.NewError(
		CodeFactoryError,
		fmt.Sprintf("factory for %s failed", key),
		cause,
	).WithContext("key", key).(*errs.Error)
}

// TypeMismatchError creates an error for type mismatch during typed resolution.
func TypeMismatchError(key string, expected string, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("%s type mismatch: expected %s, got %T", key, expected, actual),
		nil,
	).WithContext("key", key).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// DisposeError wraps the aggregated failures of destroy hooks.
func DisposeError(injector string, cause error) *errs.Error {
	return errs.NewError(
		CodeDisposeError,
		fmt.Sprintf("injector '%s' dispose failed", injector),
		cause,
	).WithContext("injector", injector).(*errs.Error)
}
