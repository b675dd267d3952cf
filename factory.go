package hive

import (
	"errors"
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// factoryFunc produces one instance from resolved arguments. Arguments for
// missing optional dependencies are nil.
type factoryFunc func(args []any) (any, error)

// funcInfo holds the analyzed shape of a factory or constructor function.
type funcInfo struct {
	fn       reflect.Value
	fnType   reflect.Type
	hasError bool
}

// analyzeFunc checks that fn is a function returning (T) or (T, error).
// Parameter types are only used to build zero values for absent optional
// arguments, never to derive dependency tokens.
func analyzeFunc(fn any) (*funcInfo, error) {
	if fn == nil {
		return nil, errors.New("function cannot be nil")
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("must be a function, got %T", fn)
	}

	if fnValue.IsNil() {
		return nil, errors.New("function cannot be nil")
	}

	if fnType.IsVariadic() {
		return nil, errors.New("variadic functions are not supported")
	}

	info := &funcInfo{fn: fnValue, fnType: fnType}

	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) == errorType {
			return nil, errors.New("must return at least one non-error value")
		}
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return nil, errors.New("second return value must implement error")
		}

		info.hasError = true
	default:
		return nil, fmt.Errorf("must return (T) or (T, error), got %d return values", fnType.NumOut())
	}

	return info, nil
}

// resultType returns the type of the produced value.
func (f *funcInfo) resultType() reflect.Type {
	return f.fnType.Out(0)
}

// numParams returns the number of parameters.
func (f *funcInfo) numParams() int {
	return f.fnType.NumIn()
}

// factory adapts the analyzed function to a factoryFunc.
func (f *funcInfo) factory() factoryFunc {
	return func(deps []any) (any, error) {
		return f.call(deps)
	}
}

// call invokes the function with the resolved dependencies.
func (f *funcInfo) call(deps []any) (any, error) {
	if f.fnType.NumIn() != len(deps) {
		return nil, fmt.Errorf("function expects %d parameters, got %d dependencies", f.fnType.NumIn(), len(deps))
	}

	args := make([]reflect.Value, len(deps))
	for i, dep := range deps {
		paramType := f.fnType.In(i)

		if dep == nil {
			// Absent optional dependency
			args[i] = reflect.Zero(paramType)

			continue
		}

		value, err := adaptArg(dep, paramType)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}

		args[i] = value
	}

	results := f.fn.Call(args)

	if f.hasError && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	return results[0].Interface(), nil
}

// adaptArg converts a resolved value to the parameter type. Multi-binding
// values arrive as []any and are copied into a slice of the element type.
func adaptArg(dep any, paramType reflect.Type) (reflect.Value, error) {
	value := reflect.ValueOf(dep)
	if value.Type().AssignableTo(paramType) {
		return value, nil
	}

	if items, ok := dep.([]any); ok && paramType.Kind() == reflect.Slice {
		elemType := paramType.Elem()
		out := reflect.MakeSlice(paramType, len(items), len(items))

		for i, item := range items {
			if item == nil {
				continue
			}

			itemValue := reflect.ValueOf(item)
			if !itemValue.Type().AssignableTo(elemType) {
				return reflect.Value{}, fmt.Errorf("element %d: cannot use %s as %s", i, itemValue.Type(), elemType)
			}

			out.Index(i).Set(itemValue)
		}

		return out, nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", value.Type(), paramType)
}
