package hive

import (
	"github.com/xraph/go-utils/di"
)

// Visibility restricts how far up the injector chain a dependency is looked up.
type Visibility int

const (
	// VisibilityNone walks the current injector and all of its ancestors.
	VisibilityNone Visibility = iota

	// VisibilitySelf only consults the current injector.
	VisibilitySelf

	// VisibilitySkipSelf starts at the parent of the current injector.
	VisibilitySkipSelf
)

// String returns the human-readable name of the visibility.
func (v Visibility) String() string {
	switch v {
	case VisibilityNone:
		return "none"
	case VisibilitySelf:
		return "self"
	case VisibilitySkipSelf:
		return "skipSelf"
	default:
		return "unknown"
	}
}

// Dependency describes one argument of a factory or class constructor.
//
// Usage:
//
//	hive.Factory(ServiceToken, NewService,
//	    LoggerToken,                       // required, any visibility
//	    hive.Optional(TracerToken),        // nil when missing
//	    hive.SkipSelf(ConfigToken),        // parent chain only
//	    hive.Optional(hive.Self(Cache)),   // own injector only, may be missing
//	)
type Dependency struct {
	Token      any
	Optional   bool
	Visibility Visibility
}

// Inject creates a dependency on token. It is the explicit override form:
// the token is used as-is even when it is itself a Dependency value.
func Inject(token any) Dependency {
	return Dependency{Token: token}
}

// Optional marks a dependency as optional. A missing optional dependency is
// passed to the factory as the zero value of its parameter.
func Optional(dep any) Dependency {
	d := asDependency(dep)
	d.Optional = true

	return d
}

// Self restricts the lookup to the injector performing the instantiation.
func Self(dep any) Dependency {
	d := asDependency(dep)
	d.Visibility = VisibilitySelf

	return d
}

// SkipSelf starts the lookup at the parent of the injector performing the
// instantiation.
func SkipSelf(dep any) Dependency {
	d := asDependency(dep)
	d.Visibility = VisibilitySkipSelf

	return d
}

func asDependency(dep any) Dependency {
	if d, ok := dep.(Dependency); ok {
		return d
	}

	return Dependency{Token: dep}
}

// resolvedDependency is a Dependency whose token has been interned.
type resolvedDependency struct {
	key        *Key
	optional   bool
	visibility Visibility
}

// toDiDep converts a dependency to the go-utils di.Dep used by diagnostics.
func (d resolvedDependency) toDiDep() di.Dep {
	mode := di.DepEager
	if d.optional {
		mode = di.DepOptional
	}

	return di.Dep{
		Name: d.key.Name(),
		Mode: mode,
	}
}
