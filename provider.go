package hive

import (
	"fmt"
	"strings"
)

// ProviderKind identifies which shape a Provider carries.
type ProviderKind int

const (
	// KindUnknown means the kind is inferred from the populated field.
	KindUnknown ProviderKind = iota

	// KindValue provides a precomputed value.
	KindValue

	// KindClass provides the result of a constructor whose parameters are
	// described by a MetadataSource or by explicit Deps.
	KindClass

	// KindFactory provides the result of a function with explicit Deps.
	KindFactory

	// KindExisting aliases another token.
	KindExisting
)

// String returns the human-readable name of the kind.
func (k ProviderKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindClass:
		return "class"
	case KindFactory:
		return "factory"
	case KindExisting:
		return "existing"
	default:
		return "unknown"
	}
}

// Provider describes how to produce the value for a token. Exactly one of
// UseValue, UseClass, UseFactory and UseExisting must be set; prefer the
// Value, Class, Type, Factory and Existing constructors, which also allow
// a nil UseValue.
type Provider struct {
	// Provide is the token the provider registers. For a Class provider it
	// may be nil, in which case the constructor's result type is used.
	Provide any

	UseValue    any
	UseClass    any
	UseFactory  any
	UseExisting any

	// Deps lists the dependencies of UseFactory or UseClass, one per
	// parameter. Each entry is a bare token or a Dependency.
	Deps []any

	// Multi makes the token a multi-binding: every registration contributes
	// one element of a []any.
	Multi bool

	kind ProviderKind
}

// Value creates a provider for a precomputed value.
func Value(token any, value any) Provider {
	return Provider{Provide: token, UseValue: value, kind: KindValue}
}

// Class creates a provider that calls ctor. When no deps are given the
// parameters are looked up in the injector's MetadataSource.
func Class(token any, ctor any, deps ...any) Provider {
	return Provider{Provide: token, UseClass: ctor, Deps: deps, kind: KindClass}
}

// Type is the bare-type shorthand: a class provider registered under the
// constructor's result type.
//
// Example:
//
//	hive.Type(NewLogger)                       // provides TypeOf[*Logger]()
//	hive.Type(NewService, TypeOf[*Logger]())   // with explicit dependencies
func Type(ctor any, deps ...any) Provider {
	return Provider{UseClass: ctor, Deps: deps, kind: KindClass}
}

// Factory creates a provider that calls fn with the resolved deps.
func Factory(token any, fn any, deps ...any) Provider {
	return Provider{Provide: token, UseFactory: fn, Deps: deps, kind: KindFactory}
}

// Existing creates an alias: token resolves to the same value as existing.
func Existing(token any, existing any) Provider {
	return Provider{Provide: token, UseExisting: existing, kind: KindExisting}
}

// AsMulti returns a copy of the provider marked as a multi-binding.
func (p Provider) AsMulti() Provider {
	p.Multi = true

	return p
}

// Kind returns the shape of the provider, or KindUnknown when it is malformed.
func (p Provider) Kind() ProviderKind {
	kind, err := p.shape()
	if err != nil {
		return KindUnknown
	}

	return kind
}

// shape validates that exactly one shape is set.
func (p Provider) shape() (ProviderKind, error) {
	var kinds []ProviderKind

	if p.UseValue != nil || p.kind == KindValue {
		kinds = append(kinds, KindValue)
	}

	if p.UseClass != nil {
		kinds = append(kinds, KindClass)
	}

	if p.UseFactory != nil {
		kinds = append(kinds, KindFactory)
	}

	if p.UseExisting != nil {
		kinds = append(kinds, KindExisting)
	}

	switch len(kinds) {
	case 0:
		return KindUnknown, fmt.Errorf("one of useValue, useClass, useFactory or useExisting must be set")
	case 1:
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}

		return KindUnknown, fmt.Errorf("exactly one shape must be set, got %s", strings.Join(names, ", "))
	}

	if p.kind != KindUnknown && p.kind != kinds[0] {
		return KindUnknown, fmt.Errorf("declared as %s but %s is set", p.kind, kinds[0])
	}

	if p.Deps != nil && (kinds[0] == KindValue || kinds[0] == KindExisting) {
		return KindUnknown, fmt.Errorf("%s providers take no dependencies", kinds[0])
	}

	return kinds[0], nil
}

// normalizedProvider is the canonical form every provider shape reduces to.
type normalizedProvider struct {
	key     *Key
	kind    ProviderKind
	multi   bool
	factory factoryFunc
	deps    []resolvedDependency
}

// normalizer turns providers into normalizedProviders.
type normalizer struct {
	registry *TokenRegistry
	metadata MetadataSource
}

// normalize validates p and reduces it to its canonical form.
func (n *normalizer) normalize(p Provider) (*normalizedProvider, error) {
	provideName := "<nil>"
	if p.Provide != nil {
		provideName = displayName(resolveForwardRef(p.Provide))
	}

	kind, err := p.shape()
	if err != nil {
		return nil, InvalidProviderShapeError(provideName, err.Error())
	}

	switch kind {
	case KindValue:
		return n.normalizeValue(p)
	case KindClass:
		return n.normalizeClass(p)
	case KindFactory:
		return n.normalizeFactory(p, provideName)
	default:
		return n.normalizeExisting(p)
	}
}

func (n *normalizer) normalizeValue(p Provider) (*normalizedProvider, error) {
	key, err := n.provideKey(p)
	if err != nil {
		return nil, err
	}

	value := p.UseValue

	return &normalizedProvider{
		key:   key,
		kind:  KindValue,
		multi: p.Multi,
		factory: func([]any) (any, error) {
			return value, nil
		},
	}, nil
}

func (n *normalizer) normalizeClass(p Provider) (*normalizedProvider, error) {
	info, err := analyzeFunc(p.UseClass)
	if err != nil {
		return nil, InvalidProviderShapeError(displayName(p.Provide), "useClass "+err.Error())
	}

	token := p.Provide
	if token == nil {
		token = info.resultType()
	}

	key, err := n.registry.Get(token)
	if err != nil {
		return nil, err
	}

	rawDeps := p.Deps
	if rawDeps == nil {
		rawDeps, err = n.classParams(key, p.UseClass, info)
		if err != nil {
			return nil, err
		}
	}

	deps, err := n.resolveDeps(key, rawDeps, info)
	if err != nil {
		return nil, err
	}

	return &normalizedProvider{
		key:     key,
		kind:    KindClass,
		multi:   p.Multi,
		factory: info.factory(),
		deps:    deps,
	}, nil
}

// classParams asks the metadata collaborator for the constructor parameters.
func (n *normalizer) classParams(key *Key, ctor any, info *funcInfo) ([]any, error) {
	if n.metadata != nil {
		if params, ok := n.metadata.ParamsFor(ctor); ok {
			deps := make([]any, len(params))
			for i, param := range params {
				deps[i] = param
			}

			return deps, nil
		}
	}

	if info.numParams() > 0 {
		return nil, InvalidProviderShapeError(key.Name(),
			fmt.Sprintf("constructor has %d parameters but no dependency metadata", info.numParams()))
	}

	return nil, nil
}

func (n *normalizer) normalizeFactory(p Provider, provideName string) (*normalizedProvider, error) {
	info, err := analyzeFunc(p.UseFactory)
	if err != nil {
		return nil, InvalidProviderShapeError(provideName, "useFactory "+err.Error())
	}

	key, err := n.provideKey(p)
	if err != nil {
		return nil, err
	}

	deps, err := n.resolveDeps(key, p.Deps, info)
	if err != nil {
		return nil, err
	}

	return &normalizedProvider{
		key:     key,
		kind:    KindFactory,
		multi:   p.Multi,
		factory: info.factory(),
		deps:    deps,
	}, nil
}

func (n *normalizer) normalizeExisting(p Provider) (*normalizedProvider, error) {
	key, err := n.provideKey(p)
	if err != nil {
		return nil, err
	}

	existing, err := n.registry.Get(p.UseExisting)
	if err != nil {
		return nil, err
	}

	return &normalizedProvider{
		key:   key,
		kind:  KindExisting,
		multi: p.Multi,
		factory: func(args []any) (any, error) {
			return args[0], nil
		},
		deps: []resolvedDependency{{key: existing}},
	}, nil
}

func (n *normalizer) provideKey(p Provider) (*Key, error) {
	if p.Provide == nil {
		return nil, InvalidProviderShapeError("<nil>", "provide token must be set")
	}

	return n.registry.Get(p.Provide)
}

// resolveDeps interns the dependency tokens and checks them against the
// function arity.
func (n *normalizer) resolveDeps(key *Key, raw []any, info *funcInfo) ([]resolvedDependency, error) {
	if len(raw) != info.numParams() {
		return nil, InvalidProviderShapeError(key.Name(),
			fmt.Sprintf("function has %d parameters but %d dependencies were declared", info.numParams(), len(raw)))
	}

	deps := make([]resolvedDependency, len(raw))
	for i, entry := range raw {
		dep := asDependency(entry)

		depKey, err := n.registry.Get(dep.Token)
		if err != nil {
			return nil, err
		}

		deps[i] = resolvedDependency{
			key:        depKey,
			optional:   dep.Optional,
			visibility: dep.Visibility,
		}
	}

	return deps, nil
}
