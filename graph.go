package hive

// DependencyGraph is a static view of the providers reachable from one
// injector. Edges follow the same visibility rules as resolution, but no
// factory is invoked.
type DependencyGraph struct {
	root  *Injector
	nodes map[*resolvedProvider]*node
	order []*node // Preserve discovery order
}

type node struct {
	owner  *Injector
	record *resolvedProvider
	edges  []*node
}

// Graph builds the dependency graph of every provider visible from i.
// Missing required dependencies and non-multi keys with several providers
// are reported while building.
func (i *Injector) Graph() (*DependencyGraph, error) {
	g := &DependencyGraph{
		root:  i,
		nodes: make(map[*resolvedProvider]*node),
	}

	for inj := i; inj != nil; inj = inj.parent {
		for _, rec := range inj.records() {
			if _, err := g.addNode(inj, rec); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// Validate checks that every provider visible from i can be instantiated:
// all required dependencies resolve, no key has conflicting providers and
// the graph is acyclic.
func (i *Injector) Validate() error {
	g, err := i.Graph()
	if err != nil {
		return err
	}

	_, err = g.TopologicalSort()

	return err
}

// addNode adds a record and, recursively, everything it depends on.
func (g *DependencyGraph) addNode(owner *Injector, rec *resolvedProvider) (*node, error) {
	if n, ok := g.nodes[rec]; ok {
		return n, nil
	}

	n := &node{owner: owner, record: rec}
	g.nodes[rec] = n
	g.order = append(g.order, n)

	owner.mu.Lock()
	factories := make([]providerFactory, len(rec.factories))
	copy(factories, rec.factories)
	owner.mu.Unlock()

	if !rec.multi && len(factories) > 1 {
		return nil, InvalidProviderStateError(rec.key.Name(), len(factories))
	}

	for _, f := range factories {
		var missing bool

		for _, dep := range f.deps {
			if dep.key == owner.selfKey || isContextKey(dep.key) {
				continue
			}

			depOwner, depRec := owner.lookupRecord(dep.key, dep.visibility)
			if depRec == nil {
				if !dep.optional {
					missing = true
				}

				continue
			}

			child, err := g.addNode(depOwner, depRec)
			if err != nil {
				return nil, err
			}

			n.edges = append(n.edges, child)
		}

		if missing {
			return nil, UnresolvedDependencyError(rec.key.Name(), depNames(owner, f.deps))
		}
	}

	// Multi records also pull the values of their ancestors
	if rec.multi {
		if parentOwner, parentRec := owner.lookupRecord(rec.key, VisibilitySkipSelf); parentRec != nil {
			child, err := g.addNode(parentOwner, parentRec)
			if err != nil {
				return nil, err
			}

			n.edges = append(n.edges, child)
		}
	}

	return n, nil
}

// Keys returns the display names of every node in discovery order.
func (g *DependencyGraph) Keys() []string {
	names := make([]string, len(g.order))
	for idx, n := range g.order {
		names[idx] = n.record.key.Name()
	}

	return names
}

// DependenciesOf returns the display names of the direct dependencies of the
// provider for token as seen from the graph root.
func (g *DependencyGraph) DependenciesOf(token any) []string {
	key, ok := g.root.registry.Lookup(token)
	if !ok {
		return nil
	}

	_, rec := g.root.lookupRecord(key, VisibilityNone)
	if rec == nil {
		return nil
	}

	n, ok := g.nodes[rec]
	if !ok {
		return nil
	}

	names := make([]string, len(n.edges))
	for idx, e := range n.edges {
		names[idx] = e.record.key.Name()
	}

	return names
}

// TopologicalSort returns key names in instantiation order: dependencies
// before dependents, discovery order otherwise.
// Returns error if circular dependency detected.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	visited := make(map[*node]bool)
	visiting := make(map[*node]bool)
	result := make([]string, 0, len(g.order))

	for _, n := range g.order {
		if err := g.visit(n, visited, visiting, nil, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal.
func (g *DependencyGraph) visit(n *node, visited, visiting map[*node]bool, stack []*node, result *[]string) error {
	if visited[n] {
		return nil
	}

	stack = append(stack, n)

	if visiting[n] {
		// Build the cycle chain for better error message
		start := 0
		for idx, s := range stack[:len(stack)-1] {
			if s == n {
				start = idx
				break
			}
		}

		cycle := make([]string, 0, len(stack)-start)
		for _, s := range stack[start:] {
			cycle = append(cycle, s.record.key.Name())
		}

		return CircularDependencyError(cycle)
	}

	visiting[n] = true

	// Visit dependencies first
	for _, dep := range n.edges {
		if err := g.visit(dep, visited, visiting, stack, result); err != nil {
			return err
		}
	}

	visiting[n] = false
	visited[n] = true
	*result = append(*result, n.record.key.Name())

	return nil
}

// lookupRecord finds the injector and record that would serve key under
// the given visibility, without instantiating anything.
func (i *Injector) lookupRecord(key *Key, visibility Visibility) (*Injector, *resolvedProvider) {
	start := i
	if visibility == VisibilitySkipSelf {
		start = i.parent
	}

	for inj := start; inj != nil; inj = inj.parent {
		inj.mu.Lock()
		rec, ok := inj.store.get(key)
		inj.mu.Unlock()

		if ok {
			return inj, rec
		}

		if visibility == VisibilitySelf {
			break
		}
	}

	return nil, nil
}

// records returns the records of this injector in registration order.
func (i *Injector) records() []*resolvedProvider {
	i.mu.Lock()
	defer i.mu.Unlock()

	keys := i.store.keys()
	out := make([]*resolvedProvider, 0, len(keys))

	for _, key := range keys {
		if rec, ok := i.store.get(key); ok {
			out = append(out, rec)
		}
	}

	return out
}

// depNames lists dependency names, marking optional ones that the owner
// cannot see with a trailing "?".
func depNames(owner *Injector, deps []resolvedDependency) []string {
	names := make([]string, len(deps))
	for idx, dep := range deps {
		names[idx] = dep.key.Name()
		if dep.optional {
			if _, rec := owner.lookupRecord(dep.key, dep.visibility); rec == nil {
				names[idx] += "?"
			}
		}
	}

	return names
}
