// Package hive is a hierarchical dependency injector.
//
// Providers describe how to produce the value of a token: a precomputed
// value, a constructor, a factory with explicit dependencies, or an alias of
// another token. An Injector resolves tokens lazily, caches one instance per
// key, and falls back to its parent when it does not provide a key itself.
// Child injectors form scopes (a request, a plugin, a device) that can
// shadow ancestor providers, extend multi-bindings, and are torn down with
// Dispose.
//
//	root, _ := hive.New([]hive.Provider{
//	    hive.Type(NewLogger),
//	})
//	child, _ := root.CreateChild([]hive.Provider{
//	    hive.Type(NewService, hive.TypeOf[*Logger]()),
//	})
//	svc, _ := hive.ResolveType[*Service](child)
//	defer root.Dispose()
package hive
