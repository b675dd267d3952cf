package hive

import "sync"

// providerFactory pairs a factory with the dependencies it is called with.
type providerFactory struct {
	kind    ProviderKind
	factory factoryFunc
	deps    []resolvedDependency
}

// resolvedProvider holds every registration of one key in one injector.
// factories has length <= 1 unless multi is set; a violation is reported
// when the key is first instantiated.
type resolvedProvider struct {
	key       *Key
	multi     bool
	factories []providerFactory

	// mu serializes first instantiation so a factory runs at most once.
	mu sync.Mutex
}

// providerStore maps keys to their resolved providers, preserving
// registration order for diagnostics and validation.
type providerStore struct {
	records map[*Key]*resolvedProvider
	order   []*Key
}

func newProviderStore() *providerStore {
	return &providerStore{
		records: make(map[*Key]*resolvedProvider),
	}
}

// add merges a normalized provider into the store. Registering a key again
// with the same multi flag appends a factory even for non-multi keys.
func (s *providerStore) add(np *normalizedProvider) (*resolvedProvider, error) {
	entry := providerFactory{
		kind:    np.kind,
		factory: np.factory,
		deps:    np.deps,
	}

	record, exists := s.records[np.key]
	if !exists {
		record = &resolvedProvider{
			key:       np.key,
			multi:     np.multi,
			factories: []providerFactory{entry},
		}
		s.records[np.key] = record
		s.order = append(s.order, np.key)

		return record, nil
	}

	if record.multi != np.multi {
		return nil, MultiProviderConflictError(np.key.Name())
	}

	record.factories = append(record.factories, entry)

	return record, nil
}

func (s *providerStore) get(key *Key) (*resolvedProvider, bool) {
	record, ok := s.records[key]

	return record, ok
}

func (s *providerStore) keys() []*Key {
	out := make([]*Key, len(s.order))
	copy(out, s.order)

	return out
}

func (s *providerStore) len() int {
	return len(s.records)
}

func (s *providerStore) clear() {
	s.records = make(map[*Key]*resolvedProvider)
	s.order = nil
}
