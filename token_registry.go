package hive

import (
	"fmt"
	"reflect"
	"sync"

	logger "github.com/xraph/go-utils/log"
)

// Key is the interned representative of a token. Keys are compared by
// pointer: the same token always yields the same *Key within one registry.
type Key struct {
	id    int
	name  string
	token any
}

// ID returns the sequential id assigned when the key was interned.
func (k *Key) ID() int {
	return k.id
}

// Name returns the display name of the key.
func (k *Key) Name() string {
	return k.name
}

// Token returns the token the key was interned from.
func (k *Key) Token() any {
	return k.token
}

// String implements fmt.Stringer.
func (k *Key) String() string {
	return k.name
}

// TokenRegistry interns tokens into Keys. One registry is owned by each
// application root and shared by every injector below it.
type TokenRegistry struct {
	keys    map[any]*Key
	names   map[string]*Key
	selfKey *Key
	nextID  int
	logger  logger.Logger
	mu      sync.RWMutex
}

// NewTokenRegistry creates a registry that already holds the injector-self key.
func NewTokenRegistry(l logger.Logger) *TokenRegistry {
	if l == nil {
		l = logger.NewNoopLogger()
	}

	r := &TokenRegistry{logger: l}
	r.reset()

	return r
}

// Get returns the key for token, interning it on first sight.
func (r *TokenRegistry) Get(token any) (*Key, error) {
	token = resolveForwardRef(token)

	if token == nil {
		return nil, InvalidTokenError(token, "token cannot be nil")
	}

	if !reflect.ValueOf(token).Comparable() {
		return nil, InvalidTokenError(token, "token must be comparable")
	}

	r.mu.RLock()
	key, ok := r.keys[token]
	r.mu.RUnlock()

	if ok {
		return key, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if key, ok := r.keys[token]; ok {
		return key, nil
	}

	return r.intern(token), nil
}

// MustKey is like Get but panics on an invalid token.
func (r *TokenRegistry) MustKey(token any) *Key {
	key, err := r.Get(token)
	if err != nil {
		panic(err)
	}

	return key
}

// Lookup returns the key for token without interning it.
func (r *TokenRegistry) Lookup(token any) (*Key, bool) {
	token = resolveForwardRef(token)
	if token == nil || !reflect.ValueOf(token).Comparable() {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keys[token]

	return key, ok
}

// Len returns the number of interned keys.
func (r *TokenRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.keys)
}

// Reset forgets every key except the injector-self key. Keys held by live
// injectors become stale, so Reset is meant for test isolation only. Ids are
// never reused, so a stale key cannot compare equal to a fresh one by id.
func (r *TokenRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reset()
}

// SelfKey returns the key of InjectorToken.
func (r *TokenRegistry) SelfKey() *Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.selfKey
}

func (r *TokenRegistry) reset() {
	r.keys = make(map[any]*Key)
	r.names = make(map[string]*Key)
	r.selfKey = r.intern(InjectorToken)
}

// intern must be called with the write lock held.
func (r *TokenRegistry) intern(token any) *Key {
	key := &Key{
		id:    r.nextID,
		name:  displayName(token),
		token: token,
	}
	r.nextID++

	// Distinct tokens that stringify the same are legal; the warning only
	// helps explain confusing error messages.
	if prev, exists := r.names[key.name]; exists {
		r.logger.Warn("distinct tokens share a display name",
			logger.String("name", key.name),
			logger.Int("previous_id", prev.id),
			logger.Int("id", key.id),
		)
	} else {
		r.names[key.name] = key
	}

	r.keys[token] = key

	return key
}

func displayName(token any) string {
	switch t := token.(type) {
	case string:
		return t
	case reflect.Type:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", token)
	}
}
