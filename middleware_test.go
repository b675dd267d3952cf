package hive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_BeforeAfterResolve(t *testing.T) {
	// Track middleware calls
	var calls []string

	mw := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			calls = append(calls, "before:"+key)
			return nil
		},
		AfterResolveFunc: func(key string, instance any, err error) error {
			calls = append(calls, "after:"+key)
			return nil
		},
	}

	inj := MustNew([]Provider{Value("test", &testImpl{value: "test"})}, WithMiddleware(mw))

	impl, err := Resolve[*testImpl](inj, "test")
	assert.NoError(t, err)
	assert.NotNil(t, impl)

	// Check middleware was called
	assert.Equal(t, []string{"before:test", "after:test"}, calls)
}

func TestMiddleware_CreateOrder(t *testing.T) {
	var calls []string

	mw := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			calls = append(calls, "resolve:"+key)
			return nil
		},
		BeforeCreateFunc: func(key string) error {
			calls = append(calls, "create:"+key)
			return nil
		},
		AfterCreateFunc: func(key string, instance any, err error) error {
			calls = append(calls, "created:"+key)
			return nil
		},
	}

	inj := MustNew([]Provider{
		Type(newTestLogger),
		Factory("service", newTestService, TypeOf[*testLogger]()),
	}, WithMiddleware(mw))

	_, err := inj.Get("service")
	require.NoError(t, err)

	// Dependencies are created inside the dependent's resolution
	assert.Equal(t, []string{
		"resolve:service",
		"create:*hive.testLogger",
		"created:*hive.testLogger",
		"create:service",
		"created:service",
	}, calls)

	// Cached instances are not created again
	calls = nil
	_, err = inj.Get("service")
	require.NoError(t, err)
	assert.Equal(t, []string{"resolve:service"}, calls)
}

func TestMiddleware_BeforeResolveError(t *testing.T) {
	expectedErr := errors.New("access denied")

	mw := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			return expectedErr
		},
	}

	inj := MustNew([]Provider{Value("test", &testImpl{value: "test"})}, WithMiddleware(mw))

	// Resolve should fail due to middleware
	_, err := Resolve[*testImpl](inj, "test")
	assert.ErrorIs(t, err, expectedErr)
}

func TestMiddleware_AfterResolveError(t *testing.T) {
	expectedErr := errors.New("post-resolve validation failed")

	mw := &FuncMiddleware{
		AfterResolveFunc: func(key string, instance any, err error) error {
			return expectedErr
		},
	}

	inj := MustNew([]Provider{Value("test", &testImpl{value: "test"})}, WithMiddleware(mw))

	_, err := Resolve[*testImpl](inj, "test")
	assert.ErrorIs(t, err, expectedErr)
}

func TestMiddleware_BeforeCreateError(t *testing.T) {
	expectedErr := errors.New("creation forbidden")
	created := false

	mw := &FuncMiddleware{
		BeforeCreateFunc: func(key string) error {
			return expectedErr
		},
	}

	inj := MustNew([]Provider{
		Factory("test", func() *testImpl {
			created = true

			return &testImpl{}
		}),
	}, WithMiddleware(mw))

	_, err := inj.Get("test")
	assert.ErrorIs(t, err, expectedErr)
	assert.False(t, created)
	assert.Equal(t, 0, inj.InstanceCount())
}

func TestMiddleware_AfterCreateReceivesError(t *testing.T) {
	factoryErr := errors.New("factory exploded")

	var receivedErr error

	mw := &FuncMiddleware{
		AfterCreateFunc: func(key string, instance any, err error) error {
			receivedErr = err
			return nil
		},
	}

	inj := MustNew([]Provider{
		Factory("test", func() (*testImpl, error) {
			return nil, factoryErr
		}),
	}, WithMiddleware(mw))

	_, err := inj.Get("test")
	assert.ErrorIs(t, err, factoryErr)
	assert.ErrorIs(t, receivedErr, ErrFactory)
}

func TestMiddleware_MultipleMiddleware(t *testing.T) {
	var calls []string

	mw1 := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			calls = append(calls, "mw1:before")
			return nil
		},
		AfterResolveFunc: func(key string, instance any, err error) error {
			calls = append(calls, "mw1:after")
			return nil
		},
	}

	mw2 := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			calls = append(calls, "mw2:before")
			return nil
		},
		AfterResolveFunc: func(key string, instance any, err error) error {
			calls = append(calls, "mw2:after")
			return nil
		},
	}

	inj := MustNew([]Provider{Value("test", 1)}, WithMiddleware(mw1), WithMiddleware(mw2))

	_, err := inj.Get("test")
	assert.NoError(t, err)

	// Middleware should be called in order
	assert.Equal(t, []string{
		"mw1:before",
		"mw2:before",
		"mw1:after",
		"mw2:after",
	}, calls)
}

func TestMiddleware_InheritedByChild(t *testing.T) {
	var calls []string

	parentMw := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			calls = append(calls, "parent:"+key)
			return nil
		},
	}

	childMw := &FuncMiddleware{
		BeforeResolveFunc: func(key string) error {
			calls = append(calls, "child:"+key)
			return nil
		},
	}

	root := MustNew([]Provider{Value("test", 1)}, WithMiddleware(parentMw))
	child, err := root.CreateChild(nil, WithMiddleware(childMw))
	require.NoError(t, err)

	_, err = child.Get("test")
	require.NoError(t, err)

	assert.Equal(t, []string{"parent:test", "child:test"}, calls)
}

func TestMiddleware_AfterResolveReceivesError(t *testing.T) {
	var receivedErr error

	mw := &FuncMiddleware{
		AfterResolveFunc: func(key string, instance any, err error) error {
			receivedErr = err
			return nil
		},
	}

	inj := MustNew(nil, WithMiddleware(mw))

	// Try to resolve non-existent service
	_, err := inj.Get("nonexistent")
	assert.Error(t, err)

	// Middleware should have received the error
	assert.ErrorIs(t, receivedErr, ErrUnknownProvider)
}
