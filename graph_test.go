package hive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(s string) string { return s }

func TestDependencyGraph_TopologicalSort_Simple(t *testing.T) {
	inj := MustNew([]Provider{
		Factory("c", passThrough, "b"),
		Factory("b", passThrough, "a"),
		Value("a", "a"),
	})

	g, err := inj.Graph()
	require.NoError(t, err)

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	// Should be in dependency order: a, b, c
	assert.Equal(t, []string{"a", "b", "c"}, result)
}

func TestDependencyGraph_TopologicalSort_Complex(t *testing.T) {
	inj := MustNew([]Provider{
		Value("a", "a"),
		Factory("b", passThrough, "a"),
		Factory("c", passThrough, "a"),
		Factory("d", func(b, c string) string { return b + c }, "b", "c"),
	})

	g, err := inj.Graph()
	require.NoError(t, err)

	result, err := g.TopologicalSort()
	require.NoError(t, err)

	// "a" must come before "b" and "c"
	// "b" and "c" must come before "d"
	aIdx := indexOf(result, "a")
	bIdx := indexOf(result, "b")
	cIdx := indexOf(result, "c")
	dIdx := indexOf(result, "d")

	assert.Less(t, aIdx, bIdx)
	assert.Less(t, aIdx, cIdx)
	assert.Less(t, bIdx, dIdx)
	assert.Less(t, cIdx, dIdx)
}

func TestDependencyGraph_TopologicalSort_CircularDependency(t *testing.T) {
	inj := MustNew([]Provider{
		Factory("a", passThrough, "b"),
		Factory("b", passThrough, "a"),
	})

	g, err := inj.Graph()
	require.NoError(t, err)

	_, err = g.TopologicalSort()
	require.ErrorIs(t, err, ErrCircularDependency)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestDependencyGraph_TopologicalSort_SelfReference(t *testing.T) {
	inj := MustNew([]Provider{Factory("a", passThrough, "a")})

	g, err := inj.Graph()
	require.NoError(t, err)

	_, err = g.TopologicalSort()
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestDependencyGraph_TopologicalSort_Empty(t *testing.T) {
	g, err := MustNew(nil).Graph()
	require.NoError(t, err)

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDependencyGraph_TopologicalSort_PreservesRegistrationOrder(t *testing.T) {
	inj := MustNew([]Provider{
		Value("z", 1),
		Value("y", 2),
		Value("x", 3),
	})

	g, err := inj.Graph()
	require.NoError(t, err)

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "y", "x"}, result)
	assert.Equal(t, []string{"z", "y", "x"}, g.Keys())
}

func TestDependencyGraph_IncludesAncestors(t *testing.T) {
	root := MustNew([]Provider{Value("config", "cfg")})
	child, err := root.CreateChild([]Provider{
		Factory("service", passThrough, "config"),
	})
	require.NoError(t, err)

	g, err := child.Graph()
	require.NoError(t, err)

	result, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "service"}, result)
	assert.Equal(t, []string{"config"}, g.DependenciesOf("service"))
}

func TestDependencyGraph_ShadowedProvider(t *testing.T) {
	root := MustNew([]Provider{Value("config", "root")})
	child, err := root.CreateChild([]Provider{
		Value("config", "child"),
		Factory("service", passThrough, "config"),
	})
	require.NoError(t, err)

	g, err := child.Graph()
	require.NoError(t, err)

	// Both records appear, but the service depends on its own injector's
	assert.Len(t, g.Keys(), 3)
	assert.Equal(t, []string{"config"}, g.DependenciesOf("service"))
}

func TestDependencyGraph_MultiPullsAncestors(t *testing.T) {
	root := MustNew([]Provider{Value("plugins", "p").AsMulti()})
	child, err := root.CreateChild([]Provider{Value("plugins", "c").AsMulti()})
	require.NoError(t, err)

	g, err := child.Graph()
	require.NoError(t, err)

	assert.Equal(t, []string{"plugins"}, g.DependenciesOf("plugins"))
}

func TestDependencyGraph_DependenciesOf_Unknown(t *testing.T) {
	g, err := MustNew(nil).Graph()
	require.NoError(t, err)

	assert.Nil(t, g.DependenciesOf("unknown"))
}

func TestValidate_Success(t *testing.T) {
	inj := MustNew([]Provider{
		Type(newTestLogger),
		Class(TypeOf[*testService](), newTestService, TypeOf[*testLogger]()),
		Factory("owner", func(i *Injector) string { return i.Name() }, InjectorToken),
	})

	assert.NoError(t, inj.Validate())

	// Validation never instantiates
	assert.Equal(t, 0, inj.InstanceCount())
}

func TestValidate_MissingDependency(t *testing.T) {
	inj := MustNew([]Provider{
		Factory("service", func(a, b string) string { return a + b }, "missing", Optional("absent")),
	})

	err := inj.Validate()
	require.ErrorIs(t, err, ErrUnresolvedDependency)
	assert.Contains(t, err.Error(), "service(missing, absent?)")
}

func TestValidate_OptionalMissingIsFine(t *testing.T) {
	inj := MustNew([]Provider{
		Factory("service", passThrough, Optional("absent")),
	})

	assert.NoError(t, inj.Validate())
}

func TestValidate_Cycle(t *testing.T) {
	inj := MustNew([]Provider{
		Factory("a", passThrough, "b"),
		Factory("b", passThrough, "c"),
		Factory("c", passThrough, "a"),
	})

	err := inj.Validate()
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestValidate_DuplicateNonMulti(t *testing.T) {
	inj := MustNew([]Provider{Value("X", 1), Value("X", 2)})

	err := inj.Validate()
	assert.ErrorIs(t, err, ErrInvalidProviderState)
}

func TestValidate_RespectsVisibility(t *testing.T) {
	root := MustNew([]Provider{Value("config", "root")})

	selfChild, err := root.CreateChild([]Provider{
		Factory("service", passThrough, Self("config")),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, selfChild.Validate(), ErrUnresolvedDependency)

	skipChild, err := root.CreateChild([]Provider{
		Factory("service", passThrough, SkipSelf("config")),
	})
	require.NoError(t, err)
	assert.NoError(t, skipChild.Validate())
}

func indexOf(slice []string, value string) int {
	for i, v := range slice {
		if v == value {
			return i
		}
	}

	return -1
}
