package internal

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedChooser returns scripted picks, wrapped into range
type scriptedChooser struct {
	picks []int
	calls []int
}

func (c *scriptedChooser) IntN(n int) int {
	c.calls = append(c.calls, n)
	i := len(c.calls) - 1
	if i >= len(c.picks) {
		return 0
	}
	return c.picks[i] % n
}

const testResolverDocument = `
[animal]
_t = "animal"

[animal.cat]
_t = "cat"

[animal.cat.tabby]
_t = "tabby"

[animal.dog]
_t = "dog"

[style.photo.film]
_t = "film grain"

[color]
_t = "${c} and ${c}"

[color._v]
c = ["red", "blue", "green"]

[broken]
_t = "a ${missing} b"

[root._hidden]
_t = "secret"

[root.visible]
_t = "shown"

[empty]
`

func newTestResolver(t *testing.T, rng Chooser, config ResolverConfig) (*Resolver, *[]Diagnostic) {
	t.Helper()
	root, _, err := ParseTOML(testResolverDocument)
	require.NoError(t, err)

	var diags []Diagnostic
	report := func(d Diagnostic) { diags = append(diags, d) }
	return NewResolver(root, rng, config, report, zap.NewNop()), &diags
}

func TestResolver_LiteralPath(t *testing.T) {
	r, diags := newTestResolver(t, &scriptedChooser{}, DefaultResolverConfig())

	res, err := r.Resolve([]string{"animal", "cat", "tabby"})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal", "cat", "tabby"}, res.Fragments)
	assert.Equal(t, []string{"animal", "cat", "tabby"}, res.Path)
	assert.Empty(t, *diags)
}

func TestResolver_KeyNotFound(t *testing.T) {
	r, diags := newTestResolver(t, &scriptedChooser{}, DefaultResolverConfig())

	res, err := r.Resolve([]string{"animal", "bird", "sparrow"})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal"}, res.Fragments)
	assert.Equal(t, []string{"animal"}, res.Path)

	require.Len(t, *diags, 1)
	d := (*diags)[0]
	assert.Equal(t, DiagKeyNotFound, d.Kind)
	assert.Equal(t, "bird", d.Key)
	assert.Equal(t, []string{"animal"}, d.Path)
}

func TestResolver_RandomPick(t *testing.T) {
	rng := &scriptedChooser{picks: []int{1}}
	r, diags := newTestResolver(t, rng, DefaultResolverConfig())

	res, err := r.Resolve([]string{"animal", "?"})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal", "dog"}, res.Fragments)
	assert.Equal(t, []string{"animal", "dog"}, res.Path)
	assert.Equal(t, []int{2}, rng.calls)
	assert.Empty(t, *diags)
}

func TestResolver_RandomAtRoot(t *testing.T) {
	rng := &scriptedChooser{picks: []int{0}}
	r, _ := newTestResolver(t, rng, DefaultResolverConfig())

	res, err := r.Resolve([]string{"?"})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal"}, res.Path)
	assert.Equal(t, []string{"animal"}, res.Fragments)
}

func TestResolver_RecursiveRandom(t *testing.T) {
	rng := &scriptedChooser{picks: []int{0, 0}}
	r, diags := newTestResolver(t, rng, DefaultResolverConfig())

	res, err := r.Resolve([]string{"animal", "??"})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal", "cat", "tabby"}, res.Fragments)
	assert.Equal(t, []string{"animal", "cat", "tabby"}, res.Path)
	assert.Equal(t, []int{2, 1}, rng.calls)
	assert.Empty(t, *diags, "reaching a leaf ends the walk without a diagnostic")
}

func TestResolver_RecursiveSkipsLevelsWithoutTemplate(t *testing.T) {
	r, _ := newTestResolver(t, &scriptedChooser{}, DefaultResolverConfig())

	res, err := r.Resolve([]string{"style", "??"})
	require.NoError(t, err)
	assert.Equal(t, []string{"film grain"}, res.Fragments)
	assert.Equal(t, []string{"style", "photo", "film"}, res.Path)
}

func TestResolver_RecursiveDepthCap(t *testing.T) {
	r, diags := newTestResolver(t, &scriptedChooser{}, ResolverConfig{MaxDepth: 1})

	res, err := r.Resolve([]string{"animal", "??"})
	require.NoError(t, err)
	assert.Equal(t, []string{"animal", "cat"}, res.Fragments)

	require.Len(t, *diags, 1)
	assert.Equal(t, DiagDepthExceeded, (*diags)[0].Kind)
}

func TestResolver_EmptySelectionPool(t *testing.T) {
	for _, sentinel := range []string{"?", "??"} {
		t.Run(sentinel, func(t *testing.T) {
			rng := &scriptedChooser{}
			r, diags := newTestResolver(t, rng, DefaultResolverConfig())

			res, err := r.Resolve([]string{"animal", "cat", "tabby", sentinel})
			require.NoError(t, err)
			assert.Equal(t, []string{"animal", "cat", "tabby"}, res.Fragments)
			assert.Empty(t, rng.calls)

			require.Len(t, *diags, 1)
			assert.Equal(t, DiagEmptySelectionPool, (*diags)[0].Kind)
		})
	}
}

func TestResolver_EmptyNode(t *testing.T) {
	r, diags := newTestResolver(t, &scriptedChooser{}, DefaultResolverConfig())

	res, err := r.Resolve([]string{"empty"})
	require.NoError(t, err)
	assert.Empty(t, res.Fragments)
	assert.Equal(t, []string{"empty"}, res.Path)
	assert.Empty(t, *diags)
}

func TestResolver_MisplacedSentinel(t *testing.T) {
	tests := [][]string{
		{"?", "cat"},
		{"animal", "??", "cat"},
		{"??", "?"},
	}
	for _, path := range tests {
		t.Run(JoinKey(path, SepPath), func(t *testing.T) {
			rng := &scriptedChooser{}
			r, _ := newTestResolver(t, rng, DefaultResolverConfig())

			_, err := r.Resolve(path)
			assert.ErrorIs(t, err, ErrMisplacedSentinel)
			assert.Empty(t, rng.calls, "no draws before the precondition check")
		})
	}
}

func TestResolver_PlaceholdersDrawIndependently(t *testing.T) {
	rng := &scriptedChooser{picks: []int{0, 1}}
	r, _ := newTestResolver(t, rng, DefaultResolverConfig())

	res, err := r.Resolve([]string{"color"})
	require.NoError(t, err)
	assert.Equal(t, []string{"red and blue"}, res.Fragments)
	assert.Equal(t, []int{3, 3}, rng.calls)
}

func TestResolver_MissingVariable(t *testing.T) {
	r, diags := newTestResolver(t, &scriptedChooser{}, DefaultResolverConfig())

	res, err := r.Resolve([]string{"broken"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a ${missing} b"}, res.Fragments)

	require.Len(t, *diags, 1)
	assert.Equal(t, DiagMissingVariable, (*diags)[0].Kind)
	assert.Equal(t, "missing", (*diags)[0].Key)
}

func TestResolver_ReservedKeys(t *testing.T) {
	t.Run("excluded from random selection", func(t *testing.T) {
		for pick := 0; pick < 4; pick++ {
			rng := &scriptedChooser{picks: []int{pick}}
			r, _ := newTestResolver(t, rng, DefaultResolverConfig())

			res, err := r.Resolve([]string{"root", "?"})
			require.NoError(t, err)
			assert.Equal(t, []string{"shown"}, res.Fragments)
		}
	})

	t.Run("reachable by literal key", func(t *testing.T) {
		r, _ := newTestResolver(t, &scriptedChooser{}, DefaultResolverConfig())

		res, err := r.Resolve([]string{"root", "_hidden"})
		require.NoError(t, err)
		assert.Equal(t, []string{"secret"}, res.Fragments)
	})
}

func TestResolver_SeededDeterminism(t *testing.T) {
	root, _, err := ParseTOML(testResolverDocument)
	require.NoError(t, err)

	run := func(seed uint64) [][]string {
		rng := rand.New(rand.NewPCG(seed, 0))
		r := NewResolver(root, rng, DefaultResolverConfig(), nil, nil)
		var out [][]string
		for _, path := range [][]string{{"animal", "??"}, {"color"}, {"?"}, {"?"}} {
			res, err := r.Resolve(path)
			require.NoError(t, err)
			out = append(out, res.Fragments)
		}
		return out
	}

	for seed := uint64(0); seed < 20; seed++ {
		assert.Equal(t, run(seed), run(seed))
	}
}
