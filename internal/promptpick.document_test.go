package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTOMLDocument = `
[hair]
_t = "${color} hair"

[hair._v]
color = ["black", "silver", "red"]

[hair.long]
_t = "long hair"

[hair.short]
_t = "short hair"

[hair._notes]
_t = "internal"

[background]
_t = "simple background"
`

func TestParseTOML_Structure(t *testing.T) {
	root, diags, err := ParseTOML(testTOMLDocument)
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, []string{"hair", "background"}, root.EligibleKeys())

	hair, ok := root.Child("hair")
	require.True(t, ok)
	require.True(t, hair.HasTemplate())
	assert.Equal(t, "${color} hair", *hair.Template)
	assert.Equal(t, []string{"black", "silver", "red"}, hair.Variables["color"])
	assert.Equal(t, []string{"long", "short"}, hair.EligibleKeys())

	notes, ok := hair.Child("_notes")
	require.True(t, ok, "reserved tables stay addressable")
	assert.Equal(t, "internal", *notes.Template)

	_, ok = root.Child("missing")
	assert.False(t, ok)
}

func TestParseTOML_DocumentOrder(t *testing.T) {
	source := `
[zeta]
_t = "z"
[alpha]
_t = "a"
[mid]
_t = "m"
`
	root, _, err := ParseTOML(source)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, root.EligibleKeys())
}

func TestParseTOML_InlineTables(t *testing.T) {
	source := `
pose = { _t = "standing", sitting = { _t = "sitting" } }
`
	root, _, err := ParseTOML(source)
	require.NoError(t, err)

	pose, ok := root.Child("pose")
	require.True(t, ok)
	assert.Equal(t, "standing", *pose.Template)

	sitting, ok := pose.Child("sitting")
	require.True(t, ok)
	assert.Equal(t, "sitting", *sitting.Template)
}

func TestParseTOML_Diagnostics(t *testing.T) {
	source := `
loose = "not a table"
_comment = "reserved scalars are ignored silently"

[node]
_t = 42
_v = "nope"

[other._v]
count = [1, 2.5, true]
single = "only"
bad = [{ a = 1 }]
`
	root, diags, err := ParseTOML(source)
	require.NoError(t, err)

	_, ok := root.Child("loose")
	assert.False(t, ok)

	node, ok := root.Child("node")
	require.True(t, ok)
	assert.False(t, node.HasTemplate())
	assert.Nil(t, node.Variables)

	other, ok := root.Child("other")
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2.5", "true"}, other.Variables["count"])
	assert.Equal(t, []string{"only"}, other.Variables["single"])
	assert.Empty(t, other.Variables["bad"])

	kinds := make(map[string]int)
	for _, d := range diags {
		assert.Equal(t, DiagIgnoredValue, d.Kind)
		kinds[d.Message]++
	}
	assert.Equal(t, 1, kinds[DiagMsgNotATable])
	assert.Equal(t, 1, kinds[DiagMsgTemplateNotString])
	assert.Equal(t, 1, kinds[DiagMsgVariablesNotTable])
	assert.Equal(t, 1, kinds[DiagMsgVariableNotList])
}

func TestParseTOML_Invalid(t *testing.T) {
	_, _, err := ParseTOML("[unclosed\n_t = 1")
	require.Error(t, err)

	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, "toml", docErr.Format)
	assert.Contains(t, err.Error(), ErrMsgTOMLDecode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestParseTOML_Empty(t *testing.T) {
	root, diags, err := ParseTOML("")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Empty(t, root.EligibleKeys())
}

func TestParseYAML_Structure(t *testing.T) {
	source := `
zeta:
  _t: "${mood} sky"
  _v:
    mood: [clear, stormy]
  night:
    _t: starry
alpha:
  _t: field
`
	root, diags, err := ParseYAML(source)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, []string{"zeta", "alpha"}, root.EligibleKeys())

	zeta, _ := root.Child("zeta")
	assert.Equal(t, "${mood} sky", *zeta.Template)
	assert.Equal(t, []string{"clear", "stormy"}, zeta.Variables["mood"])

	night, ok := zeta.Child("night")
	require.True(t, ok)
	assert.Equal(t, "starry", *night.Template)
}

func TestParseYAML_JSON(t *testing.T) {
	root, _, err := ParseYAML(`{"a": {"_t": "hello ${x}", "_v": {"x": ["world", "there"]}}}`)
	require.NoError(t, err)

	a, ok := root.Child("a")
	require.True(t, ok)
	assert.Equal(t, "hello ${x}", *a.Template)
	assert.Equal(t, []string{"world", "there"}, a.Variables["x"])
}

func TestParseYAML_Anchors(t *testing.T) {
	source := `
base: &base
  _t: shared
copy: *base
`
	root, _, err := ParseYAML(source)
	require.NoError(t, err)

	cp, ok := root.Child("copy")
	require.True(t, ok)
	assert.Equal(t, "shared", *cp.Template)
}

func TestParseYAML_Errors(t *testing.T) {
	t.Run("root is not a mapping", func(t *testing.T) {
		_, _, err := ParseYAML("- a\n- b\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgRootNotMapping)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, _, err := ParseYAML("a:\n  b: [unclosed\n")
		require.Error(t, err)

		var docErr *DocumentError
		require.True(t, errors.As(err, &docErr))
		assert.Equal(t, "yaml", docErr.Format)
	})

	t.Run("empty document", func(t *testing.T) {
		root, _, err := ParseYAML("")
		require.NoError(t, err)
		assert.Empty(t, root.EligibleKeys())
	})
}

func TestNode_PlaceholdersAndWalk(t *testing.T) {
	root, _, err := ParseTOML(testTOMLDocument)
	require.NoError(t, err)

	hair, _ := root.Child("hair")
	assert.Equal(t, []string{"color"}, hair.Placeholders())

	var visited []string
	root.Walk(func(path []string, _ *Node) {
		visited = append(visited, JoinKey(path, SepPath))
	})
	assert.Equal(t, []string{"", "hair", "hair.long", "hair.short", "background"}, visited)
	assert.Equal(t, 5, root.Count())
}

func TestNode_AddChildKeepsPosition(t *testing.T) {
	n := NewNode()
	n.AddChild("a", NewNode())
	n.AddChild("_meta", NewNode())
	n.AddChild("b", NewNode())
	n.AddChild("a", NewNode())

	assert.Equal(t, []string{"a", "b"}, n.EligibleKeys())
	assert.Len(t, n.Children, 3)
}
