package promptpick

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"toml", FormatTOML, false},
		{".TOML", FormatTOML, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{".json", FormatYAML, false},
		{"ini", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), ErrMsgUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatFromFilename("prompts.toml"))
	assert.Equal(t, FormatYAML, FormatFromFilename("dir/prompts.yaml"))
	assert.Equal(t, FormatYAML, FormatFromFilename("prompts.json"))
	assert.Equal(t, DefaultFormat, FormatFromFilename("prompts"))
	assert.Equal(t, DefaultFormat, FormatFromFilename("prompts.txt"))
}

func TestParseDocument(t *testing.T) {
	source := `
[subject]
[subject.cat]
_t = "a ${color} cat"
_v.color = ["black", "white"]

[subject.dog]
_t = "a ${size} dog"

[_private]
_t = "hidden"
`
	doc, err := ParseDocument(source, FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, FormatTOML, doc.Format())
	assert.Equal(t, HashSource(source), doc.Hash())
	assert.Len(t, doc.Hash(), 64)

	assert.Equal(t, []string{"subject", "subject.cat", "subject.dog"}, doc.Paths())
	assert.Equal(t, 4, doc.NodeCount())

	assert.True(t, doc.Has("subject.cat"))
	assert.True(t, doc.Has("_private"))
	assert.False(t, doc.Has("subject.bird"))
	assert.False(t, doc.Has("subject.?"))

	lint := doc.Lint()
	require.Len(t, lint, 1)
	assert.Equal(t, DiagnosticMissingVariable, lint[0].Kind)
	assert.Equal(t, "subject.dog", lint[0].Path)
	assert.Equal(t, "size", lint[0].Key)
}

func TestParseDocument_Diagnostics(t *testing.T) {
	doc, err := ParseDocument("count = 3\n[a]\n_t = \"x\"\n", FormatTOML)
	require.NoError(t, err)

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, DiagnosticIgnoredValue, diags[0].Kind)
	assert.Equal(t, "count", diags[0].Key)
	assert.Equal(t, 0, diags[0].Line)

	// copies are returned
	diags[0].Key = "changed"
	assert.Equal(t, "count", doc.Diagnostics()[0].Key)
}

func TestParseDocument_Errors(t *testing.T) {
	t.Run("invalid toml", func(t *testing.T) {
		_, err := ParseDocument("[a\n", FormatTOML)
		require.Error(t, err)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		format, ok := customErr.GetMetadata(MetaKeyFormat)
		assert.True(t, ok)
		assert.Equal(t, string(FormatTOML), format)
	})

	t.Run("yaml root not a mapping", func(t *testing.T) {
		_, err := ParseDocument("- a\n- b\n", FormatYAML)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgParseFailed)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseDocument("", Format("xml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownFormat)
	})
}

func TestParseDocument_Empty(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		doc, err := ParseDocument("", format)
		require.NoError(t, err)
		assert.Empty(t, doc.Paths())
		assert.Equal(t, 1, doc.NodeCount())
	}
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{Kind: DiagnosticKeyNotFound, Line: 2, Path: "a.b", Key: "c", Message: "key not found"}
	assert.Equal(t, "line 2: key_not_found: key not found at a.b (c)", d.String())

	d = Diagnostic{Kind: DiagnosticEmptySelectionPool, Message: "no eligible keys"}
	assert.Equal(t, "empty_selection_pool: no eligible keys", d.String())
}

func TestExtractDirectives(t *testing.T) {
	text, ds := ExtractDirectives("foo <lora:myLora:0.8> bar", 0)
	assert.Equal(t, "foo  bar", text)
	require.Len(t, ds, 1)
	assert.Equal(t, "lora", ds[0].Kind)
	assert.Equal(t, "myLora", ds[0].Name)
	assert.InDelta(t, 0.8, ds[0].Value, 1e-12)
	assert.Equal(t, 0, ds[0].Index)

	text, ds = ExtractDirectives("plain", 4)
	assert.Equal(t, "plain", text)
	assert.Empty(t, ds)
}

func TestKeyPathHelpers(t *testing.T) {
	assert.Equal(t, []string{"a.b"}, SplitKey(`a\.b`, '.'))
	assert.Equal(t, []string{"a", "b"}, SplitKey("a.b", '.'))

	segment := "v1.5.final"
	assert.Equal(t, []string{segment}, SplitKey(EscapeKey(segment, '.'), '.'))
	assert.Equal(t, `x.v1\.5`, JoinKey([]string{"x", "v1.5"}, '.'))

	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Nil(t, SplitLines(""))
}

func TestComposition_Clone(t *testing.T) {
	orig := &Composition{
		Seed: 1,
		Text: "x",
		Lines: []Line{{
			Number:     1,
			Paths:      []string{"a"},
			Directives: []Directive{{Name: "l"}},
		}},
		Directives: []Directive{{Name: "l"}},
	}
	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Lines[0].Paths[0] = "changed"
	clone.Directives[0].Name = "changed"
	clone.Lines[0].Directives[0].Name = "changed"
	assert.Equal(t, "a", orig.Lines[0].Paths[0])
	assert.Equal(t, "l", orig.Directives[0].Name)
	assert.Equal(t, "l", orig.Lines[0].Directives[0].Name)

	var nilComp *Composition
	assert.Nil(t, nilComp.Clone())
}
