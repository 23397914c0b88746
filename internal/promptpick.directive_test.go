package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDirectiveExtractor_Extract(t *testing.T) {
	x := NewDirectiveExtractor(nil, zap.NewNop())

	t.Run("single lora tag", func(t *testing.T) {
		text, directives := x.Extract("foo <lora:myLora:0.8> bar", 0)
		assert.Equal(t, "foo  bar", text)
		require.Len(t, directives, 1)

		d := directives[0]
		assert.Equal(t, "lora", d.Kind)
		assert.Equal(t, "myLora", d.Name)
		assert.Equal(t, "myLora", d.Ref)
		assert.InDelta(t, 0.8, d.Value, 1e-9)
		assert.Equal(t, "<lora:myLora:0.8>", d.Raw)
		assert.Equal(t, 0, d.Index)
	})

	t.Run("indices continue from start", func(t *testing.T) {
		text, directives := x.Extract("<lora:a:1>,cat,<lora:b:.5>,<hypernet:c:2.>", 3)
		assert.Equal(t, ",cat,,", text)
		require.Len(t, directives, 3)
		for i, d := range directives {
			assert.Equal(t, 3+i, d.Index)
		}
		assert.Equal(t, "hypernet", directives[2].Kind)
		assert.InDelta(t, 0.5, directives[1].Value, 1e-9)
		assert.InDelta(t, 2.0, directives[2].Value, 1e-9)
	})

	t.Run("names are escaped for key paths", func(t *testing.T) {
		_, directives := x.Extract("<lora:style_v1.5.safetensors:1>", 0)
		require.Len(t, directives, 1)
		assert.Equal(t, "style_v1.5.safetensors", directives[0].Name)
		assert.Equal(t, `style_v1\.5\.safetensors`, directives[0].Ref)
	})

	t.Run("non matching tags are kept", func(t *testing.T) {
		inputs := []string{
			"<lora:name>",
			"<lora:name:-1>",
			"<lora:name:abc>",
			"<lora::1>",
			"a < b: c: 1 >",
			"plain text",
		}
		for _, in := range inputs {
			text, directives := x.Extract(in, 0)
			assert.Equal(t, in, text)
			assert.Empty(t, directives)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		text, directives := x.Extract("", 7)
		assert.Equal(t, "", text)
		assert.Nil(t, directives)
	})
}

func TestDirectiveExtractor_KindFilter(t *testing.T) {
	x := NewDirectiveExtractor([]string{"lora"}, zap.NewNop())

	text, directives := x.Extract("<embed:face:1> portrait <lora:detail:0.4>", 0)
	assert.Equal(t, "<embed:face:1> portrait ", text)
	require.Len(t, directives, 1)
	assert.Equal(t, "detail", directives[0].Name)
	assert.Equal(t, 0, directives[0].Index)
}
