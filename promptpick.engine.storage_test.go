package promptpick

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const storageTestDoc = `
[greeting]
_t = "hello ${who}"
_v.who = ["world"]
`

func newObservedStorageEngine(t *testing.T, cacheSize int) (*StorageEngine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	se, err := NewStorageEngine(StorageEngineConfig{
		Storage:         NewMemoryStorage(),
		Engine:          MustNew(WithLogger(zap.New(core))),
		ParsedCacheSize: cacheSize,
	})
	require.NoError(t, err)
	return se, logs
}

func TestNewStorageEngine(t *testing.T) {
	_, err := NewStorageEngine(StorageEngineConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNilStorage)

	assert.Panics(t, func() { MustNewStorageEngine(StorageEngineConfig{}) })

	storage := NewMemoryStorage()
	se := MustNewStorageEngine(StorageEngineConfig{Storage: storage})
	assert.NotNil(t, se.Engine())
	assert.Same(t, storage, se.Storage())
}

func TestStorageEngine_SaveAndCompose(t *testing.T) {
	se, _ := newObservedStorageEngine(t, 0)
	ctx := context.Background()

	stored, err := se.Save(ctx, "greetings", storageTestDoc, "", "demo")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	assert.Equal(t, FormatTOML, stored.Format)
	assert.Equal(t, []string{"demo"}, stored.Tags)

	comp, err := se.Compose(ctx, "greetings", []string{"greeting"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "hello world", comp.Text)

	_, err = se.Save(ctx, "greetings", "[greeting]\n_t = \"goodbye\"\n", FormatTOML)
	require.NoError(t, err)

	latest, err := se.Compose(ctx, "greetings", []string{"greeting"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "goodbye", latest.Text)

	first, err := se.ComposeVersion(ctx, "greetings", 1, []string{"greeting"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "hello world", first.Text)
}

func TestStorageEngine_SaveRejectsBrokenDocument(t *testing.T) {
	se, _ := newObservedStorageEngine(t, 0)
	ctx := context.Background()

	_, err := se.Save(ctx, "broken", "[unclosed\n", FormatTOML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgParseFailed)

	exists, err := se.Storage().Exists(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStorageEngine_YAML(t *testing.T) {
	se, _ := newObservedStorageEngine(t, 0)
	ctx := context.Background()

	_, err := se.Save(ctx, "styles", "style:\n  _t: watercolor\n", FormatYAML)
	require.NoError(t, err)

	doc, err := se.Load(ctx, "styles")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, doc.Format())

	comp, err := se.Compose(ctx, "styles", []string{"style"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "watercolor", comp.Text)
}

func TestStorageEngine_ParsedCache(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		se, logs := newObservedStorageEngine(t, 0)
		ctx := context.Background()

		_, err := se.Save(ctx, "greetings", storageTestDoc, FormatTOML)
		require.NoError(t, err)
		assert.Equal(t, 1, se.CachedDocuments())

		for i := 0; i < 3; i++ {
			_, err := se.Load(ctx, "greetings")
			require.NoError(t, err)
		}
		assert.Equal(t, 1, logs.FilterMessage(LogMsgDocumentParsed).Len())
		assert.Equal(t, 3, logs.FilterMessage(LogMsgParsedCacheHit).Len())

		se.ClearCache()
		assert.Equal(t, 0, se.CachedDocuments())
		_, err = se.Load(ctx, "greetings")
		require.NoError(t, err)
		assert.Equal(t, 2, logs.FilterMessage(LogMsgDocumentParsed).Len())
	})

	t.Run("disabled", func(t *testing.T) {
		se, logs := newObservedStorageEngine(t, -1)
		ctx := context.Background()

		_, err := se.Save(ctx, "greetings", storageTestDoc, FormatTOML)
		require.NoError(t, err)
		_, err = se.Load(ctx, "greetings")
		require.NoError(t, err)

		assert.Equal(t, 0, se.CachedDocuments())
		assert.Equal(t, 2, logs.FilterMessage(LogMsgDocumentParsed).Len())
		se.ClearCache()
	})
}

func TestStorageEngine_NotFound(t *testing.T) {
	se, _ := newObservedStorageEngine(t, 0)
	ctx := context.Background()

	_, err := se.Compose(ctx, "missing", []string{"a"}, 0)
	assert.True(t, IsNotFound(err))

	_, err = se.ComposeVersion(ctx, "missing", 2, []string{"a"}, 0)
	assert.True(t, IsNotFound(err))
}
