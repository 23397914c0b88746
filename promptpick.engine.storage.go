package promptpick

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Storage engine error messages
const (
	ErrMsgNilStorage = "document storage is required"
)

// StorageEngine composes prompts from documents held in a DocumentStorage.
// Parsed documents are cached by content hash, so unchanged versions are
// parsed once.
type StorageEngine struct {
	engine  *Engine
	storage DocumentStorage
	parsed  *lru.Cache[string, *Document] // nil when disabled
}

// StorageEngineConfig configures the StorageEngine.
type StorageEngineConfig struct {
	// Storage is the document storage backend (required).
	Storage DocumentStorage

	// Engine composes the documents. If nil, New() is used.
	Engine *Engine

	// ParsedCacheSize bounds the parsed-document cache.
	// Default: 128. Negative disables the cache.
	ParsedCacheSize int
}

// NewStorageEngine creates a new StorageEngine.
func NewStorageEngine(config StorageEngineConfig) (*StorageEngine, error) {
	if config.Storage == nil {
		return nil, &StorageError{Message: ErrMsgNilStorage}
	}

	engine := config.Engine
	if engine == nil {
		var err error
		if engine, err = New(); err != nil {
			return nil, err
		}
	}

	se := &StorageEngine{engine: engine, storage: config.Storage}
	if config.ParsedCacheSize >= 0 {
		size := config.ParsedCacheSize
		if size == 0 {
			size = DefaultParsedCacheMaxEntries
		}
		cache, err := lru.New[string, *Document](size)
		if err != nil {
			return nil, err
		}
		se.parsed = cache
	}
	return se, nil
}

// MustNewStorageEngine creates a new StorageEngine, panicking on error.
func MustNewStorageEngine(config StorageEngineConfig) *StorageEngine {
	se, err := NewStorageEngine(config)
	if err != nil {
		panic(err)
	}
	return se
}

// Engine returns the underlying engine
func (se *StorageEngine) Engine() *Engine {
	return se.engine
}

// Storage returns the underlying storage
func (se *StorageEngine) Storage() DocumentStorage {
	return se.storage
}

// Save parses source to reject broken documents, then stores it as a new
// version of name. An empty format uses the engine's format.
func (se *StorageEngine) Save(ctx context.Context, name, source string, format Format, tags ...string) (*StoredDocument, error) {
	if format == "" {
		format = se.engine.Format()
	}
	doc, err := se.engine.ParseAs(source, format)
	if err != nil {
		return nil, err
	}

	stored := &StoredDocument{Name: name, Source: source, Format: format, Tags: tags}
	if err := se.storage.Save(ctx, stored); err != nil {
		return nil, err
	}
	se.remember(doc)

	se.engine.logger.Debug(LogMsgStorageDocSaved,
		zap.String(LogFieldName, name),
		zap.Int(LogFieldVersion, stored.Version),
		zap.String(LogFieldHash, stored.Hash))
	return stored, nil
}

// Load returns the parsed latest version of name.
func (se *StorageEngine) Load(ctx context.Context, name string) (*Document, error) {
	stored, err := se.storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return se.parse(stored)
}

// LoadVersion returns the parsed version of name.
func (se *StorageEngine) LoadVersion(ctx context.Context, name string, version int) (*Document, error) {
	stored, err := se.storage.GetVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return se.parse(stored)
}

// Compose composes lines against the latest version of name.
func (se *StorageEngine) Compose(ctx context.Context, name string, lines []string, seed uint64) (*Composition, error) {
	doc, err := se.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return se.engine.ComposeDocument(ctx, doc, lines, seed)
}

// ComposeVersion composes lines against a specific version of name.
func (se *StorageEngine) ComposeVersion(ctx context.Context, name string, version int, lines []string, seed uint64) (*Composition, error) {
	doc, err := se.LoadVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return se.engine.ComposeDocument(ctx, doc, lines, seed)
}

// ClearCache drops every parsed document
func (se *StorageEngine) ClearCache() {
	if se.parsed != nil {
		se.parsed.Purge()
	}
}

// CachedDocuments returns the number of parsed documents held
func (se *StorageEngine) CachedDocuments() int {
	if se.parsed == nil {
		return 0
	}
	return se.parsed.Len()
}

func (se *StorageEngine) parse(stored *StoredDocument) (*Document, error) {
	se.engine.logger.Debug(LogMsgStorageDocLoaded,
		zap.String(LogFieldName, stored.Name),
		zap.Int(LogFieldVersion, stored.Version))

	key := parsedCacheKey(stored.Format, HashSource(stored.Source))
	if se.parsed != nil {
		if doc, ok := se.parsed.Get(key); ok {
			se.engine.logger.Debug(LogMsgParsedCacheHit, zap.String(LogFieldHash, doc.Hash()))
			return doc, nil
		}
	}

	doc, err := se.engine.ParseAs(stored.Source, stored.Format)
	if err != nil {
		return nil, err
	}
	se.remember(doc)
	return doc, nil
}

func (se *StorageEngine) remember(doc *Document) {
	if se.parsed != nil {
		se.parsed.Add(parsedCacheKey(doc.Format(), doc.Hash()), doc)
	}
}

func parsedCacheKey(format Format, hash string) string {
	return string(format) + ":" + hash
}
