package promptpick

import "time"

// Key path syntax
const (
	PathSeparator           = "."
	CombineSeparator        = "&"
	SentinelRandom          = "?"
	SentinelRandomRecursive = "??"
)

// Reserved document keys
const (
	ReservedKeyPrefix = "_"
	KeyTemplate       = "_t"
	KeyVariables      = "_v"
)

// Composition defaults
const (
	DefaultLineSeparator = ","
	DefaultMaxDepth      = 100
	DefaultFormat        = FormatTOML
)

// Directive kinds known to the host pipeline
const (
	DirectiveKindLora = "lora"
)

// Pipeline defaults
const (
	// DefaultMaxDirectives matches the host's bank of directive loaders.
	DefaultMaxDirectives = 10
	// SlotStrengthEpsilon is the smallest strength ApplySlots treats as set.
	SlotStrengthEpsilon = 1e-10
	// ManifestSeparator joins directive refs in a manifest.
	ManifestSeparator = "\n"
)

// pcgStream is the fixed second PCG word; the caller's seed is the first.
const pcgStream uint64 = 0x9e3779b97f4a7c15

// Result cache defaults
const (
	DefaultResultCacheTTL        = 10 * time.Minute
	DefaultResultCacheMaxEntries = 512
	DefaultParsedCacheMaxEntries = 128
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
)

// Storage ID prefix
const DocumentIDPrefix = "doc_"

// Filesystem storage
const (
	FilesystemDirPermissions  = 0o755
	FilesystemFilePermissions = 0o644
	FilesystemVersionPrefix   = "v"
	FilesystemVersionSuffix   = ".json"
	FilesystemMaxNameLength   = 255
)

// Postgres storage defaults
const (
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresTablePrefix            = "promptpick_"
)

// Watcher defaults
const DefaultWatchDebounce = 250 * time.Millisecond

// Metadata keys attached to errors
const (
	MetaKeyFormat    = "format"
	MetaKeyLine      = "line"
	MetaKeyPath      = "path"
	MetaKeySegment   = "segment"
	MetaKeyIndex     = "index"
	MetaKeyDirective = "directive"
	MetaKeyKind      = "kind"
	MetaKeyLimit     = "limit"
	MetaKeyOperation = "operation"
	MetaKeyOption    = "option"
)

// Log message constants
const (
	LogMsgEngineCreated     = "engine created"
	LogMsgComposeStart      = "starting composition"
	LogMsgComposeEnd        = "composition complete"
	LogMsgLineSkipped       = "line skipped"
	LogMsgLineComposed      = "line composed"
	LogMsgDiagnostic        = "prompt diagnostic"
	LogMsgCacheHit          = "composition cache hit"
	LogMsgDirectiveApplied  = "directive applied"
	LogMsgSlotApplied       = "slot applied"
	LogMsgDocumentParsed    = "document parsed"
	LogMsgWatcherEvent      = "watched file changed"
	LogMsgWatcherError      = "file watcher error"
	LogMsgWatcherCallback   = "watch callback failed"
	LogMsgStorageDocLoaded  = "document loaded from storage"
	LogMsgStorageDocSaved   = "document saved to storage"
	LogMsgParsedCacheHit    = "parsed document cache hit"
)

// Log field constants
const (
	LogFieldSeed        = "seed"
	LogFieldLines       = "lines"
	LogFieldLine        = "line"
	LogFieldText        = "text"
	LogFieldDirectives  = "directives"
	LogFieldDiagnostics = "diagnostics"
	LogFieldKind        = "kind"
	LogFieldPath        = "path"
	LogFieldKey         = "key"
	LogFieldIndex       = "index"
	LogFieldName        = "name"
	LogFieldValue       = "value"
	LogFieldFormat      = "format"
	LogFieldHash        = "hash"
	LogFieldFile        = "file"
	LogFieldOp          = "op"
	LogFieldVersion     = "version"
	LogFieldDriver      = "driver"
	LogFieldNodes       = "nodes"
)
