package main

// Command names
const (
	CmdNameCompose  = "compose"
	CmdNamePaths    = "paths"
	CmdNameValidate = "validate"
	CmdNameWatch    = "watch"
	CmdNameStore    = "store"
	CmdNameVersion  = "version"
)

// Store subcommand names
const (
	CmdNameStoreSave     = "save"
	CmdNameStoreList     = "list"
	CmdNameStoreVersions = "versions"
	CmdNameStoreCompose  = "compose"
	CmdNameStoreDelete   = "delete"
)

// Flag names - long form
const (
	FlagConfig         = "config"
	FlagDocument       = "doc"
	FlagDocFormat      = "doc-format"
	FlagKeys           = "keys"
	FlagLine           = "line"
	FlagSeed           = "seed"
	FlagOutput         = "output"
	FlagFormat         = "format"
	FlagStrictMode     = "strict"
	FlagLineSeparator  = "line-separator"
	FlagMaxDepth       = "max-depth"
	FlagDirectiveKinds = "directive-kinds"
	FlagLogLevel       = "log-level"
	FlagStorageDriver  = "storage-driver"
	FlagStorageDSN     = "storage-dsn"
	FlagName           = "name"
	FlagVersion        = "version"
	FlagTag            = "tag"
	FlagPrefix         = "prefix"
	FlagDebounce       = "debounce"
)

// Flag names - short form
const (
	FlagDocumentShort = "d"
	FlagKeysShort     = "k"
	FlagSeedShort     = "s"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagNameShort     = "n"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = OutputFormatText
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Configuration keys, shared by the config file, PROMPTPICK_* env vars and flags
const (
	ConfigKeyFormat         = "format"
	ConfigKeySeed           = "seed"
	ConfigKeyLineSeparator  = "line_separator"
	ConfigKeyMaxDepth       = "max_depth"
	ConfigKeyDirectiveKinds = "directive_kinds"
	ConfigKeyLogLevel       = "log_level"
	ConfigKeyStorageDriver  = "storage_driver"
	ConfigKeyStorageDSN     = "storage_dsn"
)

// Configuration defaults
const (
	ConfigFileName       = "promptpick"
	ConfigFileType       = "yaml"
	ConfigEnvPrefix      = "PROMPTPICK"
	DefaultLogLevel      = "warn"
	DefaultStorageDriver = "filesystem"
	DefaultStorageDSN    = ".promptpick"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgMissingDocument     = "document source required"
	ErrMsgMissingKeys         = "key lines required (--keys or --line)"
	ErrMsgMissingName         = "document name required"
	ErrMsgDoubleStdin         = "document and keys cannot both be read from stdin"
	ErrMsgWatchStdin          = "watch needs files, not stdin"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgParseDocumentFailed = "document parsing failed"
	ErrMsgComposeFailed       = "composition failed"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgInvalidDocFormat    = "invalid document format"
	ErrMsgInvalidConfig       = "invalid configuration"
	ErrMsgInvalidLogLevel     = "invalid log level"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgStorageFailed       = "storage operation failed"
	ErrMsgWatchFailed         = "watch failed"
	ErrMsgValidationFailed    = "document has diagnostics"
)

// Log messages
const (
	LogMsgWatchChange = "watched file changed, recomposing"
	LogMsgStoreOpened = "storage opened"
)

// Validation output format templates
const (
	ValidationTextSuccess     = "Document is valid"
	ValidationTextIssueHeader = "Diagnostics:"
	ValidationTextIssueFormat = "  %s"
	ValidationTextSummary     = "%d diagnostic(s)"
)

// Store output format templates
const (
	StoreTextSaved   = "saved %s v%d (%s)"
	StoreTextEntry   = "%s\tv%d\t%s\t%s"
	StoreTextDeleted = "deleted %s"
)

// Version output format templates
const (
	VersionTextTemplate = "go-promptpick version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// CLI metadata
const (
	CLIName        = "promptpick"
	CLIDescription = "Compose prompts from nested key-value documents"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithCause = "%s: %v\n"
	FmtNewline        = "\n"
)
