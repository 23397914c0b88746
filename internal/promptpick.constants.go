package internal

// Separator and escape characters for key paths
const (
	SepPath    byte = '.'
	SepCombine byte = '&'
	CharEscape byte = '\\'
)

// Sentinel segments
const (
	SentinelRandom          = "?"
	SentinelRandomRecursive = "??"
)

// Reserved document keys
const (
	ReservedPrefix = "_"
	KeyTemplate    = "_t"
	KeyVariables   = "_v"
	KeyYAMLMerge   = "<<"
)

// Fragment joiner used within a line (between fragments and between sub-paths)
const FragmentSeparator = ","

// DefaultMaxDepth caps the number of levels a ?? walk descends
const DefaultMaxDepth = 100

// DiagnosticKind classifies soft anomalies
type DiagnosticKind string

// Diagnostic kinds
const (
	DiagKeyNotFound        DiagnosticKind = "key_not_found"
	DiagEmptySelectionPool DiagnosticKind = "empty_selection_pool"
	DiagMissingVariable    DiagnosticKind = "missing_variable"
	DiagDepthExceeded      DiagnosticKind = "depth_exceeded"
	DiagIgnoredValue       DiagnosticKind = "ignored_value"
)

// Diagnostic messages
const (
	DiagMsgKeyNotFound        = "key not found"
	DiagMsgEmptySelectionPool = "no eligible children for random selection"
	DiagMsgMissingVariable    = "variable table has no values for placeholder"
	DiagMsgDepthExceeded      = "recursive selection exceeded maximum depth"
	DiagMsgNotATable          = "value is not a table and was ignored"
	DiagMsgTemplateNotString  = "template is not a string and was ignored"
	DiagMsgVariablesNotTable  = "variable table is not a table and was ignored"
	DiagMsgVariableNotList    = "variable entry is not a list of strings and was ignored"
	DiagMsgMergeKey           = "YAML merge keys are not supported and were ignored"
)

// Error messages
const (
	ErrMsgMisplacedSentinel = "random selection sentinel must be the final path segment"
	ErrMsgRootNotMapping    = "document root must be a mapping"
	ErrMsgTOMLDecode        = "invalid TOML document"
	ErrMsgYAMLDecode        = "invalid YAML document"
)

// Log message constants
const (
	LogMsgDocumentParsed    = "document parsed"
	LogMsgResolveStart      = "resolving key path"
	LogMsgResolveComplete   = "key path resolved"
	LogMsgRandomPick        = "random child selected"
	LogMsgDirectivesFound   = "directives extracted"
	LogMsgDiagnosticEmitted = "diagnostic emitted"
)

// Log field constants
const (
	LogFieldPath       = "path"
	LogFieldKey        = "key"
	LogFieldPool       = "pool"
	LogFieldFragments  = "fragments"
	LogFieldCount      = "count"
	LogFieldStartIndex = "start_index"
	LogFieldKind       = "kind"
	LogFieldFormat     = "format"
	LogFieldNodes      = "nodes"
)
