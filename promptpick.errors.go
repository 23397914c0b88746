package promptpick

import (
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants
const (
	// Document errors
	ErrMsgParseFailed    = "document parsing failed"
	ErrMsgUnknownFormat  = "unknown document format"
	ErrMsgNilDocument    = "document is nil"
	ErrMsgComposeAborted = "composition aborted"

	// Path errors
	ErrMsgMisplacedSentinel = "random selection sentinel must be the final path segment"

	// Host errors
	ErrMsgEncodeFailed    = "text encoding failed"
	ErrMsgMergeFailed     = "conditioning merge failed"
	ErrMsgApplyFailed     = "directive application failed"
	ErrMsgDirectiveLimit  = "directive limit exceeded"
	ErrMsgNilEncoder      = "text encoder is required"
	ErrMsgNilApplier      = "directive applier is required"
	ErrMsgInvalidMaxDepth = "max depth cannot be negative"
)

// Error code constants for categorization
const (
	ErrCodeParse      = "PROMPTPICK_PARSE"
	ErrCodePath       = "PROMPTPICK_PATH"
	ErrCodeHost       = "PROMPTPICK_HOST"
	ErrCodeValidation = "PROMPTPICK_VALIDATION"
)

// Host operation names
const (
	OperationEncode = "encode"
	OperationMerge  = "merge"
	OperationApply  = "apply"
)

// NewDocumentParseError creates a fatal error for a document that cannot be decoded
func NewDocumentParseError(format Format, line int, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeParse, ErrMsgParseFailed)
	} else {
		err = cuserr.NewValidationError(ErrCodeParse, ErrMsgParseFailed)
	}
	return err.
		WithMetadata(MetaKeyFormat, string(format)).
		WithMetadata(MetaKeyLine, strconv.Itoa(line))
}

// NewUnknownFormatError creates an error for an unsupported document format name
func NewUnknownFormatError(name string) error {
	return cuserr.NewValidationError(ErrCodeValidation, ErrMsgUnknownFormat).
		WithMetadata(MetaKeyFormat, name)
}

// NewNilDocumentError creates an error for composing a nil document
func NewNilDocumentError() error {
	return cuserr.NewValidationError(ErrCodeValidation, ErrMsgNilDocument)
}

// NewMisplacedSentinelError creates an error for a ? or ?? that is not the last segment
func NewMisplacedSentinelError(path string, line int) error {
	return cuserr.NewValidationError(ErrCodePath, ErrMsgMisplacedSentinel).
		WithMetadata(MetaKeyPath, path).
		WithMetadata(MetaKeyLine, strconv.Itoa(line))
}

// NewComposeAbortedError wraps a context error that stopped a composition
func NewComposeAbortedError(line int, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeValidation, ErrMsgComposeAborted).
		WithMetadata(MetaKeyLine, strconv.Itoa(line))
}

// NewHostError wraps a failure reported by a host capability
func NewHostError(msg, operation string, line int, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeHost, msg).
		WithMetadata(MetaKeyOperation, operation).
		WithMetadata(MetaKeyLine, strconv.Itoa(line))
}

// NewDirectiveApplyError wraps a failure to apply one directive
func NewDirectiveApplyError(d Directive, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeHost, ErrMsgApplyFailed).
		WithMetadata(MetaKeyOperation, OperationApply).
		WithMetadata(MetaKeyKind, d.Kind).
		WithMetadata(MetaKeyDirective, d.Name).
		WithMetadata(MetaKeyIndex, strconv.Itoa(d.Index))
}

// NewDirectiveLimitError creates an error for compositions carrying more
// directives than the host can apply
func NewDirectiveLimitError(count, limit int) error {
	return cuserr.NewValidationError(ErrCodeHost, ErrMsgDirectiveLimit).
		WithMetadata(MetaKeyIndex, strconv.Itoa(count)).
		WithMetadata(MetaKeyLimit, strconv.Itoa(limit))
}

// NewMissingCapabilityError creates an error for a pipeline built without a host capability
func NewMissingCapabilityError(msg string) error {
	return cuserr.NewValidationError(ErrCodeValidation, msg)
}

// NewInvalidOptionError creates an error for an engine option with a bad value
func NewInvalidOptionError(option, msg string) error {
	return cuserr.NewValidationError(ErrCodeValidation, msg).
		WithMetadata(MetaKeyOption, option)
}
