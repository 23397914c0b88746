package promptpick

import (
	"github.com/itsatony/go-promptpick/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point for composing prompts.
// It holds the parsing and composition settings; an Engine is safe for
// concurrent use.
type Engine struct {
	config    *engineConfig
	extractor *internal.DirectiveExtractor
	logger    *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.maxDepth < 0 {
		return nil, NewInvalidOptionError("max_depth", ErrMsgInvalidMaxDepth)
	}
	if _, err := ParseFormat(string(config.format)); err != nil {
		return nil, err
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldFormat, string(config.format)),
		zap.Int("max_depth", config.maxDepth),
		zap.Strings("directive_kinds", config.directiveKinds))

	return &Engine{
		config:    config,
		extractor: internal.NewDirectiveExtractor(config.directiveKinds, logger),
		logger:    logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Format returns the document format the engine parses
func (e *Engine) Format() Format {
	return e.config.format
}

// Parse parses a document in the engine's format.
// The returned Document can be composed many times with different seeds.
func (e *Engine) Parse(source string) (*Document, error) {
	return e.ParseAs(source, e.config.format)
}

// ParseAs parses a document in an explicit format.
func (e *Engine) ParseAs(source string, format Format) (*Document, error) {
	doc, err := ParseDocument(source, format)
	if err != nil {
		return nil, err
	}
	for _, d := range doc.diagnostics {
		e.logDiagnostic(d)
	}
	e.logger.Debug(LogMsgDocumentParsed,
		zap.String(LogFieldFormat, string(doc.format)),
		zap.String(LogFieldHash, doc.hash),
		zap.Int(LogFieldNodes, doc.NodeCount()))
	return doc, nil
}

func (e *Engine) logDiagnostic(d Diagnostic) {
	e.logger.Warn(LogMsgDiagnostic,
		zap.String(LogFieldKind, string(d.Kind)),
		zap.Int(LogFieldLine, d.Line),
		zap.String(LogFieldPath, d.Path),
		zap.String(LogFieldKey, d.Key))
}
