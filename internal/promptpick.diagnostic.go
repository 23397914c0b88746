package internal

import "strings"

// Diagnostic is a soft anomaly found while parsing or resolving a document.
type Diagnostic struct {
	Kind    DiagnosticKind
	Path    []string // key path where the anomaly was found
	Key     string   // offending key or placeholder name
	Message string
}

// PathString returns the escaped dotted form of Path
func (d Diagnostic) PathString() string {
	return JoinKey(d.Path, SepPath)
}

// String returns a human-readable form of the diagnostic
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Kind))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if len(d.Path) > 0 {
		sb.WriteString(" at ")
		sb.WriteString(d.PathString())
	}
	if d.Key != "" {
		sb.WriteString(" (")
		sb.WriteString(d.Key)
		sb.WriteString(")")
	}
	return sb.String()
}

// Reporter receives diagnostics as they are emitted
type Reporter func(Diagnostic)

// DiscardReporter drops every diagnostic
func DiscardReporter(Diagnostic) {}

// diagnosticList collects diagnostics in emission order
type diagnosticList struct {
	items []Diagnostic
}

func (l *diagnosticList) add(kind DiagnosticKind, path []string, key, msg string) {
	p := make([]string, len(path))
	copy(p, path)
	l.items = append(l.items, Diagnostic{Kind: kind, Path: p, Key: key, Message: msg})
}
