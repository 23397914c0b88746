package promptpick

import (
	"strconv"
	"strings"

	"github.com/itsatony/go-promptpick/internal"
)

// DiagnosticKind classifies a soft anomaly
type DiagnosticKind string

// Diagnostic kinds
const (
	DiagnosticKeyNotFound        = DiagnosticKind(internal.DiagKeyNotFound)
	DiagnosticEmptySelectionPool = DiagnosticKind(internal.DiagEmptySelectionPool)
	DiagnosticMissingVariable    = DiagnosticKind(internal.DiagMissingVariable)
	DiagnosticDepthExceeded      = DiagnosticKind(internal.DiagDepthExceeded)
	DiagnosticIgnoredValue       = DiagnosticKind(internal.DiagIgnoredValue)
)

// Diagnostic describes a soft anomaly. Diagnostics never abort a composition.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Line    int            `json:"line,omitempty"` // 1-indexed key line, 0 for document diagnostics
	Path    string         `json:"path,omitempty"`
	Key     string         `json:"key,omitempty"`
	Message string         `json:"message"`
}

func newDiagnostic(d internal.Diagnostic, line int) Diagnostic {
	return Diagnostic{
		Kind:    DiagnosticKind(d.Kind),
		Line:    line,
		Path:    d.PathString(),
		Key:     d.Key,
		Message: d.Message,
	}
}

// String returns a human-readable form of the diagnostic
func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Line > 0 {
		sb.WriteString("line ")
		sb.WriteString(strconv.Itoa(d.Line))
		sb.WriteString(": ")
	}
	sb.WriteString(string(d.Kind))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Path != "" {
		sb.WriteString(" at ")
		sb.WriteString(d.Path)
	}
	if d.Key != "" {
		sb.WriteString(" (")
		sb.WriteString(d.Key)
		sb.WriteString(")")
	}
	return sb.String()
}

// Directive is an inline <kind:name:value> tag extracted from composed text.
type Directive struct {
	Kind string `json:"kind"`
	// Name is the resource name as written in the tag.
	Name string `json:"name"`
	// Ref is Name with path separators backslash-escaped.
	Ref   string  `json:"ref"`
	Value float64 `json:"value"`
	Raw   string  `json:"raw"`
	// Index is the position of the directive in the whole composition.
	Index int `json:"index"`
}

func newDirectives(in []internal.Directive) []Directive {
	if len(in) == 0 {
		return nil
	}
	out := make([]Directive, len(in))
	for i, d := range in {
		out[i] = Directive{
			Kind:  d.Kind,
			Name:  d.Name,
			Ref:   d.Ref,
			Value: d.Value,
			Raw:   d.Raw,
			Index: d.Index,
		}
	}
	return out
}

// ExtractDirectives strips every <kind:name:value> tag from text and numbers
// them starting at start.
func ExtractDirectives(text string, start int) (string, []Directive) {
	stripped, ds := internal.NewDirectiveExtractor(nil, nil).Extract(text, start)
	return stripped, newDirectives(ds)
}

// Line is the result of one key line
type Line struct {
	// Number is the 1-indexed position in the caller's line list.
	Number int `json:"number"`
	// Source is the line as supplied.
	Source string `json:"source"`
	// Keys is the line with comments removed.
	Keys string `json:"keys"`
	// Paths holds the concrete key path walked for each sub-path.
	Paths []string `json:"paths"`
	// Resolved is the joined fragment text before directive extraction.
	Resolved string `json:"resolved"`
	// Text is Resolved without directives, trimmed.
	Text       string      `json:"text"`
	Directives []Directive `json:"directives,omitempty"`
}

// Empty reports whether the line contributes no text
func (l Line) Empty() bool {
	return l.Text == ""
}

// Composition is the outcome of one Compose call
type Composition struct {
	Seed uint64 `json:"seed"`
	// Text joins the text of every non-empty line with the line separator.
	Text        string       `json:"text"`
	Lines       []Line       `json:"lines"`
	Directives  []Directive  `json:"directives"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Manifest returns the directive refs, one per line, in index order.
func (c *Composition) Manifest() string {
	refs := make([]string, len(c.Directives))
	for i, d := range c.Directives {
		refs[i] = d.Ref
	}
	return strings.Join(refs, ManifestSeparator)
}

// TextLines returns the texts of the non-empty lines in order
func (c *Composition) TextLines() []string {
	var out []string
	for _, l := range c.Lines {
		if !l.Empty() {
			out = append(out, l.Text)
		}
	}
	return out
}

// Clone returns a deep copy of the composition
func (c *Composition) Clone() *Composition {
	if c == nil {
		return nil
	}
	out := &Composition{
		Seed:        c.Seed,
		Text:        c.Text,
		Directives:  append([]Directive(nil), c.Directives...),
		Diagnostics: append([]Diagnostic(nil), c.Diagnostics...),
	}
	if c.Lines != nil {
		out.Lines = make([]Line, len(c.Lines))
		for i, l := range c.Lines {
			l.Paths = append([]string(nil), l.Paths...)
			l.Directives = append([]Directive(nil), l.Directives...)
			out.Lines[i] = l
		}
	}
	return out
}
