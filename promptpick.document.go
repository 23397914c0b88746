package promptpick

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-promptpick/internal"
)

// Format identifies the serialization of a prompt document.
type Format string

// Supported document formats
const (
	// FormatTOML is the native format: tables are nodes, `_t` and `_v` are reserved keys.
	FormatTOML Format = "toml"
	// FormatYAML accepts YAML and JSON documents with the same layout.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a format name or file extension into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml", "json":
		return FormatYAML, nil
	}
	return "", NewUnknownFormatError(name)
}

// FormatFromFilename picks the format from a file extension, falling back to
// DefaultFormat for unknown extensions.
func FormatFromFilename(name string) Format {
	f, err := ParseFormat(filepath.Ext(name))
	if err != nil {
		return DefaultFormat
	}
	return f
}

// Document is a parsed prompt document. It is immutable and safe to compose
// from several goroutines.
type Document struct {
	root        *internal.Node
	format      Format
	hash        string
	diagnostics []Diagnostic
}

// ParseDocument parses source in the given format.
// A document that cannot be decoded returns a parse error; values that
// merely don't fit the node layout are skipped and listed in Diagnostics.
func ParseDocument(source string, format Format) (*Document, error) {
	var (
		root  *internal.Node
		diags []internal.Diagnostic
		err   error
	)
	switch format {
	case FormatTOML:
		root, diags, err = internal.ParseTOML(source)
	case FormatYAML:
		root, diags, err = internal.ParseYAML(source)
	default:
		return nil, NewUnknownFormatError(string(format))
	}
	if err != nil {
		line := 0
		var docErr *internal.DocumentError
		if errors.As(err, &docErr) {
			line = docErr.Line
		}
		return nil, NewDocumentParseError(format, line, err)
	}

	doc := &Document{
		root:   root,
		format: format,
		hash:   HashSource(source),
	}
	for _, d := range diags {
		doc.diagnostics = append(doc.diagnostics, newDiagnostic(d, 0))
	}
	return doc, nil
}

// HashSource returns the hex sha256 digest used to identify document content.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Format returns the format the document was parsed from
func (d *Document) Format() Format {
	return d.format
}

// Hash returns the content digest of the source
func (d *Document) Hash() string {
	return d.hash
}

// Diagnostics returns the anomalies found while parsing
func (d *Document) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(d.diagnostics))
	copy(out, d.diagnostics)
	return out
}

// NodeCount returns the number of nodes reachable through non-reserved keys,
// the root included.
func (d *Document) NodeCount() int {
	return d.root.Count()
}

// Paths lists every addressable key path in document order, escaped so each
// entry can be used as a key line.
func (d *Document) Paths() []string {
	var paths []string
	d.root.Walk(func(path []string, _ *internal.Node) {
		if len(path) > 0 {
			paths = append(paths, internal.JoinKey(path, internal.SepPath))
		}
	})
	return paths
}

// Has reports whether a literal key path exists. Paths with sentinels never match.
func (d *Document) Has(path string) bool {
	node := d.root
	for _, seg := range internal.SplitKey(path, internal.SepPath) {
		if internal.IsSentinel(seg) {
			return false
		}
		child, ok := node.Child(seg)
		if !ok {
			return false
		}
		node = child
	}
	return true
}

// Lint returns the parse diagnostics plus one missing_variable diagnostic for
// every placeholder that has no values in its node's variable table.
func (d *Document) Lint() []Diagnostic {
	out := d.Diagnostics()
	d.root.Walk(func(path []string, node *internal.Node) {
		for _, name := range node.Placeholders() {
			if len(node.Variables[name]) == 0 {
				out = append(out, Diagnostic{
					Kind:    DiagnosticMissingVariable,
					Path:    internal.JoinKey(path, internal.SepPath),
					Key:     name,
					Message: internal.DiagMsgMissingVariable,
				})
			}
		}
	})
	return out
}
