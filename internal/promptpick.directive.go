package internal

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// directivePattern matches <kind:name:value> tags
var directivePattern = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9_-]*):([^:<>]+):([0-9]+\.?[0-9]*|\.[0-9]+)>`)

// Directive is an inline tag lifted out of resolved text
type Directive struct {
	Kind  string
	Name  string
	Ref   string // Name with path separators escaped
	Value float64
	Raw   string
	Index int
}

// DirectiveExtractor strips directive tags from text
type DirectiveExtractor struct {
	kinds  map[string]bool // nil accepts every kind
	logger *zap.Logger
}

// NewDirectiveExtractor creates an extractor. With no kinds every tag kind is
// extracted; otherwise tags of other kinds are left in the text.
func NewDirectiveExtractor(kinds []string, logger *zap.Logger) *DirectiveExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	x := &DirectiveExtractor{logger: logger}
	if len(kinds) > 0 {
		x.kinds = make(map[string]bool, len(kinds))
		for _, k := range kinds {
			x.kinds[k] = true
		}
	}
	return x
}

// Extract removes every accepted tag from text, left to right, and returns the
// stripped text with the tags numbered from start.
func (x *DirectiveExtractor) Extract(text string, start int) (string, []Directive) {
	matches := directivePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	var directives []Directive
	last := 0
	for _, m := range matches {
		kind := text[m[2]:m[3]]
		if x.kinds != nil && !x.kinds[kind] {
			continue
		}
		value, err := strconv.ParseFloat(text[m[6]:m[7]], 64)
		if err != nil {
			continue
		}
		name := text[m[4]:m[5]]
		directives = append(directives, Directive{
			Kind:  kind,
			Name:  name,
			Ref:   EscapeKey(name, SepPath),
			Value: value,
			Raw:   text[m[0]:m[1]],
			Index: start + len(directives),
		})
		sb.WriteString(text[last:m[0]])
		last = m[1]
	}
	sb.WriteString(text[last:])

	if len(directives) > 0 {
		x.logger.Debug(LogMsgDirectivesFound,
			zap.Int(LogFieldCount, len(directives)),
			zap.Int(LogFieldStartIndex, start))
	}
	return sb.String(), directives
}
