package internal

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DocumentError reports a document that could not be decoded at all
type DocumentError struct {
	Format  string
	Line    int // 1-indexed, 0 when unknown
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DocumentError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg += " at line " + strconv.Itoa(e.Line)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the decoder error
func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// orderedMap is a decoded table that remembers key order
type orderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap(size int) *orderedMap {
	return &orderedMap{values: make(map[string]any, size)}
}

func (m *orderedMap) set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// ParseTOML decodes a TOML document into a node tree. Children keep the order
// in which their keys appear in the source.
func ParseTOML(source string) (*Node, []Diagnostic, error) {
	var raw map[string]any
	md, err := toml.Decode(source, &raw)
	if err != nil {
		docErr := &DocumentError{Format: "toml", Message: ErrMsgTOMLDecode, Cause: err}
		var pe toml.ParseError
		if errors.As(err, &pe) {
			docErr.Line = pe.Position.Line
		}
		return nil, nil, docErr
	}

	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		full := tomlPathKey(key)
		if seen[full] {
			continue
		}
		seen[full] = true
		parent := tomlPathKey(key[:len(key)-1])
		order[parent] = append(order[parent], key[len(key)-1])
	}

	diags := &diagnosticList{}
	root := buildNode(orderTOMLTable(raw, "", order), nil, diags)
	return root, diags.items, nil
}

// tomlPathKey flattens a key path into a map key that cannot collide with
// another path.
func tomlPathKey(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteByte(0)
		sb.WriteString(p)
	}
	return sb.String()
}

func orderTOMLTable(table map[string]any, prefix string, order map[string][]string) *orderedMap {
	om := newOrderedMap(len(table))
	keys := make([]string, 0, len(table))
	listed := make(map[string]bool, len(table))
	for _, k := range order[prefix] {
		if _, ok := table[k]; ok && !listed[k] {
			listed[k] = true
			keys = append(keys, k)
		}
	}
	// keys the metadata did not report, e.g. inside inline tables
	var rest []string
	for k := range table {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	for _, k := range keys {
		v := table[k]
		if sub, ok := v.(map[string]any); ok {
			v = orderTOMLTable(sub, prefix+"\x00"+k, order)
		}
		om.set(k, v)
	}
	return om
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// ParseYAML decodes a YAML (or JSON) document into a node tree. Children keep
// their mapping order.
func ParseYAML(source string) (*Node, []Diagnostic, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		docErr := &DocumentError{Format: "yaml", Message: ErrMsgYAMLDecode, Cause: err}
		if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
			docErr.Line, _ = strconv.Atoi(m[1])
		}
		return nil, nil, docErr
	}

	diags := &diagnosticList{}
	// empty document
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return NewNode(), nil, nil
	}

	top := &doc
	if top.Kind == yaml.DocumentNode {
		top = top.Content[0]
	}
	for top.Kind == yaml.AliasNode && top.Alias != nil {
		top = top.Alias
	}
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return NewNode(), nil, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, nil, &DocumentError{Format: "yaml", Line: top.Line, Message: ErrMsgRootNotMapping}
	}

	conv := &yamlConverter{active: make(map[*yaml.Node]bool), diags: diags}
	table, _ := conv.convert(top, nil).(*orderedMap)
	root := buildNode(table, nil, diags)
	return root, diags.items, nil
}

type yamlConverter struct {
	active map[*yaml.Node]bool
	diags  *diagnosticList
}

func (c *yamlConverter) convert(n *yaml.Node, path []string) any {
	if n.Kind == yaml.AliasNode {
		if n.Alias == nil || c.active[n.Alias] {
			c.diags.add(DiagIgnoredValue, path, n.Value, DiagMsgNotATable)
			return nil
		}
		return c.convert(n.Alias, path)
	}

	c.active[n] = true
	defer delete(c.active, n)

	switch n.Kind {
	case yaml.MappingNode:
		om := newOrderedMap(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Value == KeyYAMLMerge && k.Tag == "!!merge" {
				c.diags.add(DiagIgnoredValue, path, k.Value, DiagMsgMergeKey)
				continue
			}
			om.set(k.Value, c.convert(v, append(path, k.Value)))
		}
		return om
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			items = append(items, c.convert(item, path))
		}
		return items
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil
		}
		return n.Value
	}
	return nil
}

// buildNode turns a decoded table into a Node
func buildNode(table *orderedMap, path []string, diags *diagnosticList) *Node {
	node := NewNode()
	if table == nil {
		return node
	}

	for _, key := range table.keys {
		value := table.values[key]
		switch key {
		case KeyTemplate:
			if s, ok := value.(string); ok {
				node.Template = &s
			} else {
				diags.add(DiagIgnoredValue, path, key, DiagMsgTemplateNotString)
			}
			continue
		case KeyVariables:
			node.Variables = buildVariables(value, path, diags)
			continue
		}

		sub, ok := value.(*orderedMap)
		if !ok {
			if !IsReservedKey(key) {
				diags.add(DiagIgnoredValue, append(path, key), key, DiagMsgNotATable)
			}
			continue
		}
		childPath := make([]string, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = key
		node.AddChild(key, buildNode(sub, childPath, diags))
	}
	return node
}

func buildVariables(value any, path []string, diags *diagnosticList) map[string][]string {
	table, ok := value.(*orderedMap)
	if !ok {
		diags.add(DiagIgnoredValue, path, KeyVariables, DiagMsgVariablesNotTable)
		return nil
	}

	vars := make(map[string][]string, len(table.keys))
	for _, name := range table.keys {
		switch v := table.values[name].(type) {
		case []any:
			values := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := scalarString(item)
				if !ok {
					diags.add(DiagIgnoredValue, path, name, DiagMsgVariableNotList)
					continue
				}
				values = append(values, s)
			}
			vars[name] = values
		default:
			s, ok := scalarString(v)
			if !ok {
				diags.add(DiagIgnoredValue, path, name, DiagMsgVariableNotList)
				continue
			}
			vars[name] = []string{s}
		}
	}
	return vars
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int64, int, float64, bool:
		return fmt.Sprint(s), true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}
