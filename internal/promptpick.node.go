package internal

import (
	"regexp"
	"strings"
)

// placeholderPattern matches ${name} in templates
var placeholderPattern = regexp.MustCompile(`\$\{([a-zA-Z0-9_-]+)\}`)

// Node is one addressable point in a prompt document.
type Node struct {
	// Template is the `_t` string, nil when the node has none.
	Template *string
	// Variables is the `_v` table: placeholder name -> candidate values.
	Variables map[string][]string
	// Children holds every table-valued key, reserved ones included.
	Children map[string]*Node

	eligible []string // non-reserved child keys in document order
}

// NewNode creates an empty node
func NewNode() *Node {
	return &Node{Children: make(map[string]*Node)}
}

// AddChild attaches child under key. Re-adding a key replaces the child but
// keeps its original position.
func (n *Node) AddChild(key string, child *Node) {
	if _, exists := n.Children[key]; !exists && !IsReservedKey(key) {
		n.eligible = append(n.eligible, key)
	}
	n.Children[key] = child
}

// Child returns the child stored under key
func (n *Node) Child(key string) (*Node, bool) {
	child, ok := n.Children[key]
	return child, ok
}

// EligibleKeys returns the keys a random selection may pick, in document order.
func (n *Node) EligibleKeys() []string {
	return n.eligible
}

// HasTemplate reports whether the node carries a template
func (n *Node) HasTemplate() bool {
	return n.Template != nil
}

// Placeholders returns the distinct placeholder names used by the template,
// in order of first appearance.
func (n *Node) Placeholders() []string {
	if n.Template == nil {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(*n.Template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Walk visits n and every node reachable through eligible keys, depth-first in
// document order. Reserved children are not visited.
func (n *Node) Walk(fn func(path []string, node *Node)) {
	n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func(path []string, node *Node)) {
	fn(path, n)
	for _, key := range n.eligible {
		childPath := make([]string, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = key
		n.Children[key].walk(childPath, fn)
	}
}

// Count returns the number of nodes reachable through eligible keys, n included.
func (n *Node) Count() int {
	count := 0
	n.Walk(func([]string, *Node) { count++ })
	return count
}

// IsReservedKey reports whether key is document metadata
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, ReservedPrefix)
}
