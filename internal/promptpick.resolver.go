package internal

import (
	"errors"

	"go.uber.org/zap"
)

// ErrMisplacedSentinel is returned when ? or ?? is not the final path segment.
var ErrMisplacedSentinel = errors.New(ErrMsgMisplacedSentinel)

// Chooser is the random source used for every selection.
// *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

// ResolverConfig holds resolver configuration
type ResolverConfig struct {
	// MaxDepth caps the levels a ?? walk descends. 0 means unlimited.
	MaxDepth int
}

// DefaultResolverConfig returns the default resolver configuration
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{MaxDepth: DefaultMaxDepth}
}

// Resolution is the outcome of resolving one key path
type Resolution struct {
	// Fragments are the expanded templates, in visit order.
	Fragments []string
	// Path is the concrete key path that was walked, random picks included.
	Path []string
}

// Resolver walks a node tree along key paths. All randomness comes from the
// shared Chooser, so a resolver seeded identically replays identically.
type Resolver struct {
	root   *Node
	rng    Chooser
	config ResolverConfig
	report Reporter
	logger *zap.Logger
}

// NewResolver creates a resolver over root
func NewResolver(root *Node, rng Chooser, config ResolverConfig, report Reporter, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if report == nil {
		report = DiscardReporter
	}
	return &Resolver{
		root:   root,
		rng:    rng,
		config: config,
		report: report,
		logger: logger,
	}
}

// Resolve walks path from the root and expands every template it reaches.
// Unknown keys and empty selection pools stop the walk and keep what was
// collected so far. Only a misplaced sentinel is an error.
func (r *Resolver) Resolve(path []string) (Resolution, error) {
	r.logger.Debug(LogMsgResolveStart, zap.Strings(LogFieldPath, path))

	for i, seg := range path {
		if IsSentinel(seg) && i != len(path)-1 {
			return Resolution{}, ErrMisplacedSentinel
		}
	}

	res := Resolution{Path: make([]string, 0, len(path))}
	node := r.root
	for _, seg := range path {
		if IsSentinel(seg) {
			r.descendRandom(node, &res, seg == SentinelRandomRecursive)
			break
		}

		child, ok := node.Child(seg)
		if !ok {
			r.emit(DiagKeyNotFound, res.Path, seg, DiagMsgKeyNotFound)
			break
		}
		res.Path = append(res.Path, seg)
		node = child
		r.expand(node, &res)
	}

	r.logger.Debug(LogMsgResolveComplete,
		zap.Strings(LogFieldPath, res.Path),
		zap.Int(LogFieldFragments, len(res.Fragments)))
	return res, nil
}

// descendRandom picks a random eligible child of node. With recursive set it
// keeps picking from each chosen node until one has no eligible children.
func (r *Resolver) descendRandom(node *Node, res *Resolution, recursive bool) {
	for depth := 0; ; depth++ {
		keys := node.EligibleKeys()
		if len(keys) == 0 {
			if depth == 0 {
				r.emit(DiagEmptySelectionPool, res.Path, "", DiagMsgEmptySelectionPool)
			}
			return
		}
		if r.config.MaxDepth > 0 && depth >= r.config.MaxDepth {
			r.emit(DiagDepthExceeded, res.Path, "", DiagMsgDepthExceeded)
			return
		}

		key := keys[r.rng.IntN(len(keys))]
		r.logger.Debug(LogMsgRandomPick, zap.String(LogFieldKey, key), zap.Int(LogFieldPool, len(keys)))
		res.Path = append(res.Path, key)
		node = node.Children[key]
		r.expand(node, res)

		if !recursive {
			return
		}
	}
}

// expand substitutes the node's template, if any, and appends it to res.
// Each placeholder occurrence draws independently.
func (r *Resolver) expand(node *Node, res *Resolution) {
	if node.Template == nil {
		return
	}
	text := placeholderPattern.ReplaceAllStringFunc(*node.Template, func(m string) string {
		name := m[2 : len(m)-1]
		values := node.Variables[name]
		if len(values) == 0 {
			r.emit(DiagMissingVariable, res.Path, name, DiagMsgMissingVariable)
			return m
		}
		return values[r.rng.IntN(len(values))]
	})
	res.Fragments = append(res.Fragments, text)
}

func (r *Resolver) emit(kind DiagnosticKind, path []string, key, msg string) {
	p := make([]string, len(path))
	copy(p, path)
	d := Diagnostic{Kind: kind, Path: p, Key: key, Message: msg}
	r.logger.Debug(LogMsgDiagnosticEmitted, zap.String(LogFieldKind, string(kind)), zap.String(LogFieldKey, key))
	r.report(d)
}
