package promptpick

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/itsatony/go-promptpick/internal"
	"go.uber.org/zap"
)

// Compose parses source and composes lines against it with one random
// source seeded from seed. The same source, lines, seed and engine options
// always produce the same Composition.
func (e *Engine) Compose(ctx context.Context, source string, lines []string, seed uint64) (*Composition, error) {
	doc, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	return e.ComposeDocument(ctx, doc, lines, seed)
}

// ComposeText is Compose with the key lines given as one multi-line string.
func (e *Engine) ComposeText(ctx context.Context, source, keys string, seed uint64) (*Composition, error) {
	return e.Compose(ctx, source, SplitLines(keys), seed)
}

// ComposeDocument composes lines against an already parsed document.
func (e *Engine) ComposeDocument(ctx context.Context, doc *Document, lines []string, seed uint64) (*Composition, error) {
	if doc == nil {
		return nil, NewNilDocumentError()
	}

	var cacheKey string
	if e.config.resultCache != nil {
		cacheKey = e.cacheKey(doc, lines, seed)
		if cached, ok := e.config.resultCache.Get(cacheKey); ok {
			e.logger.Debug(LogMsgCacheHit, zap.Uint64(LogFieldSeed, seed))
			return cached, nil
		}
	}

	e.logger.Debug(LogMsgComposeStart,
		zap.Uint64(LogFieldSeed, seed),
		zap.Int(LogFieldLines, len(lines)))

	comp := &Composition{Seed: seed, Lines: make([]Line, 0, len(lines))}
	lineNo := 0
	report := func(d internal.Diagnostic) {
		diag := newDiagnostic(d, lineNo)
		comp.Diagnostics = append(comp.Diagnostics, diag)
		e.logDiagnostic(diag)
	}

	rng := rand.New(rand.NewPCG(seed, pcgStream))
	resolver := internal.NewResolver(doc.root, rng,
		internal.ResolverConfig{MaxDepth: e.config.maxDepth}, report, e.logger)

	texts := make([]string, 0, len(lines))
	for i, raw := range lines {
		lineNo = i + 1
		if err := ctx.Err(); err != nil {
			return nil, NewComposeAbortedError(lineNo, err)
		}

		keys := internal.StripComment(raw)
		if keys == "" || internal.IsCommentMarker(keys) {
			e.logger.Debug(LogMsgLineSkipped, zap.Int(LogFieldLine, lineNo))
			continue
		}

		line, err := e.composeLine(resolver, keys, lineNo, len(comp.Directives))
		if err != nil {
			return nil, err
		}
		line.Source = raw

		comp.Directives = append(comp.Directives, line.Directives...)
		comp.Lines = append(comp.Lines, line)
		if !line.Empty() {
			texts = append(texts, line.Text)
		}
	}
	comp.Text = strings.Join(texts, e.config.lineSeparator)

	e.logger.Debug(LogMsgComposeEnd,
		zap.Uint64(LogFieldSeed, seed),
		zap.Int(LogFieldDirectives, len(comp.Directives)),
		zap.Int(LogFieldDiagnostics, len(comp.Diagnostics)))

	if e.config.resultCache != nil {
		e.config.resultCache.Set(cacheKey, comp)
	}
	return comp, nil
}

// composeLine resolves every &-joined sub-path of one key line, then pulls
// the directives out of the joined text. Directive indices continue from start.
func (e *Engine) composeLine(resolver *internal.Resolver, keys string, lineNo, start int) (Line, error) {
	subs := internal.SplitKey(keys, internal.SepCombine)
	parts := make([]string, 0, len(subs))
	paths := make([]string, 0, len(subs))

	for _, sub := range subs {
		sub = strings.TrimSpace(sub)
		res, err := resolver.Resolve(internal.SplitKey(sub, internal.SepPath))
		if err != nil {
			if errors.Is(err, internal.ErrMisplacedSentinel) {
				return Line{}, NewMisplacedSentinelError(sub, lineNo)
			}
			return Line{}, err
		}
		parts = append(parts, strings.Join(res.Fragments, internal.FragmentSeparator))
		paths = append(paths, internal.JoinKey(res.Path, internal.SepPath))
	}

	resolved := strings.Join(parts, internal.FragmentSeparator)
	stripped, ds := e.extractor.Extract(resolved, start)
	line := Line{
		Number:     lineNo,
		Keys:       keys,
		Paths:      paths,
		Resolved:   resolved,
		Text:       strings.TrimSpace(stripped),
		Directives: newDirectives(ds),
	}

	e.logger.Debug(LogMsgLineComposed,
		zap.Int(LogFieldLine, lineNo),
		zap.Strings(LogFieldPath, paths),
		zap.Int(LogFieldDirectives, len(line.Directives)))
	return line, nil
}
