// Package promptpick composes text prompts by walking a hierarchical prompt
// document with key paths and random selections.
//
// A document is a tree of tables. A table's `_t` entry is its template and
// `_v` holds the variable lists its ${placeholders} draw from:
//
//	[hello]
//	_t = "hello ${who}"
//	_v.who = ["world", "there"]
//
//	[style.ink]
//	_t = "ink drawing"
//
//	[style.oil]
//	_t = "oil painting <lora:oil_v2:0.8>"
//
// # Basic Usage
//
// Every line of keys produces one text fragment. Sub-paths joined with `&`
// are concatenated; `?` picks one random child and `??` keeps descending:
//
//	engine := promptpick.MustNew()
//	comp, err := engine.Compose(ctx, doc, []string{"hello", "style.?"}, 42)
//	// comp.Text, for example: "hello there,oil painting"
//	// with comp.Directives holding {Kind: "lora", Name: "oil_v2", Value: 0.8, Index: 0}
//
// The same document, lines and seed always produce the same composition.
//
// # Key Paths
//
// Segments are separated by `.`; write `\.` for a literal dot in a key.
// `//`, `#` and `/* */` start comments. Keys that start with `_` are never
// picked at random but can still be addressed literally.
//
// # Diagnostics
//
// Unknown keys, empty selection pools and missing variables do not fail a
// composition. They are collected in Composition.Diagnostics and logged at
// warn level. Only unparseable documents, a `?` that is not the last segment
// and context cancellation return errors.
//
// # Hosts
//
// Pipeline connects compositions to a host that encodes text and applies
// directives, one line at a time:
//
//	p, _ := promptpick.NewPipeline(engine, encoder, loraLoader, promptpick.DefaultPipelineConfig())
//	res, err := p.Run(ctx, doc, lines, seed, promptpick.Handles{Model: m, Encoder: clip})
//
// # Storage
//
// Documents can be versioned in memory, on the filesystem or in PostgreSQL
// and composed by name through a StorageEngine:
//
//	storage, _ := promptpick.OpenStorage("filesystem", "./prompts")
//	se := promptpick.MustNewStorageEngine(promptpick.StorageEngineConfig{Storage: storage})
//	comp, err := se.Compose(ctx, "portraits", lines, seed)
package promptpick
