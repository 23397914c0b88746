package promptpick

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/itsatony/go-promptpick/internal"
	"go.uber.org/zap"
)

// Handles are the opaque host objects a directive can modify, typically a
// model and its text encoder.
type Handles struct {
	Model   any
	Encoder any
}

// Conditioning is an opaque encoded prompt produced by the host.
type Conditioning any

// TextEncoder turns text into host conditioning and concatenates conditionings.
type TextEncoder interface {
	Encode(ctx context.Context, h Handles, text string) (Conditioning, error)
	Merge(ctx context.Context, first, second Conditioning) (Conditioning, error)
}

// DirectiveApplier applies one directive, e.g. loads a LoRA at a strength,
// and returns the updated handles.
type DirectiveApplier interface {
	ApplyDirective(ctx context.Context, h Handles, d Directive) (Handles, error)
}

// PipelineConfig holds pipeline configuration
type PipelineConfig struct {
	// MaxDirectives caps the directives one run may apply. 0 means unlimited.
	MaxDirectives int
}

// DefaultPipelineConfig returns the default pipeline configuration
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{MaxDirectives: DefaultMaxDirectives}
}

// Pipeline composes prompts and feeds them through host capabilities.
type Pipeline struct {
	engine  *Engine
	encoder TextEncoder
	applier DirectiveApplier
	config  PipelineConfig
	logger  *zap.Logger
}

// PipelineResult is the outcome of Pipeline.Run
type PipelineResult struct {
	Handles      Handles
	Conditioning Conditioning
	// Manifest lists the applied directive refs, one per line.
	Manifest    string
	Seed        uint64
	Composition *Composition
}

// Slot is one entry of a fixed directive bank
type Slot struct {
	Name     string
	Strength float64
}

// NewPipeline creates a pipeline. The applier may be nil when the prompts
// carry no directives.
func NewPipeline(engine *Engine, encoder TextEncoder, applier DirectiveApplier, config PipelineConfig) (*Pipeline, error) {
	if engine == nil {
		var err error
		if engine, err = New(); err != nil {
			return nil, err
		}
	}
	if encoder == nil {
		return nil, NewMissingCapabilityError(ErrMsgNilEncoder)
	}
	return &Pipeline{
		engine:  engine,
		encoder: encoder,
		applier: applier,
		config:  config,
		logger:  engine.logger,
	}, nil
}

// Run composes lines against source and encodes the result.
func (p *Pipeline) Run(ctx context.Context, source string, lines []string, seed uint64, h Handles) (*PipelineResult, error) {
	comp, err := p.engine.Compose(ctx, source, lines, seed)
	if err != nil {
		return nil, err
	}
	return p.RunComposition(ctx, comp, h)
}

// RunComposition encodes an existing composition. For each line the line's
// directives are applied in index order, then the line text is encoded with
// the updated handles and merged into the running conditioning.
// A composition with no text encodes "" once.
func (p *Pipeline) RunComposition(ctx context.Context, comp *Composition, h Handles) (*PipelineResult, error) {
	if p.config.MaxDirectives > 0 && len(comp.Directives) > p.config.MaxDirectives {
		return nil, NewDirectiveLimitError(len(comp.Directives), p.config.MaxDirectives)
	}

	var (
		cond    Conditioning
		encoded bool
	)
	for _, line := range comp.Lines {
		for _, d := range line.Directives {
			var err error
			if h, err = p.apply(ctx, h, d); err != nil {
				return nil, err
			}
		}
		if line.Empty() {
			continue
		}

		next, err := p.encoder.Encode(ctx, h, line.Text)
		if err != nil {
			return nil, NewHostError(ErrMsgEncodeFailed, OperationEncode, line.Number, err)
		}
		if !encoded {
			cond, encoded = next, true
			continue
		}
		if cond, err = p.encoder.Merge(ctx, cond, next); err != nil {
			return nil, NewHostError(ErrMsgMergeFailed, OperationMerge, line.Number, err)
		}
	}

	if !encoded {
		var err error
		if cond, err = p.encoder.Encode(ctx, h, ""); err != nil {
			return nil, NewHostError(ErrMsgEncodeFailed, OperationEncode, 0, err)
		}
	}

	return &PipelineResult{
		Handles:      h,
		Conditioning: cond,
		Manifest:     comp.Manifest(),
		Seed:         comp.Seed,
		Composition:  comp,
	}, nil
}

// ApplySlots applies a fixed bank of named directives. Slots whose strength
// is within SlotStrengthEpsilon of zero are skipped but keep an empty line in
// the manifest, so line i always describes slot i.
func (p *Pipeline) ApplySlots(ctx context.Context, h Handles, slots []Slot) (Handles, string, error) {
	if p.config.MaxDirectives > 0 && len(slots) > p.config.MaxDirectives {
		return h, "", NewDirectiveLimitError(len(slots), p.config.MaxDirectives)
	}

	manifest := make([]string, len(slots))
	for i, s := range slots {
		if s.Name == "" || math.Abs(s.Strength) < SlotStrengthEpsilon {
			continue
		}
		d := Directive{
			Kind:  DirectiveKindLora,
			Name:  s.Name,
			Ref:   internal.EscapeKey(s.Name, internal.SepPath),
			Value: s.Strength,
			Raw:   "<" + DirectiveKindLora + ":" + s.Name + ":" + strconv.FormatFloat(s.Strength, 'g', -1, 64) + ">",
			Index: i,
		}
		var err error
		if h, err = p.apply(ctx, h, d); err != nil {
			return h, "", err
		}
		manifest[i] = d.Ref
		p.logger.Debug(LogMsgSlotApplied, zap.Int(LogFieldIndex, i), zap.String(LogFieldName, s.Name))
	}
	return h, strings.Join(manifest, ManifestSeparator), nil
}

func (p *Pipeline) apply(ctx context.Context, h Handles, d Directive) (Handles, error) {
	if err := ctx.Err(); err != nil {
		return h, NewComposeAbortedError(0, err)
	}
	if p.applier == nil {
		return h, NewMissingCapabilityError(ErrMsgNilApplier)
	}
	next, err := p.applier.ApplyDirective(ctx, h, d)
	if err != nil {
		return h, NewDirectiveApplyError(d, err)
	}
	p.logger.Debug(LogMsgDirectiveApplied,
		zap.String(LogFieldKind, d.Kind),
		zap.String(LogFieldName, d.Name),
		zap.Float64(LogFieldValue, d.Value),
		zap.Int(LogFieldIndex, d.Index))
	return next, nil
}
