package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/acecodes/pkg/cache"
	"github.com/haivivi/acecodes/pkg/codes"
	"github.com/haivivi/acecodes/pkg/compose"
	"github.com/haivivi/acecodes/pkg/fsq"
	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/seq"
)

// Pipeline runs code compositions. It is safe for concurrent use.
type Pipeline struct {
	levels  fsq.LevelsProvider
	timing  mask.Timing
	cache   cache.Cache
	workers int
	strict  bool
	logger  *slog.Logger
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		levels: fsq.Static(fsq.DefaultLevels.Clone()),
		timing: mask.CodeTiming,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o.apply(p)
	}
	if p.workers <= 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	return p
}

// Levels returns the quantizer levels the next invocation will use.
func (p *Pipeline) Levels() fsq.Levels {
	l, err := fsq.ResolveLevels(p.levels)
	if err != nil {
		p.logger.Warn("pipeline: using default levels", "error", err, "levels", l.String())
	}
	return l
}

// Timing returns the step timing for time-based masks.
func (p *Pipeline) Timing() mask.Timing {
	return p.timing
}

// Mix applies a binary operator to every batch element of A, pairing it
// with the matching element of B. It returns one code list per element of
// A.
//
// When A holds no codes at all the B batch is returned, with its codes
// range-checked the same way decoded inputs are.
func (p *Pipeline) Mix(ctx context.Context, req MixRequest) ([][]int, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	levels := p.Levels()
	return p.cached(ctx, "mix", req, levels, func() ([][]int, error) {
		return p.mix(ctx, req, levels)
	})
}

func (p *Pipeline) mix(ctx context.Context, req MixRequest, levels fsq.Levels) ([][]int, error) {
	mode, _ := seq.ParseScaleMode(string(req.ScaleMode))
	aBatch, aErr := codes.Parse(req.A)
	bBatch, bErr := parseOptional(req.B)
	if bErr != nil {
		p.logger.Warn("pipeline: ignoring unparseable B", "error", bErr)
	}

	if aErr != nil || codes.Empty(aBatch) {
		if bErr != nil || codes.Empty(bBatch) {
			return nil, fmt.Errorf("%w: neither A nor B holds codes", codes.ErrInputParse)
		}
		p.logger.Error("pipeline: A holds no codes, returning B", "error", aErr, "batch", len(bBatch))
		return p.passThrough(bBatch, levels)
	}
	if codes.Empty(bBatch) {
		p.logger.Warn("pipeline: B holds no codes, operator passes A through", "op", req.Op.String())
		bBatch = nil
	}

	rows, err := resolveRows(req.Mask)
	if err != nil {
		return nil, err
	}

	return p.run(ctx, len(aBatch), func(i int) ([]int, error) {
		var b []int
		switch {
		case len(bBatch) == 0:
		case i < len(bBatch):
			b = bBatch[i]
		default:
			p.logger.Debug("pipeline: broadcasting first B element", "element", i, "batch", len(bBatch))
			b = bBatch[0]
		}
		return p.mixElement(i, aBatch[i], b, req, mode, rows, levels)
	})
}

func (p *Pipeline) mixElement(i int, aCodes, bCodes []int, req MixRequest, mode seq.ScaleMode, rows []mask.Mask, levels fsq.Levels) ([]int, error) {
	if len(aCodes) == 0 {
		p.logger.Warn("pipeline: batch element holds no codes", "element", i)
		return []int{}, nil
	}
	a, err := p.decode(aCodes, levels)
	if err != nil {
		return nil, fmt.Errorf("element %d: A: %w", i, err)
	}
	if len(bCodes) == 0 {
		return p.encode(i, a, levels)
	}
	b, err := p.decode(bCodes, levels)
	if err != nil {
		return nil, fmt.Errorf("element %d: B: %w", i, err)
	}
	concat := req.Op == compose.Concatenate
	if mode == seq.ScaleNone && !concat && len(a) != len(b) {
		p.logger.Warn("pipeline: scale mode none needs equal lengths, resampling B to A", "element", i, "len_a", len(a), "len_b", len(b))
		mode = seq.ScaleBToA
	}
	if a, b, err = seq.Align(a, b, mode, concat); err != nil {
		return nil, err
	}

	// Concatenate masks B, so the mask is built over B's steps.
	n := len(a)
	if concat {
		n = len(b)
	}
	m, err := p.maskFor(req.Mask, rows, i, n)
	if err != nil {
		return nil, fmt.Errorf("element %d: %w", i, err)
	}

	out, err := compose.Binary(req.Op, a, b, m, req.Params)
	if err != nil {
		return nil, fmt.Errorf("element %d: %w", i, err)
	}
	return p.encode(i, out, levels)
}

// Apply runs a unary operator over every batch element of A.
func (p *Pipeline) Apply(ctx context.Context, req UnaryRequest) ([][]int, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	levels := p.Levels()
	return p.cached(ctx, "apply", req, levels, func() ([][]int, error) {
		return p.apply(ctx, req, levels)
	})
}

func (p *Pipeline) apply(ctx context.Context, req UnaryRequest, levels fsq.Levels) ([][]int, error) {
	aBatch, err := codes.Parse(req.A)
	if err != nil {
		return nil, err
	}
	if codes.Empty(aBatch) {
		return nil, fmt.Errorf("%w: A holds no codes", codes.ErrInputParse)
	}
	rows, err := resolveRows(req.Mask)
	if err != nil {
		return nil, err
	}

	return p.run(ctx, len(aBatch), func(i int) ([]int, error) {
		if len(aBatch[i]) == 0 {
			p.logger.Warn("pipeline: batch element holds no codes", "element", i)
			return []int{}, nil
		}
		a, err := p.decode(aBatch[i], levels)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if n := req.targetLength(len(a)); n != len(a) {
			p.logger.Debug("pipeline: resampling A", "element", i, "from", len(a), "to", n)
			a = seq.ResampleTo(a, n)
		}
		m, err := p.maskFor(req.Mask, rows, i, len(a))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out, err := compose.Unary(req.Op, a, m, req.Params)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		return p.encode(i, out, levels)
	})
}

// Mask builds the mask an invocation would use for an n-step batch element.
func (p *Pipeline) Mask(in MaskInput, element, n int) (mask.Mask, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rows, err := resolveRows(in)
	if err != nil {
		return nil, err
	}
	return p.maskFor(in, rows, element, n)
}

func (p *Pipeline) maskFor(in MaskInput, rows []mask.Mask, element, n int) (mask.Mask, error) {
	switch {
	case rows != nil:
		if len(rows) > 0 && element >= len(rows) {
			p.logger.Debug("pipeline: broadcasting first mask row", "element", element, "rows", len(rows))
			element = 0
		}
		return mask.ForBatch(rows, element, n), nil
	case in.Time != nil:
		return mask.BuildTime(*in.Time, p.timing, n)
	case in.Spec != nil:
		return mask.Build(*in.Spec, n)
	}
	p.logger.Debug("pipeline: no mask given, using all ones", "len", n)
	return mask.Ones(n), nil
}

func resolveRows(in MaskInput) ([]mask.Mask, error) {
	if in.Rows == nil {
		return nil, nil
	}
	rows, err := mask.FromAny(in.Rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []mask.Mask{}
	}
	return rows, nil
}

func (p *Pipeline) decode(cs []int, levels fsq.Levels) (seq.Sequence, error) {
	cs, err := p.checkCodes(cs, levels)
	if err != nil {
		return nil, err
	}
	return fsq.Decode(cs, levels)
}

// checkCodes rejects out-of-range codes in strict mode and clamps them
// otherwise.
func (p *Pipeline) checkCodes(cs []int, levels fsq.Levels) ([]int, error) {
	if err := levels.Validate(); err != nil {
		return nil, err
	}
	if p.strict {
		if err := fsq.CheckRange(cs, levels); err != nil {
			return nil, err
		}
		return cs, nil
	}
	out, n := fsq.ClampCodes(cs, levels)
	if n > 0 {
		p.logger.Warn("pipeline: clamped out-of-range codes", "count", n, "size", levels.Size())
	}
	return out, nil
}

// passThrough returns a parsed batch as the result of an invocation.
func (p *Pipeline) passThrough(batch [][]int, levels fsq.Levels) ([][]int, error) {
	out := make([][]int, len(batch))
	for i, cs := range batch {
		checked, err := p.checkCodes(cs, levels)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = checked
	}
	return out, nil
}

// encode rejects non-finite output, clamps to the grid box and quantizes.
func (p *Pipeline) encode(i int, out seq.Sequence, levels fsq.Levels) ([]int, error) {
	if err := out.CheckFinite(); err != nil {
		return nil, fmt.Errorf("element %d: %w", i, err)
	}
	cs, err := fsq.Encode(out.Clamp(-1, 1), levels)
	if err != nil {
		return nil, fmt.Errorf("element %d: %w", i, err)
	}
	return cs, nil
}

// run processes n batch elements concurrently and joins them in order.
func (p *Pipeline) run(ctx context.Context, n int, fn func(i int) ([]int, error)) ([][]int, error) {
	out := make([][]int, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cs, err := fn(i)
			if err != nil {
				return err
			}
			out[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOptional(x any) ([][]int, error) {
	if x == nil {
		return nil, nil
	}
	return codes.Parse(x)
}

// fingerprint is the cache identity of one invocation.
type fingerprint struct {
	Kind    string
	Request any
	Levels  []int
	Step    int64
	Strict  bool
}

func (p *Pipeline) cached(ctx context.Context, kind string, req any, levels fsq.Levels, compute func() ([][]int, error)) ([][]int, error) {
	if p.cache == nil {
		return compute()
	}
	key, err := cache.Fingerprint(fingerprint{
		Kind:    kind,
		Request: req,
		Levels:  levels,
		Step:    int64(p.timing.StepDuration),
		Strict:  p.strict,
	})
	if err != nil {
		p.logger.Warn("pipeline: cannot fingerprint request, bypassing cache", "error", err)
		return compute()
	}
	hit, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		p.logger.Debug("pipeline: cache hit", "key", key.String())
		return hit, nil
	case !errors.Is(err, cache.ErrNotFound):
		p.logger.Warn("pipeline: cache read failed", "key", key.String(), "error", err)
	}

	out, err := compute()
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, key, out); err != nil {
		p.logger.Warn("pipeline: cache write failed", "key", key.String(), "error", err)
	}
	return out, nil
}
