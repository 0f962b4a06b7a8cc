package pipeline

import (
	"log/slog"

	"github.com/haivivi/acecodes/pkg/cache"
	"github.com/haivivi/acecodes/pkg/fsq"
	"github.com/haivivi/acecodes/pkg/mask"
)

// Option configures a Pipeline.
type Option interface {
	apply(*Pipeline)
}

type levelsOption struct {
	provider fsq.LevelsProvider
}

func (o levelsOption) apply(p *Pipeline) {
	p.levels = o.provider
}

// WithLevels fixes the quantizer levels. Defaults to fsq.DefaultLevels.
func WithLevels(l fsq.Levels) Option {
	return levelsOption{provider: fsq.Static(l.Clone())}
}

// WithLevelsProvider asks provider for the levels on every invocation,
// falling back to fsq.DefaultLevels with a warning when it has none.
func WithLevelsProvider(provider fsq.LevelsProvider) Option {
	return levelsOption{provider: provider}
}

type timingOption struct {
	timing mask.Timing
}

func (o timingOption) apply(p *Pipeline) {
	p.timing = o.timing
}

// WithTiming sets the step duration used to convert time-based masks.
// Defaults to mask.CodeTiming.
func WithTiming(t mask.Timing) Option {
	return timingOption{timing: t}
}

type cacheOption struct {
	cache cache.Cache
}

func (o cacheOption) apply(p *Pipeline) {
	p.cache = o.cache
}

// WithCache memoizes results by invocation fingerprint.
func WithCache(c cache.Cache) Option {
	return cacheOption{cache: c}
}

type workersOption int

func (o workersOption) apply(p *Pipeline) {
	p.workers = int(o)
}

// WithWorkers limits how many batch elements are processed at once.
// Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return workersOption(n)
}

type strictOption struct{}

func (strictOption) apply(p *Pipeline) {
	p.strict = true
}

// WithStrictCodes rejects out-of-range input codes with fsq.ErrOutOfRange
// instead of clamping them.
func WithStrictCodes() Option {
	return strictOption{}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) apply(p *Pipeline) {
	p.logger = o.logger
}

// WithLogger sets the logger for pipeline diagnostics. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return loggerOption{logger: l}
}
