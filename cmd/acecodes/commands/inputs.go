package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/haivivi/acecodes/pkg/cli"
	"github.com/haivivi/acecodes/pkg/codes"
	"github.com/haivivi/acecodes/pkg/compose"
	"github.com/haivivi/acecodes/pkg/jsontime"
	"github.com/haivivi/acecodes/pkg/library"
	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/pipeline"
	"github.com/haivivi/acecodes/pkg/storage"
)

// libraryPrefix marks a code argument that names a library entry.
const libraryPrefix = "lib:"

// loadCodes resolves a code argument: "lib:<name>" loads from the library,
// "-" reads stdin, an existing path loads a code file, and anything else is
// parsed inline. The query applies to library entries and files.
func loadCodes(ctx context.Context, c *cli.Context, arg, query string) ([][]int, error) {
	q, err := codes.NewQuery(query)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(arg, libraryPrefix):
		lib, err := openLibrary(c)
		if err != nil {
			return nil, err
		}
		batch, _, err := lib.Load(ctx, strings.TrimPrefix(arg, libraryPrefix), q)
		return batch, err
	case arg == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return codes.ParseInline(string(data))
	}
	fi, err := os.Stat(arg)
	if err == nil && !fi.IsDir() {
		return codes.LoadFile(arg, q)
	}
	if _, ferr := codes.FormatOf(arg); ferr == nil && err != nil {
		return nil, fmt.Errorf("code file: %w", err)
	}
	return codes.ParseInline(arg)
}

// resolveCodes resolves string code fields of a request file the same way
// as a code argument. Other values pass through for the pipeline to parse.
func resolveCodes(ctx context.Context, c *cli.Context, x any, query string) (any, error) {
	s, ok := x.(string)
	if !ok {
		return x, nil
	}
	return loadCodes(ctx, c, s, query)
}

// openLibrary opens the code library of c.
func openLibrary(c *cli.Context) (*library.Library, error) {
	p, err := paths()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewLocal(p.Resolve(c.LibraryDir, p.LibraryDir()))
	if err != nil {
		return nil, err
	}
	return library.New(store), nil
}

// paramsFlags binds operator parameters. Only flags given on the command
// line override a request file.
type paramsFlags struct {
	alpha, weight, eps, strength, sigma float64
	seed                                uint64
}

func (f *paramsFlags) register(fs *pflag.FlagSet) {
	d := compose.DefaultParams()
	fs.Float64Var(&f.alpha, "alpha", d.Alpha, "lerp weight of A")
	fs.Float64Var(&f.weight, "weight", d.Weight, "difference_injection weight")
	fs.Float64Var(&f.eps, "eps", d.Eps, "dominant_recessive threshold")
	fs.Float64Var(&f.strength, "strength", d.Strength, "scale_masked strength")
	fs.Float64Var(&f.sigma, "sigma", d.Sigma, "noise_masked standard deviation")
	fs.Uint64Var(&f.seed, "seed", d.Seed, "noise_masked seed")
}

func (f *paramsFlags) apply(fs *pflag.FlagSet, p *compose.Params) {
	if fs.Changed("alpha") {
		p.Alpha = f.alpha
	}
	if fs.Changed("weight") {
		p.Weight = f.weight
	}
	if fs.Changed("eps") {
		p.Eps = f.eps
	}
	if fs.Changed("strength") {
		p.Strength = f.strength
	}
	if fs.Changed("sigma") {
		p.Sigma = f.sigma
	}
	if fs.Changed("seed") {
		p.Seed = f.seed
	}
}

// maskFlags binds the three mask sources: step flags, time flags and an
// external mask file.
type maskFlags struct {
	mode     string
	start    int
	end      int
	fraction float64
	ramp     int
	reverse  bool

	startTime time.Duration
	endTime   time.Duration
	rampTime  time.Duration

	file string
}

var (
	stepMaskFlags = []string{"mask-mode", "mask-start", "mask-end", "mask-fraction", "mask-ramp", "mask-reverse"}
	timeMaskFlags = []string{"mask-start-time", "mask-end-time", "mask-ramp-time"}
)

func (f *maskFlags) register(fs *pflag.FlagSet) {
	d := mask.DefaultSpec()
	fs.StringVar(&f.mode, "mask-mode", "", "mask mode: all, none, fraction, range, ramp, window (default: range when bounds are given, else all)")
	fs.IntVar(&f.start, "mask-start", d.Start, "first masked step")
	fs.IntVar(&f.end, "mask-end", d.End, "end step, exclusive; -1 means the end")
	fs.Float64Var(&f.fraction, "mask-fraction", d.Fraction, "leading share of steps for fraction mode")
	fs.IntVar(&f.ramp, "mask-ramp", d.RampWidth, "window ramp width in steps")
	fs.BoolVar(&f.reverse, "mask-reverse", false, "invert the mask")

	td := mask.DefaultTimeSpec()
	fs.DurationVar(&f.startTime, "mask-start-time", time.Duration(td.Start), "mask start as audio time, e.g. 1.5s")
	fs.DurationVar(&f.endTime, "mask-end-time", -1, "mask end as audio time; negative means the end")
	fs.DurationVar(&f.rampTime, "mask-ramp-time", time.Duration(td.Ramp), "window ramp as audio time")

	fs.StringVar(&f.file, "mask-file", "", "external mask array, [T], [B][T] or [B][H][W] (YAML or JSON)")
}

func anyChanged(fs *pflag.FlagSet, names []string) bool {
	for _, n := range names {
		if fs.Changed(n) {
			return true
		}
	}
	return false
}

// modeFor returns the mask mode flag, inferring range when only bounds
// were given.
func (f *maskFlags) modeFor(bounded bool) (mask.Mode, error) {
	if f.mode == "" {
		if bounded {
			return mask.ModeRange, nil
		}
		return mask.ModeAll, nil
	}
	return mask.ParseMode(f.mode)
}

// input returns the mask source selected on the command line, or ok=false
// when no mask flag was given.
func (f *maskFlags) input(fs *pflag.FlagSet) (in pipeline.MaskInput, ok bool, err error) {
	step := anyChanged(fs, stepMaskFlags)
	timed := anyChanged(fs, timeMaskFlags)
	switch {
	case f.file != "":
		if step || timed {
			return in, false, fmt.Errorf("--mask-file cannot be combined with other mask flags")
		}
		var rows any
		if err := cli.LoadRequest(f.file, &rows); err != nil {
			return in, false, err
		}
		in.Rows = rows
		return in, true, nil

	case timed:
		if anyChanged(fs, []string{"mask-start", "mask-end", "mask-ramp"}) {
			return in, false, fmt.Errorf("step and time mask bounds cannot be combined")
		}
		ts := mask.DefaultTimeSpec()
		if ts.Mode, err = f.modeFor(fs.Changed("mask-start-time") || fs.Changed("mask-end-time")); err != nil {
			return in, false, err
		}
		ts.Start = jsontime.Duration(f.startTime)
		if fs.Changed("mask-end-time") && f.endTime >= 0 {
			ts.End = jsontime.FromDuration(f.endTime)
		}
		ts.Ramp = jsontime.Duration(f.rampTime)
		ts.Fraction = f.fraction
		ts.Reverse = f.reverse
		in.Time = &ts
		return in, true, nil

	case step:
		spec := mask.DefaultSpec()
		if spec.Mode, err = f.modeFor(fs.Changed("mask-start") || fs.Changed("mask-end")); err != nil {
			return in, false, err
		}
		spec.Start = f.start
		spec.End = f.end
		spec.Fraction = f.fraction
		spec.RampWidth = f.ramp
		spec.Reverse = f.reverse
		if err := spec.Validate(); err != nil {
			return in, false, err
		}
		in.Spec = &spec
		return in, true, nil
	}
	return in, false, nil
}
