package fsq

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidLevels is returned for empty levels or a level below 1.
var ErrInvalidLevels = errors.New("fsq: invalid levels")

// Levels holds the per-dimension cardinalities of the quantization grid.
type Levels []int

// DefaultLevels is the ACE-Step 1.5 quantizer layout.
var DefaultLevels = Levels{8, 8, 8, 5, 5, 5}

// Validate checks that l is non-empty, every level is at least 1 and the
// grid size fits in an int.
func (l Levels) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidLevels)
	}
	size := 1
	for i, n := range l {
		if n < 1 {
			return fmt.Errorf("%w: level %d is %d", ErrInvalidLevels, i, n)
		}
		if size > math.MaxInt/n {
			return fmt.Errorf("%w: grid size overflows", ErrInvalidLevels)
		}
		size *= n
	}
	return nil
}

// Dim returns the number of quantization dimensions.
func (l Levels) Dim() int { return len(l) }

// Size returns the number of distinct composite codes, the product of all
// levels.
func (l Levels) Size() int {
	size := 1
	for _, n := range l {
		size *= n
	}
	return size
}

// Strides returns the positional multiplier of every dimension.
func (l Levels) Strides() []int {
	strides := make([]int, len(l))
	s := 1
	for i, n := range l {
		strides[i] = s
		s *= n
	}
	return strides
}

// Step returns the distance between adjacent grid values in dimension i,
// or 0 for a single-level dimension.
func (l Levels) Step(i int) float64 {
	if l[i] <= 1 {
		return 0
	}
	return 2 / float64(l[i]-1)
}

// Clone returns a copy of l.
func (l Levels) Clone() Levels {
	return append(Levels(nil), l...)
}

// String formats levels as "8,8,8,5,5,5".
func (l Levels) String() string {
	parts := make([]string, len(l))
	for i, n := range l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ParseLevels parses a comma separated list such as "8,8,8,5,5,5".
func ParseLevels(s string) (Levels, error) {
	var l Levels
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidLevels, part, err)
		}
		l = append(l, n)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// LevelsProvider is the quantizer collaborator that knows the grid layout of
// a loaded model. ok is false when the model does not expose its levels.
type LevelsProvider interface {
	FSQLevels() (levels Levels, ok bool)
}

// Static is a LevelsProvider that always reports the same levels.
type Static Levels

// FSQLevels implements LevelsProvider.
func (s Static) FSQLevels() (Levels, bool) {
	if len(s) == 0 {
		return nil, false
	}
	return Levels(s).Clone(), true
}

// GetLevels asks p for its levels and falls back to DefaultLevels when p is
// nil, has nothing to report, or reports invalid levels. The fallback is
// logged on the default logger.
func GetLevels(p LevelsProvider) Levels {
	l, err := ResolveLevels(p)
	if err != nil {
		slog.Warn("fsq: using default levels", "error", err, "levels", DefaultLevels.String())
	}
	return l
}

// ResolveLevels is GetLevels without logging: it returns DefaultLevels
// together with the reason whenever p cannot supply valid levels.
func ResolveLevels(p LevelsProvider) (Levels, error) {
	if p == nil {
		return DefaultLevels.Clone(), fmt.Errorf("%w: no quantizer available", ErrInvalidLevels)
	}
	l, ok := p.FSQLevels()
	if !ok {
		return DefaultLevels.Clone(), fmt.Errorf("%w: quantizer did not report levels", ErrInvalidLevels)
	}
	if err := l.Validate(); err != nil {
		return DefaultLevels.Clone(), err
	}
	return l, nil
}
