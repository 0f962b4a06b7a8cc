package codes

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
)

// MaxDepth bounds the nesting accepted by Flatten.
const MaxDepth = 32

// ErrInputParse is returned for empty or malformed code input.
var ErrInputParse = errors.New("codes: input parse error")

var numeral = regexp.MustCompile(`\d+`)

// Flatten collects every code in v in encounter order. Integers are kept,
// floats truncated toward zero and strings contribute each decimal numeral
// they contain. Invalid values and non-finite floats are skipped.
func (v Value) Flatten() ([]int, error) {
	out := []int{}
	if err := flatten(v, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(v Value, depth int, out *[]int) error {
	if depth > MaxDepth || v.Kind == tooDeep {
		return fmt.Errorf("%w: nesting deeper than %d", ErrInputParse, MaxDepth)
	}
	switch v.Kind {
	case Int:
		*out = append(*out, int(v.Int))
	case Float:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) ||
			v.Float >= math.MaxInt64 || v.Float <= math.MinInt64 {
			slog.Debug("codes: skipping float outside integer range", "value", v.Float)
			return nil
		}
		*out = append(*out, int(math.Trunc(v.Float)))
	case String:
		for _, m := range numeral.FindAllString(v.Str, -1) {
			n, err := strconv.Atoi(m)
			if err != nil {
				slog.Warn("codes: skipping numeral", "numeral", m, "error", err)
				continue
			}
			*out = append(*out, n)
		}
	case List:
		for _, e := range v.List {
			if err := flatten(e, depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Elements splits v into batch elements. A list whose first element is a
// list is a batch; any other value is a single element.
func (v Value) Elements() []Value {
	if v.Kind == List && len(v.List) > 0 && v.List[0].Kind == List {
		return v.List
	}
	return []Value{v}
}

// ParseBatch flattens every batch element of v.
//
// An element that fails to flatten yields an empty code list and a warning;
// the rest of the batch is still parsed. ErrInputParse is returned only when
// the input as a whole is empty or invalid.
func ParseBatch(v Value) ([][]int, error) {
	switch {
	case v.Kind == Invalid:
		return nil, fmt.Errorf("%w: no code input", ErrInputParse)
	case v.Kind == List && len(v.List) == 0:
		return nil, fmt.Errorf("%w: empty code list", ErrInputParse)
	}
	elems := v.Elements()
	batch := make([][]int, len(elems))
	for i, e := range elems {
		codes, err := e.Flatten()
		if err != nil {
			slog.Warn("codes: dropping batch element", "index", i, "error", err)
			codes = []int{}
		}
		batch[i] = codes
	}
	return batch, nil
}

// Parse is ParseBatch(FromAny(x)).
func Parse(x any) ([][]int, error) {
	return ParseBatch(FromAny(x))
}

// Empty reports whether no batch element holds any code.
func Empty(batch [][]int) bool {
	for _, b := range batch {
		if len(b) > 0 {
			return false
		}
	}
	return true
}
