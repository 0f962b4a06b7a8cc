package mask

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// FromRows2D treats every row of a [B][T] array as one batch element's mask.
func FromRows2D(rows [][]float64) []Mask {
	out := make([]Mask, len(rows))
	for i, r := range rows {
		out[i] = append(Mask(nil), r...)
	}
	return out
}

// FromRows3D collapses a [B][H][W] array to [B][W] by averaging over H, the
// way image-shaped masks are folded onto the time axis.
func FromRows3D(planes [][][]float64) []Mask {
	out := make([]Mask, len(planes))
	for b, plane := range planes {
		if len(plane) == 0 {
			out[b] = Mask{}
			continue
		}
		w := len(plane[0])
		m := make(Mask, w)
		for _, row := range plane {
			for x := 0; x < w && x < len(row); x++ {
				m[x] += row[x]
			}
		}
		for x := range m {
			m[x] /= float64(len(plane))
		}
		out[b] = m
	}
	return out
}

// FromAny converts a decoded JSON/YAML/msgpack numeric array into masks.
// A 1-D array is a single mask, 2-D is [B][T] and 3-D is [B][H][W].
func FromAny(v any) ([]Mask, error) {
	switch depth(v) {
	case 1:
		row, err := toFloats(v)
		if err != nil {
			return nil, err
		}
		return []Mask{row}, nil
	case 2:
		rows, err := toRows(v)
		if err != nil {
			return nil, err
		}
		return FromRows2D(rows), nil
	case 3:
		list, _ := v.([]any)
		planes := make([][][]float64, len(list))
		for i, p := range list {
			rows, err := toRows(p)
			if err != nil {
				return nil, err
			}
			planes[i] = rows
		}
		return FromRows3D(planes), nil
	default:
		return nil, fmt.Errorf("%w: mask array must have 1 to 3 dimensions", ErrInvalidSpec)
	}
}

// ForBatch returns the mask row for batch element b resized to n steps.
// Rows are reused from the first, logged at debug level on the default
// logger, when fewer rows than elements are given.
// An empty row set yields all ones.
func ForBatch(rows []Mask, b, n int) Mask {
	if len(rows) == 0 {
		return Ones(n)
	}
	if b >= len(rows) {
		slog.Debug("mask: broadcasting first mask row", "element", b, "rows", len(rows))
		b = 0
	}
	return Resize(rows[b], n)
}

func depth(v any) int {
	list, ok := v.([]any)
	if !ok {
		if _, ok := asFloat(v); ok {
			return 0
		}
		return -1
	}
	if len(list) == 0 {
		return 1
	}
	d := depth(list[0])
	if d < 0 {
		return -1
	}
	return d + 1
}

func toRows(v any) ([][]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrInvalidSpec, v)
	}
	rows := make([][]float64, len(list))
	for i, r := range list {
		row, err := toFloats(r)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

func toFloats(v any) ([]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrInvalidSpec, v)
	}
	out := make([]float64, len(list))
	for i, x := range list {
		f, ok := asFloat(x)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, not a number", ErrInvalidSpec, i, x)
		}
		if math.IsNaN(f) {
			return nil, fmt.Errorf("%w: element %d is NaN", ErrInvalidSpec, i)
		}
		out[i] = f
	}
	return out, nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
