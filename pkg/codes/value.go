package codes

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	Invalid Kind = iota
	Int
	Float
	String
	List

	// tooDeep marks a subtree cut off by FromAny at MaxDepth.
	tooDeep
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	default:
		return "invalid"
	}
}

// Value is one node of raw code input.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	List  []Value
}

// IntValue returns an Int value.
func IntValue(i int64) Value { return Value{Kind: Int, Int: i} }

// FloatValue returns a Float value.
func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }

// StringValue returns a String value.
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// ListValue returns a List value holding vs.
func ListValue(vs ...Value) Value { return Value{Kind: List, List: vs} }

// Ints returns a flat List of Int values.
func Ints(xs []int) Value {
	vs := make([]Value, len(xs))
	for i, x := range xs {
		vs[i] = IntValue(int64(x))
	}
	return ListValue(vs...)
}

// Batch returns a List of flat lists, the shape ParseBatch produces.
func Batch(batch [][]int) Value {
	vs := make([]Value, len(batch))
	for i, xs := range batch {
		vs[i] = Ints(xs)
	}
	return ListValue(vs...)
}

func (v Value) String() string {
	switch v.Kind {
	case Int:
		return fmt.Sprint(v.Int)
	case Float:
		return fmt.Sprint(v.Float)
	case String:
		return fmt.Sprintf("%q", v.Str)
	case List:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "<invalid>"
	}
}

// FromAny converts a decoded document into a Value. Numbers of any Go
// numeric type, json.Number, strings and slices are recognized; everything
// else, maps and booleans included, becomes Invalid and is skipped during
// flattening.
func FromAny(x any) Value {
	return fromAny(x, 0)
}

func fromAny(x any, depth int) Value {
	if depth > MaxDepth {
		return Value{Kind: tooDeep}
	}
	switch v := x.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case int:
		return IntValue(int64(v))
	case int8:
		return IntValue(int64(v))
	case int16:
		return IntValue(int64(v))
	case int32:
		return IntValue(int64(v))
	case int64:
		return IntValue(v)
	case uint:
		return uintValue(uint64(v))
	case uint8:
		return IntValue(int64(v))
	case uint16:
		return IntValue(int64(v))
	case uint32:
		return IntValue(int64(v))
	case uint64:
		return uintValue(v)
	case float32:
		return FloatValue(float64(v))
	case float64:
		return FloatValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := v.Float64(); err == nil {
			return FloatValue(f)
		}
		return Value{}
	case string:
		return StringValue(v)
	case []any:
		vs := make([]Value, len(v))
		for i, e := range v {
			vs[i] = fromAny(e, depth+1)
		}
		return ListValue(vs...)
	case []int:
		return Ints(v)
	case [][]int:
		return Batch(v)
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		vs := make([]Value, rv.Len())
		for i := range vs {
			vs[i] = fromAny(rv.Index(i).Interface(), depth+1)
		}
		return ListValue(vs...)
	}
	return Value{}
}

func uintValue(u uint64) Value {
	if u > 1<<63-1 {
		return FloatValue(float64(u))
	}
	return IntValue(int64(u))
}
