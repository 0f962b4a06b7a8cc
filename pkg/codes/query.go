package codes

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Query is a jq expression selecting the codes inside a larger document,
// for example ".audio_codes" or ".items[].codes". The expression is parsed
// when the Query is constructed or decoded.
type Query struct {
	Expr  string
	query *gojq.Query
}

// NewQuery parses expr. An empty expression yields a nil Query, which
// selects the whole document.
func NewQuery(expr string) (*Query, error) {
	q := &Query{}
	if err := q.parse(expr); err != nil {
		return nil, err
	}
	if q.query == nil {
		return nil, nil
	}
	return q, nil
}

func (q *Query) parse(expr string) error {
	q.Expr = expr
	q.query = nil
	if expr == "" {
		return nil
	}
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	q.query = query
	return nil
}

// Select runs the query on doc. A single result is returned as is; several
// results are collected into a list so each becomes a batch element.
func (q *Query) Select(doc any) (any, error) {
	if q == nil || q.query == nil {
		return doc, nil
	}
	var results []any
	iter := q.query.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		results = append(results, v)
	}
	switch len(results) {
	case 0:
		return nil, fmt.Errorf("%w: jq expression %q returned no result", ErrInputParse, q.Expr)
	case 1:
		return results[0], nil
	}
	return results, nil
}

// MarshalJSON implements json.Marshaler.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Expr)
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Query) UnmarshalJSON(data []byte) error {
	var expr string
	if err := json.Unmarshal(data, &expr); err != nil {
		return err
	}
	return q.parse(expr)
}

// MarshalYAML implements yaml.Marshaler.
func (q Query) MarshalYAML() (any, error) {
	return q.Expr, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	var expr string
	if err := node.Decode(&expr); err != nil {
		return err
	}
	return q.parse(expr)
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (q Query) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(q.Expr)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (q *Query) DecodeMsgpack(dec *msgpack.Decoder) error {
	expr, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return q.parse(expr)
}
