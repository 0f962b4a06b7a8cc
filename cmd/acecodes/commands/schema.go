package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/compose"
	"github.com/haivivi/acecodes/pkg/jsontime"
	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/pipeline"
	"github.com/haivivi/acecodes/pkg/seq"
)

// requestTypeSchemas describes the types that encode as names or
// durations rather than as their Go kind.
func requestTypeSchemas() map[reflect.Type]*jsonschema.Schema {
	enum := func(names ...string) *jsonschema.Schema {
		s := &jsonschema.Schema{Type: "string"}
		for _, n := range names {
			s.Enum = append(s.Enum, n)
		}
		return s
	}

	var binary, unary, scale, modes []string
	for _, op := range compose.BinaryOps() {
		binary = append(binary, op.String())
	}
	for _, op := range compose.UnaryOps() {
		unary = append(unary, op.String())
	}
	for _, m := range seq.ScaleModes {
		scale = append(scale, string(m))
	}
	for _, m := range mask.Modes {
		modes = append(modes, string(m))
	}

	return map[reflect.Type]*jsonschema.Schema{
		reflect.TypeFor[compose.BinaryOp](): enum(binary...),
		reflect.TypeFor[compose.UnaryOp]():  enum(unary...),
		reflect.TypeFor[seq.ScaleMode]():    enum(scale...),
		reflect.TypeFor[mask.Mode]():        enum(modes...),
		reflect.TypeFor[jsontime.Duration](): {
			Types:       []string{"string", "number"},
			Description: `duration string such as "1.5s", or seconds`,
		},
	}
}

// requestSchema returns the JSON schema of the named request file kind.
func requestSchema(kind string) (*jsonschema.Schema, error) {
	opts := &jsonschema.ForOptions{TypeSchemas: requestTypeSchemas()}
	var (
		s   *jsonschema.Schema
		err error
	)
	switch kind {
	case "mix":
		s, err = jsonschema.For[pipeline.MixRequest](opts)
	case "unary":
		s, err = jsonschema.For[pipeline.UnaryRequest](opts)
	case "mask":
		s, err = jsonschema.For[pipeline.MaskInput](opts)
	default:
		return nil, fmt.Errorf("unknown request kind %q (known: mix, unary, mask)", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", kind, err)
	}
	s.Title = kind + " request"
	return s, nil
}

var schemaCmd = &cobra.Command{
	Use:       "schema <mix|unary|mask>",
	Short:     "Print the JSON schema of a request file",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"mix", "unary", "mask"},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requestSchema(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
