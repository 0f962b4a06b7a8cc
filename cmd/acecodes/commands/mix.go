package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cli"
	"github.com/haivivi/acecodes/pkg/compose"
	"github.com/haivivi/acecodes/pkg/pipeline"
	"github.com/haivivi/acecodes/pkg/seq"
)

var mixFlags struct {
	file      string
	a, b      string
	query     string
	op        string
	scaleMode string
	params    paramsFlags
	mask      maskFlags
}

func binaryOpNames() string {
	var names []string
	for _, op := range compose.BinaryOps() {
		names = append(names, op.String())
	}
	return strings.Join(names, ", ")
}

var mixCmd = &cobra.Command{
	Use:   "mix",
	Short: "Combine two code inputs with a binary operator",
	Long: `Combine code input A with code input B.

Both inputs are decoded to grid vectors, aligned in length, combined by the
operator under the mask and quantized back to codes. The result holds one
code list per batch element of A.

Code arguments (--a, --b) accept a code file (.json, .yaml, .msgpack), an
inline list such as "[1,2,3]" or "<|audio_code_1|><|audio_code_2|>",
"lib:<name>" for a library entry, or "-" for stdin.

Operators: ` + binaryOpNames() + `

Example request file (mix.yaml):
  a: [[1, 2, 3, 4]]
  b: [[5, 6]]
  op: lerp
  params:
    alpha: 0.25
  scale_mode: scale_B_to_A
  mask:
    time:
      mode: window
      start: 1s
      end: 3s
      ramp: 0.4s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		req, err := buildMixRequest(cmd, c)
		if err != nil {
			return err
		}

		p, closeFn, err := newPipeline(c)
		if err != nil {
			return err
		}
		defer closeFn()

		slog.Debug("mix", "op", req.Op.String(), "scale_mode", req.ScaleMode, "levels", p.Levels().String())
		out, err := p.Mix(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("mix failed: %w", err)
		}
		return output(c, out)
	},
}

// buildMixRequest starts from the request file, if any, and applies the
// flags given on the command line.
func buildMixRequest(cmd *cobra.Command, c *cli.Context) (pipeline.MixRequest, error) {
	fs := cmd.Flags()
	req := pipeline.MixRequest{Params: compose.DefaultParams()}
	if mixFlags.file != "" {
		if err := cli.LoadRequest(mixFlags.file, &req); err != nil {
			return req, err
		}
	}

	if mixFlags.a != "" {
		req.A = mixFlags.a
	}
	if mixFlags.b != "" {
		req.B = mixFlags.b
	}
	if req.A == nil {
		return req, fmt.Errorf("code input A is required, use --a or -f")
	}
	var err error
	if req.A, err = resolveCodes(cmd.Context(), c, req.A, mixFlags.query); err != nil {
		return req, fmt.Errorf("A: %w", err)
	}
	if req.B, err = resolveCodes(cmd.Context(), c, req.B, mixFlags.query); err != nil {
		return req, fmt.Errorf("B: %w", err)
	}

	if fs.Changed("op") {
		op, err := compose.ParseBinaryOp(mixFlags.op)
		if err != nil {
			return req, err
		}
		req.Op = op
	}
	switch {
	case fs.Changed("scale-mode"):
		req.ScaleMode = seq.ScaleMode(mixFlags.scaleMode)
	case req.ScaleMode == "":
		mode, err := c.ParsedScaleMode()
		if err != nil {
			return req, err
		}
		req.ScaleMode = mode
	}
	mixFlags.params.apply(fs, &req.Params)

	m, ok, err := mixFlags.mask.input(fs)
	if err != nil {
		return req, err
	}
	if ok {
		req.Mask = m
	}
	return req, req.Validate()
}

func init() {
	fs := mixCmd.Flags()
	fs.StringVarP(&mixFlags.file, "file", "f", "", "request file (YAML or JSON, - for stdin)")
	fs.StringVar(&mixFlags.a, "a", "", "code input A")
	fs.StringVar(&mixFlags.b, "b", "", "code input B")
	fs.StringVar(&mixFlags.query, "query", "", "jq expression selecting codes inside code files, e.g. .audio_codes")
	fs.StringVar(&mixFlags.op, "op", compose.Blend.String(), "binary operator")
	fs.StringVar(&mixFlags.scaleMode, "scale-mode", "", "length alignment: scale_B_to_A, scale_A_to_B, pad_to_match, loop_match, none (default: context setting)")
	mixFlags.params.register(fs)
	mixFlags.mask.register(fs)

	rootCmd.AddCommand(mixCmd)
}
