package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cli"
	"github.com/haivivi/acecodes/pkg/compose"
	"github.com/haivivi/acecodes/pkg/pipeline"
)

var unaryFlags struct {
	file          string
	a             string
	query         string
	op            string
	lengthPercent float64
	params        paramsFlags
	mask          maskFlags
}

func unaryOpNames() string {
	var names []string
	for _, op := range compose.UnaryOps() {
		names = append(names, op.String())
	}
	return strings.Join(names, ", ")
}

var unaryCmd = &cobra.Command{
	Use:   "unary",
	Short: "Transform one code input with a unary operator",
	Long: `Transform code input A with a unary operator under a mask.

Operators: ` + unaryOpNames() + `

--length-percent resamples A before the operator runs, e.g. 50 halves the
number of steps.

Example request file (noise.yaml):
  a: a_codes.json
  op: noise_masked
  params:
    sigma: 0.2
    seed: 7
  mask:
    spec:
      mode: fraction
      fraction: 0.25`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		req, err := buildUnaryRequest(cmd, c)
		if err != nil {
			return err
		}

		p, closeFn, err := newPipeline(c)
		if err != nil {
			return err
		}
		defer closeFn()

		slog.Debug("unary", "op", req.Op.String(), "length_percent", req.LengthPercent, "levels", p.Levels().String())
		out, err := p.Apply(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("unary failed: %w", err)
		}
		return output(c, out)
	},
}

func buildUnaryRequest(cmd *cobra.Command, c *cli.Context) (pipeline.UnaryRequest, error) {
	fs := cmd.Flags()
	req := pipeline.UnaryRequest{Params: compose.DefaultParams()}
	if unaryFlags.file != "" {
		if err := cli.LoadRequest(unaryFlags.file, &req); err != nil {
			return req, err
		}
	}
	if unaryFlags.a != "" {
		req.A = unaryFlags.a
	}
	if req.A == nil {
		return req, fmt.Errorf("code input A is required, use --a or -f")
	}
	var err error
	if req.A, err = resolveCodes(cmd.Context(), c, req.A, unaryFlags.query); err != nil {
		return req, fmt.Errorf("A: %w", err)
	}

	if fs.Changed("op") {
		op, err := compose.ParseUnaryOp(unaryFlags.op)
		if err != nil {
			return req, err
		}
		req.Op = op
	}
	if fs.Changed("length-percent") {
		req.LengthPercent = unaryFlags.lengthPercent
	}
	unaryFlags.params.apply(fs, &req.Params)

	m, ok, err := unaryFlags.mask.input(fs)
	if err != nil {
		return req, err
	}
	if ok {
		req.Mask = m
	}
	return req, req.Validate()
}

func init() {
	fs := unaryCmd.Flags()
	fs.StringVarP(&unaryFlags.file, "file", "f", "", "request file (YAML or JSON, - for stdin)")
	fs.StringVar(&unaryFlags.a, "a", "", "code input A")
	fs.StringVar(&unaryFlags.query, "query", "", "jq expression selecting codes inside code files")
	fs.StringVar(&unaryFlags.op, "op", compose.Gate.String(), "unary operator")
	fs.Float64Var(&unaryFlags.lengthPercent, "length-percent", 100, "resample A to this percentage of its length")
	unaryFlags.params.register(fs)
	unaryFlags.mask.register(fs)

	rootCmd.AddCommand(unaryCmd)
}
