package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cli"
	"github.com/haivivi/acecodes/pkg/fsq"
	"github.com/haivivi/acecodes/pkg/seq"
)

var codecFlags struct {
	levels string
	query  string
	strict bool
}

// activeLevels returns --levels, or the levels of the context.
func activeLevels(c *cli.Context) (fsq.Levels, error) {
	if codecFlags.levels != "" {
		return fsq.ParseLevels(codecFlags.levels)
	}
	return c.ParsedLevels()
}

var decodeCmd = &cobra.Command{
	Use:   "decode <codes>",
	Short: "Decode composite codes to grid vectors",
	Long: `Decode composite codes to grid vectors in [-1, 1].

The argument is a code file, an inline list, lib:<name> or - for stdin. The
output holds one [T][K] vector list per batch element.

Example:
  acecodes decode "[0, 7, 63]" --levels 8,8 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		levels, err := activeLevels(c)
		if err != nil {
			return err
		}
		batch, err := loadCodes(cmd.Context(), c, args[0], codecFlags.query)
		if err != nil {
			return err
		}

		out := make([]seq.Sequence, len(batch))
		for i, cs := range batch {
			if codecFlags.strict || c.Strict {
				if err := fsq.CheckRange(cs, levels); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
			}
			if out[i], err = fsq.Decode(cs, levels); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return output(c, out)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <vectors>",
	Short: "Quantize grid vectors to composite codes",
	Long: `Quantize vectors to the nearest grid point and emit composite codes.

The argument is a YAML or JSON file, - for stdin, or an inline document.
It holds either [T][K] vectors or a batch [B][T][K]. Components outside
[-1, 1] are clamped.

Example:
  acecodes encode "[[-1, -1], [1, 1]]" --levels 8,8`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		levels, err := activeLevels(c)
		if err != nil {
			return err
		}
		batch, err := loadVectors(args[0])
		if err != nil {
			return err
		}

		out := make([][]int, len(batch))
		for i, vecs := range batch {
			if out[i], err = fsq.Encode(vecs, levels); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return output(c, out)
	},
}

// loadVectors reads a [B][T][K] batch or a single [T][K] element.
func loadVectors(arg string) ([]seq.Sequence, error) {
	var (
		data []byte
		name string
		err  error
	)
	switch fi, serr := os.Stat(arg); {
	case arg == "-":
		data, err = io.ReadAll(os.Stdin)
	case serr == nil && !fi.IsDir():
		data, err = os.ReadFile(arg)
		name = arg
	default:
		data = []byte(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}

	var batch []seq.Sequence
	if err := cli.ParseRequest(data, name, &batch); err == nil {
		return batch, nil
	}
	var single seq.Sequence
	if err := cli.ParseRequest(data, name, &single); err != nil {
		return nil, err
	}
	return []seq.Sequence{single}, nil
}

// levelsInfo describes the active quantizer grid.
type levelsInfo struct {
	Levels       []int   `json:"levels" yaml:"levels"`
	Dim          int     `json:"dim" yaml:"dim"`
	Size         int     `json:"size" yaml:"size"`
	Strides      []int   `json:"strides" yaml:"strides"`
	StepDuration string  `json:"step_duration" yaml:"step_duration"`
	Rate         float64 `json:"rate_hz" yaml:"rate_hz"`
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show the active quantizer levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		levels, err := activeLevels(c)
		if err != nil {
			return err
		}
		timing, err := c.Timing()
		if err != nil {
			return err
		}
		return output(c, levelsInfo{
			Levels:       levels,
			Dim:          levels.Dim(),
			Size:         levels.Size(),
			Strides:      levels.Strides(),
			StepDuration: timing.StepDuration.String(),
			Rate:         timing.Rate(),
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{decodeCmd, encodeCmd, levelsCmd} {
		cmd.Flags().StringVar(&codecFlags.levels, "levels", "", "comma-separated levels (default: context levels)")
		rootCmd.AddCommand(cmd)
	}
	decodeCmd.Flags().StringVar(&codecFlags.query, "query", "", "jq expression selecting codes inside code files")
	decodeCmd.Flags().BoolVar(&codecFlags.strict, "strict", false, "reject out-of-range codes instead of clamping")
}
