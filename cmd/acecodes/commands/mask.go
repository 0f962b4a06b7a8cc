package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cli"
	"github.com/haivivi/acecodes/pkg/codes"
)

var maskCmdFlags struct {
	steps   int
	a       string
	query   string
	element int
	preview bool
	width   int
	mask    maskFlags
}

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Build and preview a step mask",
	Long: `Build the mask an operator would see for one batch element.

The length comes from --steps or from the code input given with --a. Time
flags are converted with the step duration of the current context.

Examples:
  acecodes mask --steps 50 --mask-mode window --mask-start 10 --mask-end 30 --mask-ramp 5
  acecodes mask --a a_codes.json --mask-start-time 2s --mask-end-time 6s --preview`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		n, err := maskLength(cmd, c)
		if err != nil {
			return err
		}
		in, _, err := maskCmdFlags.mask.input(cmd.Flags())
		if err != nil {
			return err
		}

		p, closeFn, err := newPipeline(c)
		if err != nil {
			return err
		}
		defer closeFn()

		m, err := p.Mask(in, maskCmdFlags.element, n)
		if err != nil {
			return err
		}
		if !maskCmdFlags.preview {
			return output(c, []float64(m))
		}

		styles := cli.NewStyles(cli.DefaultTheme)
		view := cli.Preview{
			Styles: styles,
			Title:  "mask",
			Status: cli.FormatSteps(n, p.Timing()),
			Rows: []cli.PreviewRow{
				{Label: "weight", Mask: m},
				{Label: "reverse", Mask: m.Invert()},
			},
			Help: "1 selects A (or the operator), 0 keeps B (or the input)",
		}
		fmt.Println(view.Render(maskCmdFlags.width))
		return nil
	},
}

// maskLength returns --steps, or the length of the selected batch element
// of --a.
func maskLength(cmd *cobra.Command, c *cli.Context) (int, error) {
	if maskCmdFlags.a == "" {
		if maskCmdFlags.steps <= 0 {
			return 0, fmt.Errorf("mask length is required, use --steps or --a")
		}
		return maskCmdFlags.steps, nil
	}
	batch, err := loadCodes(cmd.Context(), c, maskCmdFlags.a, maskCmdFlags.query)
	if err != nil {
		return 0, err
	}
	if codes.Empty(batch) {
		return 0, fmt.Errorf("%w: code input holds no codes", codes.ErrInputParse)
	}
	i := maskCmdFlags.element
	if i < 0 || i >= len(batch) {
		return 0, fmt.Errorf("element %d outside batch of %d", i, len(batch))
	}
	return len(batch[i]), nil
}

func init() {
	fs := maskCmd.Flags()
	fs.IntVar(&maskCmdFlags.steps, "steps", 0, "mask length in steps")
	fs.StringVar(&maskCmdFlags.a, "a", "", "code input whose length sets the mask length")
	fs.StringVar(&maskCmdFlags.query, "query", "", "jq expression selecting codes inside code files")
	fs.IntVar(&maskCmdFlags.element, "element", 0, "batch element, selects the row of an external mask")
	fs.BoolVar(&maskCmdFlags.preview, "preview", false, "render the mask as a bar instead of printing values")
	fs.IntVar(&maskCmdFlags.width, "width", 64, "preview width in cells")
	maskCmdFlags.mask.register(fs)

	rootCmd.AddCommand(maskCmd)
}
