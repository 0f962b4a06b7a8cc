package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/cmd/acecodes/internal/build"
	"github.com/haivivi/acecodes/pkg/fsq"
)

// versionInfo is the structured form printed with -o.
type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
	Levels  string `json:"default_levels" yaml:"default_levels"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if formatOutput != "" {
			return output(nil, versionInfo{
				Version: build.Version,
				Commit:  build.Commit,
				Date:    build.Date,
				Go:      runtime.Version(),
				Levels:  fsq.DefaultLevels.String(),
			})
		}
		fmt.Println(build.String())
		if IsVerbose() {
			fmt.Printf("  go:     %s\n", runtime.Version())
			if cfg, err := GetConfig(); err == nil {
				fmt.Printf("  config: %s\n", cfg.Path())
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
