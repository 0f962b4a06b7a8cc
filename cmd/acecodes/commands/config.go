package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage contexts.

A context is a named set of defaults: quantizer levels, scale mode, step
duration, cache and library directories, output format and worker count.
Settings: ` + strings.Join(cli.Settings, ", ") + `

Examples:
  acecodes config list-contexts
  acecodes config add-context studio --set levels=8,8,8,5,5,5 --set cache_dir=~/.acecodes/cache
  acecodes config use-context studio
  acecodes config current-context
  acecodes config set studio step_duration 40ms
  acecodes config view`,
}

var configAddSettings []string

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "# %s\n", cfg.Path())
		return output(nil, cfg)
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured.")
			fmt.Println("Create one with: acecodes config add-context <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tLEVELS\tSCALE MODE\tSTEP")
		for _, name := range names {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			ctx := cfg.Contexts[name]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name,
				orDefault(ctx.Levels), orDefault(ctx.ScaleMode), orDefault(ctx.StepDuration))
		}
		return w.Flush()
	},
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Create a new context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]
		if _, exists := cfg.Contexts[name]; exists {
			return fmt.Errorf("context %q already exists", name)
		}

		ctx := &cli.Context{}
		for _, kv := range configAddSettings {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid setting %q, want key=value", kv)
			}
			if err := ctx.Set(key, value); err != nil {
				return err
			}
		}
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}
		fmt.Printf("Context %q created.\n", name)
		if cfg.CurrentContext == "" {
			fmt.Printf("Activate it with: acecodes config use-context %s\n", name)
		}
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Context %q deleted.\n", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to context %q.\n", args[0])
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Display the current context name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			fmt.Println("No current context set.")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <context> <key> <value>",
	Short: "Set a context setting",
	Long: `Set one setting of a context. The value is validated before the
configuration is saved.

Settings: ` + strings.Join(cli.Settings, ", ") + `

Examples:
  acecodes config set studio levels 8,8,8,5,5,5
  acecodes config set studio scale_mode loop_match
  acecodes config set studio workers 4`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ctxName, key, value := args[0], args[1], args[2]
		ctx, err := cfg.GetContext(ctxName)
		if err != nil {
			return err
		}
		if err := ctx.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Set %s.%s = %s\n", ctxName, key, strconv.Quote(value))
		return nil
	},
}

func init() {
	configAddContextCmd.Flags().StringArrayVar(&configAddSettings, "set", nil, "setting as key=value, repeatable")

	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configCurrentContextCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
