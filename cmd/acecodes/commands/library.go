package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/codes"
)

var libraryFlags struct {
	query  string
	seed   uint64
	format string
}

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage saved code files",
	Long: `Manage the code library: files named <name>_codes.json, .yaml or
.msgpack in the library directory of the current context
(default ~/.acecodes/acecodes/library).

Library entries can be used as code inputs with lib:<name>.

Examples:
  acecodes library list
  acecodes library save intro intro.json
  acecodes library show intro -o raw
  acecodes library random --seed 42`,
}

var libraryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List library entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		lib, err := openLibrary(c)
		if err != nil {
			return err
		}
		items, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}
		if formatOutput != "" {
			return output(c, items)
		}

		if len(items) == 0 {
			fmt.Println("No code files in library.")
			fmt.Println("Add one with: acecodes library save <name> <codes>")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFORMAT\tPATH")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", it.Name, it.Format, it.Path)
		}
		return w.Flush()
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the codes of a library entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		lib, err := openLibrary(c)
		if err != nil {
			return err
		}
		q, err := codes.NewQuery(libraryFlags.query)
		if err != nil {
			return err
		}
		batch, _, err := lib.Load(cmd.Context(), args[0], q)
		if err != nil {
			return err
		}
		return output(c, batch)
	},
}

var libraryRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print the codes of an entry picked by seed",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		lib, err := openLibrary(c)
		if err != nil {
			return err
		}
		q, err := codes.NewQuery(libraryFlags.query)
		if err != nil {
			return err
		}
		batch, it, err := lib.Random(cmd.Context(), libraryFlags.seed, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "picked %s\n", it.Name)
		return output(c, batch)
	},
}

var librarySaveCmd = &cobra.Command{
	Use:   "save <name> <codes>",
	Short: "Save codes as a library entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		f, err := codes.ParseFormat(libraryFlags.format)
		if err != nil {
			return err
		}
		batch, err := loadCodes(cmd.Context(), c, args[1], libraryFlags.query)
		if err != nil {
			return err
		}
		lib, err := openLibrary(c)
		if err != nil {
			return err
		}
		it, err := lib.Save(cmd.Context(), args[0], batch, f)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %q (%d elements) to %s.\n", it.Name, len(batch), it.Path)
		return nil
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a library entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentContext()
		if err != nil {
			return err
		}
		lib, err := openLibrary(c)
		if err != nil {
			return err
		}
		if _, err := lib.Find(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := lib.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %q.\n", args[0])
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{libraryShowCmd, libraryRandomCmd, librarySaveCmd} {
		cmd.Flags().StringVar(&libraryFlags.query, "query", "", "jq expression selecting codes inside code files")
	}
	libraryRandomCmd.Flags().Uint64Var(&libraryFlags.seed, "seed", 0, "seed of the pick")
	librarySaveCmd.Flags().StringVar(&libraryFlags.format, "format", string(codes.FormatJSON), "file format: json, yaml, msgpack")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryRandomCmd)
	libraryCmd.AddCommand(librarySaveCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)
	rootCmd.AddCommand(libraryCmd)
}
