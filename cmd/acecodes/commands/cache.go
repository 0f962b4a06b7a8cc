package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cache"
	"github.com/haivivi/acecodes/pkg/cli"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the result cache",
	Long: `Inspect the result cache of the current context.

Results of mix and unary are cached by a fingerprint of the request, the
levels and the step duration when the context sets cache_dir:
  acecodes config set <context> cache_dir ~/.acecodes/acecodes/cache`,
}

// withCache opens the cache of the current context for fn.
func withCache(fn func(c *cli.Context, store *cache.Badger) error) error {
	c, err := currentContext()
	if err != nil {
		return err
	}
	if c.CacheDir == "" {
		return fmt.Errorf("no cache configured; set cache_dir on the context")
	}
	store, err := openCache(c)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(c, store)
}

var cacheListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List cached results",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(c *cli.Context, store *cache.Badger) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tELEMENTS\tSTEPS")
			n := 0
			for e, err := range store.Entries(cmd.Context()) {
				if err != nil {
					return err
				}
				steps := 0
				for _, cs := range e.Batch {
					steps += len(cs)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\n", e.Key, len(e.Batch), steps)
				n++
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("Cache is empty.")
			}
			return nil
		})
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a cached result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := cache.ParseKey(args[0])
		if err != nil {
			return err
		}
		return withCache(func(c *cli.Context, store *cache.Badger) error {
			batch, err := store.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			return output(c, batch)
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [key...]",
	Short: "Delete cached results, all of them without arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		var keys []cache.Key
		for _, a := range args {
			k, err := cache.ParseKey(a)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}
		return withCache(func(c *cli.Context, store *cache.Badger) error {
			if len(keys) == 0 {
				for e, err := range store.Entries(cmd.Context()) {
					if err != nil {
						return err
					}
					keys = append(keys, e.Key)
				}
			}
			for _, k := range keys {
				if err := store.Delete(cmd.Context(), k); err != nil {
					return err
				}
			}
			fmt.Printf("Deleted %d cached results.\n", len(keys))
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
