package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haivivi/acecodes/pkg/cache"
	"github.com/haivivi/acecodes/pkg/cli"
	"github.com/haivivi/acecodes/pkg/pipeline"
)

const appName = "acecodes"

// configEnv overrides the config file location.
const configEnv = "ACECODES_CONFIG"

var (
	// Global flags
	verbose      bool
	contextName  string
	formatOutput string
	outputFile   string

	// Global configuration (loaded at init time)
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "acecodes",
	Short: "Compose ACE-Step audio codes",
	Long: `acecodes - mix, mask and transform ACE-Step audio code sequences.

Audio codes are composite FSQ indices. Every command decodes them to grid
vectors, runs an operator and quantizes the result back to codes.

Configuration is stored in ~/.acecodes/acecodes/config.yaml (override with
$ACECODES_CONFIG). A context holds default levels, scale mode, step timing,
cache and library directories.

Examples:
  # Keep A in the first 2 seconds, B after that
  acecodes mix --a a_codes.json --b b_codes.json --op blend \
    --mask-mode range --mask-start-time 0s --mask-end-time 2s

  # Append B to A
  acecodes mix --a "[1,2,3]" --b "<|audio_code_4|><|audio_code_5|>" --op concatenate

  # Fade a library entry out
  acecodes unary --a lib:intro --op fade_out -o raw

  # Run a request file
  acecodes mix -f request.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&formatOutput, "output", "o", "", "output format: yaml, json, raw (default: context output or yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "out-file", "", "write output to file instead of stdout")
}

// initLogger installs the default logger: text on stderr, tagged with a
// per-invocation run id.
func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h).With("run", uuid.NewString()))
}

// configLoadErr stores the error from cli.LoadConfig() for deferred reporting.
var configLoadErr error

func initConfig() {
	globalConfig, configLoadErr = loadConfig()
}

func loadConfig() (*cli.Config, error) {
	return cli.LoadConfigWithPath(appName, os.Getenv(configEnv))
}

// GetConfig returns the global configuration.
// Returns an error if the config could not be loaded (e.g., HOME not set).
func GetConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := loadConfig()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// currentContext resolves the -c flag or the current context. Without a
// config file every setting takes its default.
func currentContext() (*cli.Context, error) {
	cfg, err := GetConfig()
	if err != nil {
		if contextName != "" {
			return nil, err
		}
		slog.Warn("using default settings", "error", err)
		return &cli.Context{}, nil
	}
	return cfg.ResolveContext(contextName)
}

// paths returns the directory layout of the app.
func paths() (*cli.Paths, error) {
	return cli.NewPaths(appName)
}

// newPipeline builds a pipeline from the resolved context. The returned
// close function releases the result cache.
func newPipeline(ctx *cli.Context) (*pipeline.Pipeline, func(), error) {
	levels, err := ctx.ParsedLevels()
	if err != nil {
		return nil, nil, err
	}
	timing, err := ctx.Timing()
	if err != nil {
		return nil, nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithLevels(levels),
		pipeline.WithTiming(timing),
		pipeline.WithWorkers(ctx.Workers),
		pipeline.WithLogger(slog.Default()),
	}
	if ctx.Strict {
		opts = append(opts, pipeline.WithStrictCodes())
	}

	closeFn := func() {}
	if ctx.CacheDir != "" {
		c, err := openCache(ctx)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithCache(c))
		closeFn = func() {
			if err := c.Close(); err != nil {
				slog.Warn("close cache", "error", err)
			}
		}
	}
	return pipeline.New(opts...), closeFn, nil
}

// openCache opens the persistent result cache of ctx.
func openCache(ctx *cli.Context) (*cache.Badger, error) {
	p, err := paths()
	if err != nil {
		return nil, err
	}
	dir := p.Resolve(ctx.CacheDir, p.CacheDir())
	slog.Debug("opening result cache", "dir", dir)
	return cache.NewBadger(cache.BadgerOptions{Dir: dir, Logger: slog.Default()})
}

// output writes result in the -o format, falling back to the context's
// output setting.
func output(ctx *cli.Context, result any) error {
	name := formatOutput
	if name == "" && ctx != nil {
		name = ctx.Output
	}
	format, err := cli.ParseOutputFormat(name)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{Format: format, File: outputFile})
}
