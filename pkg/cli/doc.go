// Package cli provides the configuration, output and preview helpers behind
// the acecodes command-line tool.
//
// This package includes:
//   - Configuration management with kubectl-like contexts
//   - Output formatting (YAML, JSON, raw code tokens)
//   - Request file loading (YAML/JSON, or stdin)
//   - Terminal previews of masks
//
// Configuration is stored in ~/.acecodes/<app>/config.yaml. A context
// holds the quantizer levels, default scale mode, mask step duration,
// cache and library directories, output format and worker count.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("acecodes")
//	ctx, err := cfg.ResolveContext("")
//	levels, err := ctx.ParsedLevels()
//
//	cli.Output(batch, cli.OutputOptions{Format: cli.FormatRaw})
package cli
