// Package main is the entry point for the acecodes CLI.
//
// Usage:
//
//	acecodes [flags] <command> [subcommand] [args]
//
// Commands:
//
//	mix      - Combine two code inputs with a binary operator
//	unary    - Transform one code input with a unary operator
//	mask     - Build and preview a step mask
//	decode   - Composite codes to grid vectors
//	encode   - Grid vectors to composite codes
//	levels   - Show the active quantizer levels
//	library  - Manage *_codes files (list, show, random, save, delete)
//	cache    - Inspect the result cache
//	schema   - JSON schema of request files
//	config   - Configuration management (contexts)
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/acecodes/cmd/acecodes/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
