package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/acecodes/pkg/cli"
)

// setupTestEnv points the config file and the home directory at a temp dir
// and returns the config path.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv(configEnv, path)
	t.Setenv("HOME", dir)
	return path
}

// setupContext creates and activates a context named "test" with settings
// given as key, value pairs.
func setupContext(t *testing.T, settings ...string) {
	t.Helper()
	path := setupTestEnv(t)
	cfg, err := cli.LoadConfigWithPath(appName, path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := &cli.Context{}
	for i := 0; i+1 < len(settings); i += 2 {
		if err := ctx.Set(settings[i], settings[i+1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := cfg.AddContext("test", ctx); err != nil {
		t.Fatal(err)
	}
	if err := cfg.UseContext("test"); err != nil {
		t.Fatal(err)
	}
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	verbose = false
	contextName = ""
	formatOutput = ""
	outputFile = ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		stderr += err.Error()
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writeTestFile writes content to a temp dir and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runJSON runs a command with -o json and decodes its stdout into v.
func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	stdout, stderr, code := runCmd(t, append(args, "-o", "json")...)
	if code != 0 {
		t.Fatalf("%v: exit %d: %s", args, code, stderr)
	}
	if err := json.Unmarshal([]byte(stdout), v); err != nil {
		t.Fatalf("%v: decode %q: %v", args, stdout, err)
	}
}
