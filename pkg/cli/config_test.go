package cli

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/haivivi/acecodes/pkg/fsq"
	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/seq"
)

func TestLoadConfigWithPath_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg, err := LoadConfigWithPath("acecodes", path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Dir() != filepath.Dir(path) {
		t.Errorf("Dir() = %q", cfg.Dir())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
	if len(cfg.Contexts) != 0 {
		t.Errorf("new config has contexts: %v", cfg.Contexts)
	}
}

func TestConfig_ContextLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigWithPath("acecodes", path)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.AddContext("studio", &Context{Levels: "8,8,8,5,5,5", ScaleMode: "loop_match", Workers: 4}); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.AddContext("draft", &Context{StepDuration: "100ms"}); err != nil {
		t.Fatalf("AddContext: %v", err)
	}
	if err := cfg.UseContext("studio"); err != nil {
		t.Fatalf("UseContext: %v", err)
	}

	// Reload from disk.
	cfg, err = LoadConfigWithPath("acecodes", path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.ListContexts(); !reflect.DeepEqual(got, []string{"draft", "studio"}) {
		t.Errorf("ListContexts = %v", got)
	}
	ctx, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Name != "studio" || ctx.ScaleMode != "loop_match" || ctx.Workers != 4 {
		t.Errorf("current context = %+v", ctx)
	}

	if err := cfg.DeleteContext("studio"); err != nil {
		t.Fatal(err)
	}
	if cfg.CurrentContext != "" {
		t.Errorf("CurrentContext = %q after deleting it", cfg.CurrentContext)
	}
	ctx, err = cfg.ResolveContext("")
	if err != nil || ctx.Levels != "" {
		t.Errorf("ResolveContext without current = %+v, %v", ctx, err)
	}
	if _, err := cfg.ResolveContext("studio"); err == nil {
		t.Error("ResolveContext(deleted) succeeded")
	}
	if err := cfg.UseContext("nope"); err == nil {
		t.Error("UseContext(nope) succeeded")
	}
	if err := cfg.DeleteContext("nope"); err == nil {
		t.Error("DeleteContext(nope) succeeded")
	}
}

func TestConfig_AddContextValidates(t *testing.T) {
	cfg, err := LoadConfigWithPath("acecodes", filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.AddContext("bad", &Context{Levels: "8,0"}); !errors.Is(err, fsq.ErrInvalidLevels) {
		t.Errorf("AddContext(bad levels) = %v", err)
	}
	if _, ok := cfg.Contexts["bad"]; ok {
		t.Error("invalid context was stored")
	}
}

func TestContext_Defaults(t *testing.T) {
	ctx := &Context{}
	levels, err := ctx.ParsedLevels()
	if err != nil || !reflect.DeepEqual(levels, fsq.DefaultLevels) {
		t.Errorf("ParsedLevels = %v, %v", levels, err)
	}
	mode, err := ctx.ParsedScaleMode()
	if err != nil || mode != seq.ScaleBToA {
		t.Errorf("ParsedScaleMode = %v, %v", mode, err)
	}
	timing, err := ctx.Timing()
	if err != nil || timing != mask.CodeTiming {
		t.Errorf("Timing = %v, %v", timing, err)
	}
}

func TestContext_Set(t *testing.T) {
	ctx := &Context{Name: "x"}
	steps := []struct{ key, value string }{
		{"levels", "4,4"},
		{"scale_mode", "pad_to_match"},
		{"step_duration", "50ms"},
		{"cache_dir", "~/cache"},
		{"library_dir", "/tmp/lib"},
		{"output", "json"},
		{"workers", "2"},
		{"strict", "true"},
	}
	for _, s := range steps {
		if err := ctx.Set(s.key, s.value); err != nil {
			t.Fatalf("Set(%s, %s): %v", s.key, s.value, err)
		}
	}
	want := Context{
		Name: "x", Levels: "4,4", ScaleMode: "pad_to_match", StepDuration: "50ms",
		CacheDir: "~/cache", LibraryDir: "/tmp/lib", Output: "json", Workers: 2, Strict: true,
	}
	if *ctx != want {
		t.Errorf("context = %+v, want %+v", *ctx, want)
	}
	timing, _ := ctx.Timing()
	if timing.StepDuration != 50*time.Millisecond {
		t.Errorf("Timing = %v", timing)
	}
}

func TestContext_SetRejects(t *testing.T) {
	ctx := &Context{Levels: "8,8"}
	tests := []struct{ key, value string }{
		{"levels", "a,b"},
		{"scale_mode", "stretch"},
		{"step_duration", "-1s"},
		{"output", "xml"},
		{"workers", "many"},
		{"workers", "-1"},
		{"strict", "maybe"},
		{"color", "red"},
	}
	for _, tt := range tests {
		if err := ctx.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%s, %s) succeeded", tt.key, tt.value)
		}
	}
	if ctx.Levels != "8,8" {
		t.Errorf("failed Set changed the context: %+v", ctx)
	}
	if err := ctx.Set("color", "red"); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("Set(color) = %v, want ErrUnknownSetting", err)
	}
}
