package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/acecodes/pkg/fsq"
	"github.com/haivivi/acecodes/pkg/mask"
	"github.com/haivivi/acecodes/pkg/seq"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".acecodes"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// ErrUnknownSetting is returned by Context.Set for keys it does not know.
var ErrUnknownSetting = errors.New("cli: unknown setting")

// Config is the configuration file of a CLI app.
type Config struct {
	// AppName is the application name
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts maps context names to their settings
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one named set of defaults for code operations. Empty fields
// fall back to the built-in defaults.
type Context struct {
	Name string `yaml:"name"`

	// Levels is the comma-separated quantizer levels, e.g. "8,8,8,5,5,5".
	Levels string `yaml:"levels,omitempty"`

	// ScaleMode is the default length alignment for binary operators.
	ScaleMode string `yaml:"scale_mode,omitempty"`

	// StepDuration is the audio time of one code step, e.g. "200ms".
	StepDuration string `yaml:"step_duration,omitempty"`

	// CacheDir enables the persistent result cache when set.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// LibraryDir is the directory holding *_codes files.
	LibraryDir string `yaml:"library_dir,omitempty"`

	// Output is the default output format.
	Output string `yaml:"output,omitempty"`

	// Workers limits concurrent batch elements; 0 means one per CPU.
	Workers int `yaml:"workers,omitempty"`

	// Strict rejects out-of-range codes instead of clamping them.
	Strict bool `yaml:"strict,omitempty"`
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, appName, DefaultConfigFile)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		ctx.Name = name
	}
	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext validates and stores a context under name.
func (c *Config) AddContext(name string, ctx *Context) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, the current context when name
// is empty, or an empty context with all defaults when neither exists.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Settings lists the keys accepted by Context.Set.
var Settings = []string{"levels", "scale_mode", "step_duration", "cache_dir", "library_dir", "output", "workers", "strict"}

// Set assigns one setting from its string form.
func (ctx *Context) Set(key, value string) error {
	next := *ctx
	switch key {
	case "levels":
		next.Levels = value
	case "scale_mode":
		next.ScaleMode = value
	case "step_duration":
		next.StepDuration = value
	case "cache_dir":
		next.CacheDir = value
	case "library_dir":
		next.LibraryDir = value
	case "output":
		next.Output = value
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("workers: %w", err)
		}
		next.Workers = n
	case "strict":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("strict: %w", err)
		}
		next.Strict = b
	default:
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownSetting, key, strings.Join(Settings, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*ctx = next
	return nil
}

// Validate parses every set field.
func (ctx *Context) Validate() error {
	if _, err := ctx.ParsedLevels(); err != nil {
		return err
	}
	if _, err := ctx.ParsedScaleMode(); err != nil {
		return err
	}
	if _, err := ctx.Timing(); err != nil {
		return err
	}
	if _, err := ParseOutputFormat(ctx.Output); err != nil {
		return err
	}
	if ctx.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", ctx.Workers)
	}
	return nil
}

// ParsedLevels returns the configured levels, or fsq.DefaultLevels.
func (ctx *Context) ParsedLevels() (fsq.Levels, error) {
	if ctx.Levels == "" {
		return fsq.DefaultLevels.Clone(), nil
	}
	return fsq.ParseLevels(ctx.Levels)
}

// ParsedScaleMode returns the configured scale mode, or seq.ScaleBToA.
func (ctx *Context) ParsedScaleMode() (seq.ScaleMode, error) {
	return seq.ParseScaleMode(ctx.ScaleMode)
}

// Timing returns the configured step timing, or mask.CodeTiming.
func (ctx *Context) Timing() (mask.Timing, error) {
	if ctx.StepDuration == "" {
		return mask.CodeTiming, nil
	}
	d, err := time.ParseDuration(ctx.StepDuration)
	if err != nil {
		return mask.Timing{}, fmt.Errorf("step_duration: %w", err)
	}
	if d <= 0 {
		return mask.Timing{}, fmt.Errorf("step_duration must be positive, got %v", d)
	}
	return mask.Timing{StepDuration: d}, nil
}
