package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the acecodes directory structure
type Paths struct {
	// AppName is the application name
	AppName string

	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		AppName: appName,
		HomeDir: home,
	}, nil
}

// BaseDir returns the base directory (~/.acecodes)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns the app-specific directory (~/.acecodes/<app>)
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns the config file path (~/.acecodes/<app>/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// CacheDir returns the default result cache directory (~/.acecodes/<app>/cache)
func (p *Paths) CacheDir() string {
	return filepath.Join(p.AppDir(), "cache")
}

// LibraryDir returns the default code library (~/.acecodes/<app>/library)
func (p *Paths) LibraryDir() string {
	return filepath.Join(p.AppDir(), "library")
}

// Resolve returns dir, or fallback when dir is empty, with a leading "~/"
// expanded to the home directory.
func (p *Paths) Resolve(dir, fallback string) string {
	if dir == "" {
		return fallback
	}
	if len(dir) >= 2 && dir[:2] == "~/" {
		return filepath.Join(p.HomeDir, dir[2:])
	}
	return dir
}
