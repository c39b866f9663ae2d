package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Workspace settings
	WorkspacePath string
	DotnetPath    string

	// Report settings
	ReportFile string
	ReportDir  string

	// Discovery settings
	SkipDirs          []string
	DiscoveryDebounce time.Duration

	// Command flags
	Flags Flags
}

// Flags holds command-line flags after conversion from the CLI layer
type Flags struct {
	Target     string
	NameFilter string
	NoBuild    bool
	FailFast   bool
	OpenViewer bool
}

// fileConfig is the shape of the optional .lazydotnet.yaml workspace file
type fileConfig struct {
	DotnetPath string   `yaml:"dotnet_path"`
	SkipDirs   []string `yaml:"skip_dirs"`
	ReportDir  string   `yaml:"report_dir"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		WorkspacePath:     DefaultWorkspacePath,
		DotnetPath:        DefaultDotnetPath,
		ReportFile:        DefaultReportFile,
		ReportDir:         DefaultReportDir,
		DiscoveryDebounce: DefaultDiscoveryDebounce,
	}
	cfg.SkipDirs = make([]string, len(DefaultSkipDirs))
	copy(cfg.SkipDirs, DefaultSkipDirs)
	return cfg
}

// Load creates a config for a workspace: defaults, then the workspace's
// .env and .lazydotnet.yaml if present, then environment variables.
func Load(workspace string) *Config {
	cfg := New()
	if workspace != "" {
		cfg.WorkspacePath = workspace
	}

	// .env might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(cfg.WorkspacePath, ".env"))

	if data, err := os.ReadFile(filepath.Join(cfg.WorkspacePath, DefaultConfigFile)); err == nil {
		var fc fileConfig
		if yaml.Unmarshal(data, &fc) == nil {
			if fc.DotnetPath != "" {
				cfg.DotnetPath = fc.DotnetPath
			}
			if len(fc.SkipDirs) > 0 {
				cfg.SkipDirs = fc.SkipDirs
			}
			if fc.ReportDir != "" {
				cfg.ReportDir = fc.ReportDir
			}
		}
	}

	if p := os.Getenv("LAZYDOTNET_DOTNET_PATH"); p != "" {
		cfg.DotnetPath = p
	}
	if p := os.Getenv("DOTNET_ROOT"); p != "" && cfg.DotnetPath == DefaultDotnetPath {
		cfg.DotnetPath = filepath.Join(p, "dotnet")
	}

	return cfg
}

// GetTargetPath returns the discovery target, using the flag if provided
func (c *Config) GetTargetPath() string {
	if c.Flags.Target != "" {
		if filepath.IsAbs(c.Flags.Target) {
			return c.Flags.Target
		}
		return filepath.Join(c.WorkspacePath, c.Flags.Target)
	}
	return c.WorkspacePath
}

// GetReportPath returns the full path to the persisted run report.
// Resolves to an absolute path so run and failures always read/write the
// same file regardless of cwd.
func (c *Config) GetReportPath() string {
	p := filepath.Join(c.WorkspacePath, c.ReportDir, c.ReportFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
