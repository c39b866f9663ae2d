package config

import "time"

const (
	// DefaultWorkspacePath is the default workspace root
	DefaultWorkspacePath = "."
	// DefaultDotnetPath is the dotnet executable resolved from PATH
	DefaultDotnetPath = "dotnet"
	// DefaultReportFile is the default report file name
	DefaultReportFile = "last-run.json"
	// DefaultReportDir is the default report directory under the workspace
	DefaultReportDir = ".lazydotnet"
	// DefaultConfigFile is the optional per-workspace config file
	DefaultConfigFile = ".lazydotnet.yaml"
	// DefaultDiscoveryDebounce delays auto-discovery after a selection change
	DefaultDiscoveryDebounce = 300 * time.Millisecond
)

// DefaultSkipDirs are directories never scanned for project descriptors
var DefaultSkipDirs = []string{
	"bin",
	"obj",
	"node_modules",
	"packages",
	"artifacts",
	"TestResults",
}
