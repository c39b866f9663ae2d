package commands

import (
	"lazydotnet/internal/build"
	"lazydotnet/internal/cli"
	"lazydotnet/internal/config"
	"lazydotnet/internal/discovery"
	"lazydotnet/internal/probe"
	"lazydotnet/internal/protocol"
	"lazydotnet/internal/run"
	"lazydotnet/internal/storage"
	"lazydotnet/internal/ui"
	"lazydotnet/internal/workspace"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	UI       *UICommand
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	resolver := workspace.NewResolver(cfg.SkipDirs)
	prober := probe.NewProber(cfg)
	clients := protocol.NewClients(cfg)
	discoverer := discovery.NewOrchestrator(resolver, prober, clients)
	filter := discovery.NewFilter()
	runner := run.New(clients, nil)
	builder := build.NewRunner(cfg)
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	failureViewer := ui.NewFailureViewer(cfg, jsonStorage)

	return &Commands{
		UI:       NewUICommand(cfg, resolver, discoverer, runner, builder),
		Run:      NewRunCommand(cfg, resolver, prober, discoverer, filter, runner, builder, jsonStorage, formatter, failureViewer),
		List:     NewListCommand(cfg, discoverer, filter, formatter),
		Failures: NewFailuresCommand(cfg, jsonStorage, failureViewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// UI command
	uiCmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive test dashboard",
		Long:  "Browse the workspace's test tree, run tests, and inspect failures interactively",
		RunE:  c.UI.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Flags = flags.ToConfigFlags()
			return nil
		},
	}
	uiCmd.Flags().StringVarP(&flags.Target, "target", "t", "", "Workspace directory, solution, or project to load")
	rootCmd.AddCommand(uiCmd)

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run tests headlessly",
		Long:  "Discover and execute the workspace's tests, print a summary, and persist the failure report",
		RunE:  c.Run.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Flags = flags.ToConfigFlags()
			return nil
		},
	}
	runCmd.Flags().StringVarP(&flags.Target, "target", "t", "", "Workspace directory, solution, or project to run")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Run only tests whose full name matches the pattern (supports wildcards, e.g. '*Checkout*')")
	runCmd.Flags().BoolVar(&flags.NoBuild, "no-build", false, "Skip building test projects before running")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OpenViewer, "open-failures", false, "Open the failure viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Discover the workspace's tests and print the test tree without executing anything",
		RunE:  c.List.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Flags = flags.ToConfigFlags()
			return nil
		},
	}
	listCmd.Flags().StringVarP(&flags.Target, "target", "t", "", "Workspace directory, solution, or project to list")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "List only tests whose full name matches the pattern")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View last run's failures interactively",
		Long:  "Display test failures from the last headless run in an interactive viewer",
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)
}
