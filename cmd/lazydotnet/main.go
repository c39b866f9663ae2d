package main

import (
	"fmt"
	"os"

	"lazydotnet/internal/cli"
	"lazydotnet/internal/cli/commands"
	"lazydotnet/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "lazydotnet",
		Short:   "Terminal test explorer for .NET workspaces",
		Long:    `A terminal test explorer for .NET solutions and projects. Discover tests across VSTest and Microsoft.Testing.Platform projects, run them concurrently, and inspect failures without leaving the terminal.`,
		Version: version,
	}

	// Load config from the working directory's .env / .lazydotnet.yaml
	cfg := config.Load("")

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
