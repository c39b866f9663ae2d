package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lazydotnet/internal/config"
	"lazydotnet/internal/discovery"
	"lazydotnet/internal/tree"
	"lazydotnet/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config     *config.Config
	discoverer *discovery.Orchestrator
	filter     *discovery.Filter
	formatter  *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	discoverer *discovery.Orchestrator,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:     cfg,
		discoverer: discoverer,
		filter:     filter,
		formatter:  formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	tests, err := lc.discoverer.Discover(cmd.Context(), lc.config.GetTargetPath())
	if err != nil {
		return err
	}
	tests = lc.filter.FilterByName(tests, lc.config.Flags.NameFilter)

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	lc.formatter.PrintTree(tree.Build(tests))
	return nil
}
