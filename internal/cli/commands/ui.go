package commands

import (
	"lazydotnet/internal/build"
	"lazydotnet/internal/config"
	"lazydotnet/internal/discovery"
	"lazydotnet/internal/run"
	"lazydotnet/internal/ui"
	"lazydotnet/internal/view"
	"lazydotnet/internal/workspace"

	"github.com/spf13/cobra"
)

// UICommand handles the ui command
type UICommand struct {
	config     *config.Config
	resolver   *workspace.Resolver
	discoverer *discovery.Orchestrator
	runner     *run.Orchestrator
	builder    *build.Runner
}

// NewUICommand creates a new UICommand
func NewUICommand(
	cfg *config.Config,
	resolver *workspace.Resolver,
	discoverer *discovery.Orchestrator,
	runner *run.Orchestrator,
	builder *build.Runner,
) *UICommand {
	return &UICommand{
		config:     cfg,
		resolver:   resolver,
		discoverer: discoverer,
		runner:     runner,
		builder:    builder,
	}
}

// Execute runs the command
func (uc *UICommand) Execute(cmd *cobra.Command, args []string) error {
	projects, err := uc.resolver.Resolve(uc.config.GetTargetPath())
	if err != nil {
		return err
	}

	model := view.NewModel()
	dashboard := ui.NewDashboard(uc.config, uc.discoverer, uc.runner, uc.builder, model)
	uc.runner.SetRefresh(dashboard.RequestRefresh)

	return dashboard.Run(projects)
}
