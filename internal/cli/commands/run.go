package commands

import (
	"fmt"
	"strings"
	"time"

	"lazydotnet/internal/build"
	"lazydotnet/internal/config"
	"lazydotnet/internal/discovery"
	"lazydotnet/internal/domain"
	"lazydotnet/internal/probe"
	"lazydotnet/internal/run"
	"lazydotnet/internal/storage"
	"lazydotnet/internal/tree"
	"lazydotnet/internal/ui"
	"lazydotnet/internal/workspace"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config     *config.Config
	resolver   *workspace.Resolver
	prober     *probe.Prober
	discoverer *discovery.Orchestrator
	filter     *discovery.Filter
	runner     *run.Orchestrator
	builder    *build.Runner
	storage    storage.Storage
	formatter  *ui.Formatter
	viewer     ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	resolver *workspace.Resolver,
	prober *probe.Prober,
	discoverer *discovery.Orchestrator,
	filter *discovery.Filter,
	runner *run.Orchestrator,
	builder *build.Runner,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:     cfg,
		resolver:   resolver,
		prober:     prober,
		discoverer: discoverer,
		filter:     filter,
		runner:     runner,
		builder:    builder,
		storage:    st,
		formatter:  formatter,
		viewer:     viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := rc.config.GetTargetPath()

	// Build test projects first unless told otherwise, so discovery sees
	// current binaries.
	if !rc.config.Flags.NoBuild {
		if err := rc.buildTestProjects(cmd, target); err != nil {
			return err
		}
	}

	// Discover tests
	tests, err := rc.discoverer.Discover(ctx, target)
	if err != nil {
		return err
	}
	tests = rc.filter.FilterByName(tests, rc.config.Flags.NameFilter)
	if len(tests) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	root := tree.Build(tests)

	// Progress is derived from tree state on every engine notification.
	progress := ui.NewProgressBar(root.TestCount)
	rc.runner.SetRefresh(func() {
		passed, failed := countOutcomes(root)
		progress.Update(passed, failed)
	})
	rc.runner.SetFailFast(rc.config.Flags.FailFast)

	start := time.Now()
	runErr := rc.runner.RunNode(ctx, root)
	duration := time.Since(start)
	progress.Finish()

	results, failures := collectOutcomes(root)
	if err := rc.storage.Save(results, failures, duration); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	report, err := rc.storage.Load()
	if err != nil {
		return err
	}
	rc.formatter.PrintSummary(report)

	if rc.config.Flags.OpenViewer && len(failures) > 0 {
		if err := rc.viewer.View(report); err != nil {
			return err
		}
	}
	return runErr
}

func (rc *RunCommand) buildTestProjects(cmd *cobra.Command, target string) error {
	ctx := cmd.Context()
	projects, err := rc.resolver.Resolve(target)
	if err != nil {
		return err
	}
	for _, project := range projects {
		if !rc.prober.Probe(ctx, project).IsTestProject {
			continue
		}
		err := rc.builder.Build(ctx, project, func(line string) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		})
		if err != nil {
			return fmt.Errorf("build failed for %s: %w", project, err)
		}
		// Build output can change the project's probed properties.
		rc.prober.Invalidate(project)
	}
	return nil
}

// countOutcomes tallies settled leaves for progress reporting.
func countOutcomes(root *domain.TestNode) (passed, failed int) {
	for _, leaf := range root.Leaves() {
		switch leaf.Status() {
		case domain.StatusPassed:
			passed++
		case domain.StatusFailed:
			failed++
		}
	}
	return passed, failed
}

// collectOutcomes flattens the settled tree into persistable results and
// failure records. Leaves a fail-fast stop never ran stay unreported.
func collectOutcomes(root *domain.TestNode) ([]domain.TestRunResult, []domain.TestFailure) {
	var results []domain.TestRunResult
	var failures []domain.TestFailure
	for _, leaf := range root.Leaves() {
		switch leaf.Status() {
		case domain.StatusPassed:
			results = append(results, domain.TestRunResult{
				ID:       leaf.ID,
				Outcome:  domain.OutcomePassed,
				Duration: leaf.Duration(),
			})
		case domain.StatusFailed:
			results = append(results, domain.TestRunResult{
				ID:           leaf.ID,
				Outcome:      domain.OutcomeFailed,
				Duration:     leaf.Duration(),
				ErrorMessage: leaf.ErrorText(),
			})
			failures = append(failures, domain.TestFailure{
				TestName:     leaf.Name,
				FullName:     leaf.FullName,
				Binary:       leaf.Binary,
				ErrorMessage: leaf.ErrorText(),
				Output:       strings.Join(leaf.OutputSnapshot(), "\n"),
			})
		}
	}
	return results, failures
}
