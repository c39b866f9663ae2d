package build

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"

	"lazydotnet/internal/config"
)

// Runner builds a single project and streams its textual output. Discovery
// and running need a built binary, but the orchestration engine itself never
// builds; callers decide when to.
type Runner struct {
	cfg *config.Config
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Build compiles one project, invoking out for every output line as it
// arrives. Returns an error when the build fails.
func (r *Runner) Build(ctx context.Context, projectPath string, out func(line string)) error {
	cmd := exec.CommandContext(ctx, r.cfg.DotnetPath, "build", projectPath, "--nologo")
	cmd.Dir = r.cfg.WorkspacePath

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("build %s: %w", projectPath, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if out != nil {
			out(scanner.Text())
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("build %s: %w", projectPath, err)
	}
	return nil
}
