package protocol

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
)

// MTPClient drives Microsoft.Testing.Platform binaries. Each binary is its
// own runner, so sessions are lightweight and safe to use concurrently.
type MTPClient struct {
	cfg *config.Config
}

// NewMTPClient creates a new MTPClient
func NewMTPClient(cfg *config.Config) *MTPClient {
	return &MTPClient{cfg: cfg}
}

// Discover lists the tests a testing-platform binary exposes.
func (c *MTPClient) Discover(ctx context.Context, binary string) ([]domain.DiscoveredTest, error) {
	cmd := exec.CommandContext(ctx, c.cfg.DotnetPath, "exec", binary, "--list-tests")
	out, err := cmd.Output()
	if err != nil {
		if isToolchainMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, c.cfg.DotnetPath)
		}
		return nil, fmt.Errorf("mtp discovery for %s: %w", binary, err)
	}

	names := ParseTestList(bytes.NewReader(out))
	tests := make([]domain.DiscoveredTest, 0, len(names))
	for _, name := range names {
		tests = append(tests, domain.DiscoveredTest{
			ID:          name,
			FullName:    name,
			DisplayName: name,
			Binary:      binary,
			Protocol:    domain.ProtocolMTP,
		})
	}
	return tests, nil
}

// Run executes the requested tests in one per-binary session, streaming
// results as the runner reports them.
func (c *MTPClient) Run(ctx context.Context, binary string, items []domain.RunItem, results chan<- domain.TestRunResult) error {
	filters := make([]string, 0, len(items))
	for _, it := range items {
		filters = append(filters, it.ID)
	}

	cmd := exec.CommandContext(ctx, c.cfg.DotnetPath, "exec", binary,
		"--filter", strings.Join(filters, "|"),
		"--minimum-expected-tests", "0",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		if isToolchainMissing(err) {
			return fmt.Errorf("%w: %s", ErrUnavailable, c.cfg.DotnetPath)
		}
		return fmt.Errorf("mtp run for %s: %w", binary, err)
	}

	parser := newMTPRunParser()
	reported := 0
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if res := parser.Feed(scanner.Text()); res != nil {
			reported++
			if !send(ctx, results, *res) {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
				return ctx.Err()
			}
		}
	}
	if res := parser.Flush(); res != nil {
		reported++
		if !send(ctx, results, *res) {
			_ = cmd.Wait()
			return ctx.Err()
		}
	}

	// Failing tests exit non-zero; only a run with nothing reported is a
	// real session fault.
	if err := cmd.Wait(); err != nil && reported == 0 {
		return fmt.Errorf("mtp run for %s: %w", binary, err)
	}
	return nil
}
