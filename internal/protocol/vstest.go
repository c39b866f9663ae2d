package protocol

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
)

// ErrUnavailable reports that a protocol's tool-chain is not installed.
// Callers degrade to the remaining protocol instead of failing the batch.
var ErrUnavailable = errors.New("test runner tool-chain unavailable")

// vstestGate serializes every vstest console interaction process-wide.
// The console session cannot discover or run concurrently, even across
// different binaries.
var vstestGate = make(chan struct{}, 1)

func acquireVSTestGate(ctx context.Context) error {
	select {
	case vstestGate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func releaseVSTestGate() {
	<-vstestGate
}

// VSTestClient drives the session-oriented vstest console runner.
type VSTestClient struct {
	cfg *config.Config
}

// NewVSTestClient creates a new VSTestClient
func NewVSTestClient(cfg *config.Config) *VSTestClient {
	return &VSTestClient{cfg: cfg}
}

// Discover lists the tests a binary exposes. The process-wide gate is held
// for the whole session and released even when the context is cancelled.
func (c *VSTestClient) Discover(ctx context.Context, binary string) ([]domain.DiscoveredTest, error) {
	if err := acquireVSTestGate(ctx); err != nil {
		return nil, err
	}
	defer releaseVSTestGate()
	return c.discoverLocked(ctx, binary)
}

func (c *VSTestClient) discoverLocked(ctx context.Context, binary string) ([]domain.DiscoveredTest, error) {
	cmd := exec.CommandContext(ctx, c.cfg.DotnetPath, "vstest", binary, "--ListTests")
	out, err := cmd.Output()
	if err != nil {
		if isToolchainMissing(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, c.cfg.DotnetPath)
		}
		return nil, fmt.Errorf("vstest discovery for %s: %w", binary, err)
	}

	names := ParseTestList(bytes.NewReader(out))
	tests := make([]domain.DiscoveredTest, 0, len(names))
	for _, name := range names {
		tests = append(tests, domain.DiscoveredTest{
			ID:          name,
			FullName:    name,
			DisplayName: name,
			Binary:      binary,
			Protocol:    domain.ProtocolVSTest,
		})
	}
	return tests, nil
}

// Run executes the requested tests in one console session. The console
// resolves its own test-case handles from a fresh discovery, so the
// requested identifiers are first narrowed against the binary's current
// test list before filtering.
func (c *VSTestClient) Run(ctx context.Context, binary string, items []domain.RunItem, results chan<- domain.TestRunResult) error {
	if err := acquireVSTestGate(ctx); err != nil {
		return err
	}
	defer releaseVSTestGate()

	discovered, err := c.discoverLocked(ctx, binary)
	if err != nil {
		return err
	}

	requested := make(map[string]bool, len(items))
	for _, it := range items {
		requested[it.ID] = true
	}
	var names []string
	for _, d := range discovered {
		if requested[d.ID] {
			names = append(names, d.FullName)
		}
	}
	if len(names) == 0 {
		// The binary no longer exposes any of the requested tests;
		// the orchestrator will mark them as unreported.
		return nil
	}

	cmd := exec.CommandContext(ctx, c.cfg.DotnetPath, "vstest", binary,
		"--Tests:"+strings.Join(names, ","),
		"--logger:console;verbosity=normal",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		if isToolchainMissing(err) {
			return fmt.Errorf("%w: %s", ErrUnavailable, c.cfg.DotnetPath)
		}
		return fmt.Errorf("vstest run for %s: %w", binary, err)
	}

	parser := newVSTestRunParser()
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

	// A non-zero exit with reported results just means failing tests.
	if err := cmd.Wait(); err != nil && reported == 0 {
		return fmt.Errorf("vstest run for %s: %w", binary, err)
	}
	return nil
}

func send(ctx context.Context, results chan<- domain.TestRunResult, res domain.TestRunResult) bool {
	select {
	case results <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func isToolchainMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
