package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"lazydotnet/internal/domain"
	"lazydotnet/internal/probe"
	"lazydotnet/internal/protocol"
)

// Resolver locates project descriptors for a target.
type Resolver interface {
	Resolve(target string) ([]string, error)
}

// Prober classifies a project descriptor.
type Prober interface {
	Probe(ctx context.Context, projectPath string) probe.Result
}

// Clients resolves the discovery client owning a protocol.
type Clients interface {
	For(p domain.Protocol) protocol.Client
}

// Orchestrator resolves a workspace target to its test projects and
// enumerates the tests their compiled binaries expose. VSTest binaries are
// discovered one at a time behind the client's process-wide gate; testing
// platform binaries are discovered concurrently. Failures local to one
// project or binary degrade, they never abort the batch.
type Orchestrator struct {
	resolver Resolver
	prober   Prober
	clients  Clients

	// warnf is swapped out in tests
	warnf func(format string, args ...interface{})
}

// NewOrchestrator creates a new discovery Orchestrator
func NewOrchestrator(resolver Resolver, prober Prober, clients Clients) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		prober:   prober,
		clients:  clients,
		warnf: func(format string, args ...interface{}) {
			fmt.Fprintln(os.Stderr, color.YellowString(format, args...))
		},
	}
}

// batch is one binary's share of a discovery cycle
type batch struct {
	binary   string
	protocol domain.Protocol
	tests    []domain.DiscoveredTest
	err      error
}

// Discover enumerates every test reachable from the target, which may be a
// workspace root, a single project, or a solution file. A cancelled call
// drops its partial output and returns the context error.
func (o *Orchestrator) Discover(ctx context.Context, target string) ([]domain.DiscoveredTest, error) {
	projects, err := o.resolver.Resolve(target)
	if err != nil {
		return nil, err
	}

	var vstestBins, mtpBins []string
	seen := make(map[string]bool)
	for _, proj := range projects {
		if seen[proj] {
			continue
		}
		seen[proj] = true

		res := o.prober.Probe(ctx, proj)
		if !res.IsTestProject || res.BinaryPath == "" {
			continue
		}
		if res.Protocol == domain.ProtocolMTP {
			mtpBins = append(mtpBins, res.BinaryPath)
		} else {
			vstestBins = append(vstestBins, res.BinaryPath)
		}
	}

	pending := len(vstestBins) + len(mtpBins)
	// Buffered to every expected batch so producers never block after an
	// aborted collect.
	results := make(chan batch, pending)

	// One task walks the vstest binaries in order; the console session is
	// exclusive anyway, so there is nothing to gain from more fan-out.
	if len(vstestBins) > 0 {
		go func() {
			client := o.clients.For(domain.ProtocolVSTest)
			for _, bin := range vstestBins {
				tests, err := client.Discover(ctx, bin)
				results <- batch{binary: bin, protocol: domain.ProtocolVSTest, tests: tests, err: err}
			}
		}()
	}
	for _, bin := range mtpBins {
		go func(bin string) {
			client := o.clients.For(domain.ProtocolMTP)
			tests, err := client.Discover(ctx, bin)
			results <- batch{binary: bin, protocol: domain.ProtocolMTP, tests: tests, err: err}
		}(bin)
	}

	var merged []domain.DiscoveredTest
	byID := make(map[string]bool)
	for i := 0; i < pending; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			// Partially discovered tests from an aborted call are dropped.
			return nil, ctx.Err()
		case b := <-results:
			if b.err != nil {
				if errors.Is(b.err, context.Canceled) {
					return nil, b.err
				}
				if errors.Is(b.err, protocol.ErrUnavailable) {
					o.warnf("%s runner unavailable, skipping %s", b.protocol, b.binary)
				} else {
					o.warnf("discovery failed for %s: %v", b.binary, b.err)
				}
				continue
			}
			for _, t := range b.tests {
				if byID[t.ID] {
					continue
				}
				byID[t.ID] = true
				merged = append(merged, t)
			}
		}
	}
	return merged, nil
}
