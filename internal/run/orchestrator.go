package run

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"lazydotnet/internal/domain"
	"lazydotnet/internal/protocol"
)

// ClientSet resolves the client owning a protocol.
type ClientSet interface {
	For(p domain.Protocol) protocol.Client
}

// Orchestrator dispatches run requests: it partitions the requested leaves
// by (binary, protocol), fans the per-binary runs out concurrently, fans
// their streamed results into one sequence, and reconciles each result back
// onto the tree. Overlapping run requests on different subtrees are allowed;
// the active counter feeds the status line.
type Orchestrator struct {
	clients  ClientSet
	refresh  func()
	failFast bool
	active   atomic.Int32
}

// New creates a new Orchestrator. refresh is invoked whenever node state
// changed and the view should re-render; it may be nil.
func New(clients ClientSet, refresh func()) *Orchestrator {
	return &Orchestrator{clients: clients, refresh: refresh}
}

// SetRefresh swaps the refresh callback. Must be called before any run is
// dispatched.
func (o *Orchestrator) SetRefresh(refresh func()) {
	o.refresh = refresh
}

// SetFailFast makes subsequent runs stop dispatching after the first failed
// result. Must be called before any run is dispatched.
func (o *Orchestrator) SetFailFast(failFast bool) {
	o.failFast = failFast
}

// ActiveRuns reports how many run requests are currently in flight.
func (o *Orchestrator) ActiveRuns() int {
	return int(o.active.Load())
}

// RunNode runs a node's whole subtree: the node itself when it is a leaf,
// every descendant leaf otherwise.
func (o *Orchestrator) RunNode(ctx context.Context, node *domain.TestNode) error {
	return o.Run(ctx, node.Leaves())
}

// runGroup is one binary's share of a request
type runGroup struct {
	binary   string
	protocol domain.Protocol
	items    []domain.RunItem
	leaves   []*domain.TestNode
}

// Run executes a flat batch of requested leaves.
func (o *Orchestrator) Run(ctx context.Context, requested []*domain.TestNode) error {
	if len(requested) == 0 {
		return nil
	}

	o.active.Add(1)
	defer func() {
		o.active.Add(-1)
		o.notify()
	}()

	// Bulk mark-running is the only time container status is not derived.
	for _, leaf := range requested {
		leaf.SetStatus(domain.StatusRunning)
	}
	for _, leaf := range requested {
		leaf.RecomputeAncestors()
	}
	o.notify()

	byID := make(map[string][]*domain.TestNode, len(requested))
	for _, leaf := range requested {
		byID[leaf.ID] = append(byID[leaf.ID], leaf)
	}

	groups := partition(requested)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var stopped atomic.Bool

	// Fan-in: every group streams into one queue; the supervisor closes it
	// once all groups are done. A faulting group fails its own unreported
	// leaves without stopping the others.
	results := make(chan domain.TestRunResult, 64)
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for _, g := range groups {
		wg.Add(1)
		go func(g runGroup) {
			defer wg.Done()
			client := o.clients.For(g.protocol)
			if err := client.Run(runCtx, g.binary, g.items, results); err != nil {
				if stopped.Load() && errors.Is(err, context.Canceled) {
					return
				}
				for _, leaf := range g.leaves {
					if leaf.Status() == domain.StatusRunning {
						leaf.Fail("run failed: " + err.Error())
						leaf.RecomputeAncestors()
					}
				}
				o.notify()
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}(g)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		targets := matchResult(res, byID, requested)
		for _, leaf := range targets {
			leaf.ApplyResult(res)
			leaf.RecomputeAncestors()
		}
		if len(targets) > 0 {
			o.notify()
		}
		if o.failFast && res.Outcome == domain.OutcomeFailed {
			stopped.Store(true)
			cancel()
		}
	}

	// Guard against a crashed runner or a protocol bug that dropped a
	// result: whatever is still Running never got reported. After a
	// fail-fast stop the leaves that never ran go back to their idle state
	// instead.
	cleaned := false
	for _, leaf := range requested {
		if leaf.Status() == domain.StatusRunning {
			if stopped.Load() {
				leaf.SetStatus(domain.StatusNone)
			} else {
				leaf.Fail(UnreportedMessage)
			}
			leaf.RecomputeAncestors()
			cleaned = true
		}
	}
	if cleaned {
		o.notify()
	}

	errMu.Lock()
	defer errMu.Unlock()
	return firstErr
}

// partition splits the request by (binary, protocol), preserving request
// order within each group.
func partition(requested []*domain.TestNode) []runGroup {
	index := make(map[string]int)
	var groups []runGroup
	for _, leaf := range requested {
		key := leaf.Binary + "\x00" + leaf.Protocol.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, runGroup{binary: leaf.Binary, protocol: leaf.Protocol})
		}
		groups[i].items = append(groups[i].items, domain.RunItem{
			ID:          leaf.ID,
			DisplayName: leaf.Name,
			Binary:      leaf.Binary,
			Protocol:    leaf.Protocol,
		})
		groups[i].leaves = append(groups[i].leaves, leaf)
	}
	return groups
}

func (o *Orchestrator) notify() {
	if o.refresh != nil {
		o.refresh()
	}
}
