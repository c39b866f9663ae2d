package view

import (
	"sync"

	"lazydotnet/internal/domain"
)

// Filter selects which leaf statuses are visible.
type Filter int

const (
	FilterAll Filter = iota
	FilterPassed
	FilterFailed
	FilterRunning
)

// String returns the filter label for the status bar.
func (f Filter) String() string {
	switch f {
	case FilterPassed:
		return "Passed"
	case FilterFailed:
		return "Failed"
	case FilterRunning:
		return "Running"
	}
	return "All"
}

// Next cycles to the following filter, wrapping back to All.
func (f Filter) Next() Filter {
	if f == FilterRunning {
		return FilterAll
	}
	return f + 1
}

func (f Filter) matchesLeaf(leaf *domain.TestNode) bool {
	switch f {
	case FilterPassed:
		return leaf.Status() == domain.StatusPassed
	case FilterFailed:
		return leaf.Status() == domain.StatusFailed
	case FilterRunning:
		return leaf.Status() == domain.StatusRunning
	}
	return true
}

// Model holds the retained tree and derives the currently visible rows from
// the status filter and each node's expansion flag. Visibility is recomputed
// by a full depth-first walk whenever the filter, the tree, or any status
// changes; trees are small enough that a full walk beats incremental
// diffing for correctness.
type Model struct {
	mu      sync.RWMutex
	root    *domain.TestNode
	filter  Filter
	visible []*domain.TestNode
}

// NewModel creates an empty Model with the All filter.
func NewModel() *Model {
	return &Model{}
}

// SetTree replaces the retained tree wholesale and recomputes visibility.
// The old tree is simply dropped.
func (m *Model) SetTree(root *domain.TestNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
	m.recompute()
}

// Root returns the retained tree, which may be nil before first discovery.
func (m *Model) Root() *domain.TestNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// Filter returns the active status filter.
func (m *Model) Filter() Filter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

// SetFilter changes the status filter and recomputes visibility.
func (m *Model) SetFilter(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
	m.recompute()
}

// CycleFilter advances to the next filter and recomputes visibility.
func (m *Model) CycleFilter() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = m.filter.Next()
	m.recompute()
	return m.filter
}

// ToggleExpand flips a container's expansion flag and recomputes visibility.
func (m *Model) ToggleExpand(node *domain.TestNode) {
	if node == nil || !node.IsContainer {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	node.Expanded = !node.Expanded
	m.recompute()
}

// Recompute re-derives the visible rows, picking up status changes made by
// background runs.
func (m *Model) Recompute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recompute()
}

// VisibleNodes returns a snapshot of the currently visible rows in
// depth-first order.
func (m *Model) VisibleNodes() []*domain.TestNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.TestNode, len(m.visible))
	copy(out, m.visible)
	return out
}

// Window returns the visible rows for a viewport: height rows starting at
// top, clamped to the available slice.
func (m *Model) Window(top, height int) []*domain.TestNode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if top < 0 {
		top = 0
	}
	if top >= len(m.visible) || height <= 0 {
		return nil
	}
	end := top + height
	if end > len(m.visible) {
		end = len(m.visible)
	}
	out := make([]*domain.TestNode, end-top)
	copy(out, m.visible[top:end])
	return out
}

// recompute must be called with the write lock held
func (m *Model) recompute() {
	m.visible = m.visible[:0]
	if m.root == nil {
		return
	}
	for _, c := range m.root.Children {
		m.appendVisible(c)
	}
}

func (m *Model) appendVisible(n *domain.TestNode) {
	if !m.isVisible(n) {
		return
	}
	m.visible = append(m.visible, n)
	if !n.Expanded {
		return
	}
	for _, c := range n.Children {
		m.appendVisible(c)
	}
}

// isVisible: a leaf passes when the filter accepts its status; a container
// passes when any descendant leaf does, so the ancestor path of a matching
// leaf always stays reachable.
func (m *Model) isVisible(n *domain.TestNode) bool {
	if m.filter == FilterAll {
		return true
	}
	if n.IsTest {
		return m.filter.matchesLeaf(n)
	}
	for _, leaf := range n.Leaves() {
		if m.filter.matchesLeaf(leaf) {
			return true
		}
	}
	return false
}
