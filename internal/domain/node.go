package domain

import (
	"strings"
	"sync"
	"time"
)

// Status is the lifecycle state of a test node.
type Status int

const (
	StatusNone Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
)

// String returns the status name used in the UI and the filter bar.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusPassed:
		return "Passed"
	case StatusFailed:
		return "Failed"
	}
	return "None"
}

// TestNode is one entity in the test tree: either a container (namespace,
// class, parameterized method) or a leaf test case. The tree is rebuilt
// wholesale on every discovery cycle; run results mutate leaves in place.
//
// Structural fields are written only while the tree is being built and are
// read-only afterwards. Result fields (status, duration, error, output) are
// written by background run tasks while the view reads them, so they are
// guarded by the node's own mutex.
type TestNode struct {
	Name     string // display segment, e.g. "Class" or "(1.2.3)"
	FullName string // fully-qualified name including any argument list
	ID       string // stable identifier, leaves only

	Parent   *TestNode   // back-reference, never used for ownership
	Children []*TestNode // owned, ordered

	IsContainer     bool
	IsTest          bool
	IsParameterized bool // container grouping the cases of one test method

	Expanded  bool
	Depth     int
	TestCount int // leaves in this subtree

	Binary     string
	Protocol   Protocol
	SourceFile string
	SourceLine int

	mu       sync.Mutex
	status   Status
	duration time.Duration
	errText  string
	output   []string
}

// Status returns the node's current status.
func (n *TestNode) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// SetStatus overwrites the node's status. Containers should only be set
// through Recompute except for the initial bulk mark-running.
func (n *TestNode) SetStatus(s Status) {
	n.mu.Lock()
	n.status = s
	n.mu.Unlock()
}

// Duration returns the last recorded run duration.
func (n *TestNode) Duration() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.duration
}

// ErrorText returns the last recorded error message, if any.
func (n *TestNode) ErrorText() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.errText
}

// ApplyResult records the outcome of a run on a leaf.
func (n *TestNode) ApplyResult(res TestRunResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if res.Passed() {
		n.status = StatusPassed
	} else {
		n.status = StatusFailed
	}
	n.duration = res.Duration
	n.errText = res.ErrorMessage
	if res.StackTrace != "" {
		if n.errText != "" {
			n.errText += "\n"
		}
		n.errText += res.StackTrace
	}
	n.output = nil
	if res.Output != "" {
		n.output = strings.Split(strings.TrimRight(res.Output, "\n"), "\n")
	}
}

// Fail marks a leaf failed with the given message, typically when a runner
// crashed or never reported a result for it.
func (n *TestNode) Fail(msg string) {
	n.mu.Lock()
	n.status = StatusFailed
	n.errText = msg
	n.mu.Unlock()
}

// AppendOutput adds captured output lines while a run is in flight.
func (n *TestNode) AppendOutput(lines ...string) {
	n.mu.Lock()
	n.output = append(n.output, lines...)
	n.mu.Unlock()
}

// OutputSnapshot returns a copy of the captured output lines, safe to read
// while a background run keeps appending.
func (n *TestNode) OutputSnapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.output))
	copy(out, n.output)
	return out
}

// Recompute derives a container's status from its immediate children:
// any Running child wins, then any Failed, then all Passed; anything else
// leaves the container at None.
func (n *TestNode) Recompute() {
	if !n.IsContainer || len(n.Children) == 0 {
		return
	}
	anyFailed := false
	allPassed := true
	derived := StatusNone
	for _, c := range n.Children {
		switch c.Status() {
		case StatusRunning:
			n.SetStatus(StatusRunning)
			return
		case StatusFailed:
			anyFailed = true
			allPassed = false
		case StatusNone:
			allPassed = false
		}
	}
	if anyFailed {
		derived = StatusFailed
	} else if allPassed {
		derived = StatusPassed
	}
	n.SetStatus(derived)
}

// RecomputeAncestors re-derives status from this node up to the root.
func (n *TestNode) RecomputeAncestors() {
	for p := n.Parent; p != nil; p = p.Parent {
		p.Recompute()
	}
}

// Leaves returns every descendant leaf, including the node itself if it is
// one, in tree order.
func (n *TestNode) Leaves() []*TestNode {
	if n.IsTest {
		return []*TestNode{n}
	}
	var out []*TestNode
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// MethodName returns the bare method segment of a fully-qualified name with
// any argument list stripped, e.g. "N.C.T(1)" yields "T".
func MethodName(fullName string) string {
	name := StripArgs(fullName)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// StripArgs removes a trailing parenthesized argument list from a name.
func StripArgs(name string) string {
	if i := strings.Index(name, "("); i > 0 {
		return name[:i]
	}
	return name
}
