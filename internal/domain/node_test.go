package domain

import (
	"testing"
	"time"
)

func makeContainer(name string, children ...*TestNode) *TestNode {
	n := &TestNode{Name: name, FullName: name, IsContainer: true, Children: children}
	for _, c := range children {
		c.Parent = n
	}
	return n
}

func makeLeaf(name string) *TestNode {
	return &TestNode{Name: name, FullName: name, ID: name, IsTest: true}
}

func TestTestNode_Recompute(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"all none", []Status{StatusNone, StatusNone}, StatusNone},
		{"any running wins", []Status{StatusPassed, StatusRunning, StatusFailed}, StatusRunning},
		{"any failed", []Status{StatusPassed, StatusFailed}, StatusFailed},
		{"all passed", []Status{StatusPassed, StatusPassed}, StatusPassed},
		{"passed with none stays none", []Status{StatusPassed, StatusNone}, StatusNone},
		{"failed with none is failed", []Status{StatusFailed, StatusNone}, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var leaves []*TestNode
			for i, s := range tt.statuses {
				leaf := makeLeaf(string(rune('a' + i)))
				leaf.SetStatus(s)
				leaves = append(leaves, leaf)
			}
			c := makeContainer("c", leaves...)
			c.Recompute()
			if got := c.Status(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTestNode_RecomputeAncestors(t *testing.T) {
	leaf := makeLeaf("t")
	inner := makeContainer("inner", leaf)
	root := makeContainer("root", inner)

	leaf.SetStatus(StatusRunning)
	leaf.RecomputeAncestors()

	if inner.Status() != StatusRunning {
		t.Errorf("inner should be Running, got %v", inner.Status())
	}
	if root.Status() != StatusRunning {
		t.Errorf("root should be Running, got %v", root.Status())
	}

	leaf.ApplyResult(TestRunResult{Outcome: OutcomePassed, Duration: 5 * time.Millisecond})
	leaf.RecomputeAncestors()

	if root.Status() != StatusPassed {
		t.Errorf("root should be Passed, got %v", root.Status())
	}
}

func TestTestNode_ApplyResult(t *testing.T) {
	leaf := makeLeaf("t")
	leaf.ApplyResult(TestRunResult{
		Outcome:      OutcomeFailed,
		Duration:     time.Second,
		ErrorMessage: "assertion failed",
		StackTrace:   "at Tests.T()",
		Output:       "line one\nline two\n",
	})

	if leaf.Status() != StatusFailed {
		t.Errorf("expected Failed, got %v", leaf.Status())
	}
	if leaf.Duration() != time.Second {
		t.Errorf("expected 1s duration, got %v", leaf.Duration())
	}
	if got := leaf.ErrorText(); got != "assertion failed\nat Tests.T()" {
		t.Errorf("unexpected error text: %q", got)
	}
	out := leaf.OutputSnapshot()
	if len(out) != 2 || out[0] != "line one" || out[1] != "line two" {
		t.Errorf("unexpected output snapshot: %v", out)
	}
}

func TestMethodName(t *testing.T) {
	tests := []struct {
		fullName string
		expected string
	}{
		{"Namespace.Class.Method", "Method"},
		{"Namespace.Class.Method(1)", "Method"},
		{`N.C.T("1.2.3")`, "T"},
		{"Method", "Method"},
	}
	for _, tt := range tests {
		if got := MethodName(tt.fullName); got != tt.expected {
			t.Errorf("MethodName(%q) = %q, expected %q", tt.fullName, got, tt.expected)
		}
	}
}
