package run

import (
	"testing"

	"lazydotnet/internal/domain"
)

func runningLeaf(id, fullName string) *domain.TestNode {
	leaf := &domain.TestNode{ID: id, FullName: fullName, Name: domain.MethodName(fullName), IsTest: true}
	leaf.SetStatus(domain.StatusRunning)
	return leaf
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name    string
		display string
		leaf    *domain.TestNode
		matches bool
	}{
		{
			name:    "display starts with method name",
			display: "Parses(version: 1.2.3)",
			leaf:    runningLeaf("uid-1", "N.C.Parses"),
			matches: true,
		},
		{
			name:    "display contains dotted method call",
			display: "executed N.C.Parses(1) successfully",
			leaf:    runningLeaf("uid-1", "N.C.Parses(1)"),
			matches: true,
		},
		{
			name:    "display contains stripped full name",
			display: "case N.C.Parses finished",
			leaf:    runningLeaf("uid-1", `N.C.Parses("1.2.3")`),
			matches: true,
		},
		{
			name:    "unrelated display",
			display: "Divides(1, 0)",
			leaf:    runningLeaf("uid-1", "N.C.Parses"),
			matches: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fuzzyMatch(tt.display, []*domain.TestNode{tt.leaf})
			if (len(got) == 1) != tt.matches {
				t.Errorf("fuzzyMatch(%q) matched=%v, expected %v", tt.display, len(got) == 1, tt.matches)
			}
		})
	}
}

func TestFuzzyMatch_OnlyRunningLeavesEligible(t *testing.T) {
	leaf := runningLeaf("uid-1", "N.C.Parses")
	leaf.SetStatus(domain.StatusPassed)

	if got := fuzzyMatch("Parses(1)", []*domain.TestNode{leaf}); len(got) != 0 {
		t.Errorf("settled leaf should not be fuzzy-matched, got %d matches", len(got))
	}
}

func TestMatchResult_ExactWinsOverFuzzy(t *testing.T) {
	exact := runningLeaf("N.C.TestMore", "N.C.TestMore")
	other := runningLeaf("N.C.Test", "N.C.Test")
	requested := []*domain.TestNode{exact, other}
	byID := map[string][]*domain.TestNode{
		exact.ID: {exact},
		other.ID: {other},
	}

	res := domain.TestRunResult{
		ID:          "N.C.TestMore",
		DisplayName: "TestMore(1)", // would also fuzzy-match "Test" by prefix
		Outcome:     domain.OutcomePassed,
	}
	got := matchResult(res, byID, requested)
	if len(got) != 1 || got[0] != exact {
		t.Fatalf("expected only the exact leaf, got %d matches", len(got))
	}
}

func TestMatchResult_FallsBackToFuzzy(t *testing.T) {
	leaf := runningLeaf("uid-1", "N.C.T")
	byID := map[string][]*domain.TestNode{leaf.ID: {leaf}}

	res := domain.TestRunResult{
		ID:          "runtime-uid-99",
		DisplayName: "T(case 1)",
		Outcome:     domain.OutcomeFailed,
	}
	got := matchResult(res, byID, []*domain.TestNode{leaf})
	if len(got) != 1 || got[0] != leaf {
		t.Fatalf("expected fuzzy fallback to find the leaf, got %d matches", len(got))
	}
}

func TestMatchResult_NoDisplayNameNoFallback(t *testing.T) {
	leaf := runningLeaf("uid-1", "N.C.T")
	res := domain.TestRunResult{ID: "unknown", Outcome: domain.OutcomePassed}

	if got := matchResult(res, map[string][]*domain.TestNode{}, []*domain.TestNode{leaf}); len(got) != 0 {
		t.Errorf("expected no match without a display name, got %d", len(got))
	}
}
