package view

import (
	"testing"

	"lazydotnet/internal/domain"
	"lazydotnet/internal/tree"
)

func buildModel(t *testing.T) (*Model, map[string]*domain.TestNode) {
	t.Helper()
	root := tree.Build([]domain.DiscoveredTest{
		{ID: "N.C.T1", FullName: "N.C.T1", Binary: "/bin/T.dll"},
		{ID: "N.C.T2", FullName: "N.C.T2", Binary: "/bin/T.dll"},
		{ID: "N.C.T3", FullName: "N.C.T3", Binary: "/bin/T.dll"},
	})
	m := NewModel()
	m.SetTree(root)

	leaves := make(map[string]*domain.TestNode)
	for _, leaf := range root.Leaves() {
		leaves[leaf.FullName] = leaf
	}
	return m, leaves
}

func names(nodes []*domain.TestNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestModel_AllFilterShowsEverything(t *testing.T) {
	m, _ := buildModel(t)

	visible := m.VisibleNodes()
	// One compacted container plus three leaves.
	if len(visible) != 4 {
		t.Fatalf("expected 4 visible rows, got %d: %v", len(visible), names(visible))
	}
	if visible[0].Name != "N.C" {
		t.Errorf("expected container first, got %q", visible[0].Name)
	}
}

func TestModel_FailedFilterHidesPassedLeaves(t *testing.T) {
	m, leaves := buildModel(t)
	leaves["N.C.T1"].SetStatus(domain.StatusPassed)
	leaves["N.C.T2"].SetStatus(domain.StatusPassed)
	leaves["N.C.T3"].SetStatus(domain.StatusFailed)
	leaves["N.C.T3"].RecomputeAncestors()

	m.SetFilter(FilterFailed)
	visible := m.VisibleNodes()

	if len(visible) != 2 {
		t.Fatalf("expected container + failed leaf, got %v", names(visible))
	}
	if !visible[0].IsContainer || visible[1].FullName != "N.C.T3" {
		t.Errorf("unexpected rows: %v", names(visible))
	}
}

func TestModel_FilterHidesContainersOffTheMatchingPath(t *testing.T) {
	root := tree.Build([]domain.DiscoveredTest{
		{ID: "A.T1", FullName: "A.T1", Binary: "/bin/T.dll"},
		{ID: "B.T2", FullName: "B.T2", Binary: "/bin/T.dll"},
	})
	m := NewModel()
	m.SetTree(root)

	for _, leaf := range root.Leaves() {
		if leaf.FullName == "A.T1" {
			leaf.SetStatus(domain.StatusFailed)
		} else {
			leaf.SetStatus(domain.StatusPassed)
		}
		leaf.RecomputeAncestors()
	}

	m.SetFilter(FilterFailed)
	for _, row := range m.VisibleNodes() {
		if row.Name == "B" || row.FullName == "B.T2" {
			t.Errorf("container off the failed path should be hidden, saw %q", row.Name)
		}
	}
}

func TestModel_CollapsedContainerHidesChildren(t *testing.T) {
	m, _ := buildModel(t)
	container := m.Root().Children[0]

	m.ToggleExpand(container)
	visible := m.VisibleNodes()
	if len(visible) != 1 {
		t.Fatalf("expected only the collapsed container, got %v", names(visible))
	}

	m.ToggleExpand(container)
	if len(m.VisibleNodes()) != 4 {
		t.Error("expected children back after re-expanding")
	}
}

func TestModel_RecomputePicksUpStatusChanges(t *testing.T) {
	m, leaves := buildModel(t)
	m.SetFilter(FilterRunning)

	if len(m.VisibleNodes()) != 0 {
		t.Fatal("nothing should match Running yet")
	}

	leaves["N.C.T2"].SetStatus(domain.StatusRunning)
	leaves["N.C.T2"].RecomputeAncestors()
	m.Recompute()

	visible := m.VisibleNodes()
	if len(visible) != 2 {
		t.Fatalf("expected container + running leaf, got %v", names(visible))
	}
}

func TestModel_Window(t *testing.T) {
	m, _ := buildModel(t)

	window := m.Window(1, 2)
	if len(window) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(window))
	}
	if window[0].FullName != "N.C.T1" {
		t.Errorf("unexpected window start: %q", window[0].FullName)
	}

	if got := m.Window(10, 2); got != nil {
		t.Errorf("out-of-range window should be empty, got %v", names(got))
	}
	if got := m.Window(3, 10); len(got) != 1 {
		t.Errorf("expected clamped window of 1, got %d", len(got))
	}
}

func TestFilter_Cycle(t *testing.T) {
	f := FilterAll
	order := []Filter{FilterPassed, FilterFailed, FilterRunning, FilterAll}
	for _, expected := range order {
		f = f.Next()
		if f != expected {
			t.Fatalf("expected %v, got %v", expected, f)
		}
	}
}
