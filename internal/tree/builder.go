package tree

import (
	"sort"
	"strings"

	"lazydotnet/internal/domain"
)

// Build turns a deduplicated discovery list into a navigable tree:
// containers for every namespace/class segment, parameterized cases grouped
// under their method, single-child container chains compacted, children
// sorted, depth and aggregate counts recomputed. The previous tree is
// always replaced wholesale, never patched.
func Build(tests []domain.DiscoveredTest) *domain.TestNode {
	root := &domain.TestNode{
		IsContainer: true,
		Expanded:    true,
	}

	for _, t := range tests {
		insert(root, t)
	}

	for compactPass(root) {
	}
	sortTree(root)
	finalize(root, 0)
	return root
}

// SplitQualifiedName splits a fully-qualified name on dots while tracking
// parenthesis depth, so argument text containing literal dots (version
// strings, URLs) is never split.
func SplitQualifiedName(fullName string) []string {
	var segments []string
	depth := 0
	start := 0
	for i, r := range fullName {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				segments = append(segments, fullName[start:i])
				start = i + 1
			}
		}
	}
	segments = append(segments, fullName[start:])
	return segments
}

func insert(root *domain.TestNode, t domain.DiscoveredTest) {
	segments := SplitQualifiedName(t.FullName)
	last := segments[len(segments)-1]

	parent := root
	prefix := ""
	for _, seg := range segments[:len(segments)-1] {
		if prefix != "" {
			prefix += "."
		}
		prefix += seg
		parent = getOrCreateContainer(parent, seg, prefix)
		adoptSource(parent, t)
	}

	argIdx := strings.Index(last, "(")
	hasArgs := argIdx > 0 && strings.HasSuffix(last, ")")

	if hasArgs || isCaseLabel(t.DisplayName, t.FullName, domain.StripArgs(last)) {
		base := domain.StripArgs(last)
		holderFull := base
		if prefix != "" {
			holderFull = prefix + "." + base
		}
		holder := getOrCreateParamContainer(parent, base, holderFull)
		adoptSource(holder, t)

		leafName := t.DisplayName
		if hasArgs {
			leafName = last[argIdx:]
		}
		addLeaf(holder, leafName, t)
		return
	}

	addLeaf(parent, last, t)
}

// isCaseLabel reports whether a framework-reported display name diverges
// from the identifier in the way dynamically generated case labels do:
// a non-trivial suffix of the full name or an extension of the method name.
func isCaseLabel(display, fullName, method string) bool {
	if display == "" || display == fullName || display == method {
		return false
	}
	if strings.HasSuffix(fullName, display) {
		return true
	}
	return strings.HasPrefix(display, method) && len(display) > len(method)
}

func getOrCreateContainer(parent *domain.TestNode, name, fullName string) *domain.TestNode {
	for _, c := range parent.Children {
		if c.IsContainer && !c.IsParameterized && c.Name == name {
			return c
		}
	}
	node := &domain.TestNode{
		Name:        name,
		FullName:    fullName,
		IsContainer: true,
		Expanded:    true,
		Parent:      parent,
	}
	parent.Children = append(parent.Children, node)
	return node
}

func getOrCreateParamContainer(parent *domain.TestNode, name, fullName string) *domain.TestNode {
	for _, c := range parent.Children {
		if c.IsParameterized && c.Name == name {
			return c
		}
	}
	// Parameterized groups start collapsed so a large theory does not
	// flood the tree.
	node := &domain.TestNode{
		Name:            name,
		FullName:        fullName,
		IsContainer:     true,
		IsParameterized: true,
		Expanded:        false,
		Parent:          parent,
	}
	parent.Children = append(parent.Children, node)
	return node
}

func addLeaf(parent *domain.TestNode, name string, t domain.DiscoveredTest) {
	leaf := &domain.TestNode{
		Name:       name,
		FullName:   t.FullName,
		ID:         t.ID,
		IsTest:     true,
		Parent:     parent,
		Binary:     t.Binary,
		Protocol:   t.Protocol,
		SourceFile: t.SourceFile,
		SourceLine: t.SourceLine,
	}
	parent.Children = append(parent.Children, leaf)
}

// adoptSource attaches binary/source metadata to a container lazily, first
// writer wins, so a container has a representative location even before any
// leaf sets one explicitly.
func adoptSource(n *domain.TestNode, t domain.DiscoveredTest) {
	if n.Binary == "" {
		n.Binary = t.Binary
		n.Protocol = t.Protocol
	}
	if n.SourceFile == "" && t.SourceFile != "" {
		n.SourceFile = t.SourceFile
		n.SourceLine = t.SourceLine
	}
}

// compactPass collapses one round of single-child container chains below
// the root: a container whose only child is itself a plain container merges
// with it, names joined by ".". Returns true when anything changed.
func compactPass(root *domain.TestNode) bool {
	changed := false
	var walk func(n *domain.TestNode)
	walk = func(n *domain.TestNode) {
		for _, c := range n.Children {
			for canCompact(c) {
				child := c.Children[0]
				c.Name = c.Name + "." + child.Name
				c.FullName = child.FullName
				c.Children = child.Children
				for _, gc := range c.Children {
					gc.Parent = c
				}
				adoptSourceFrom(c, child)
				changed = true
			}
			walk(c)
		}
	}
	walk(root)
	return changed
}

func canCompact(n *domain.TestNode) bool {
	if !n.IsContainer || n.IsParameterized {
		return false
	}
	if len(n.Children) != 1 {
		return false
	}
	child := n.Children[0]
	return child.IsContainer && !child.IsParameterized
}

func adoptSourceFrom(n, child *domain.TestNode) {
	if n.Binary == "" {
		n.Binary = child.Binary
		n.Protocol = child.Protocol
	}
	if n.SourceFile == "" && child.SourceFile != "" {
		n.SourceFile = child.SourceFile
		n.SourceLine = child.SourceLine
	}
}

func sortTree(n *domain.TestNode) {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
	for _, c := range n.Children {
		if c.IsContainer {
			sortTree(c)
		}
	}
}

func finalize(n *domain.TestNode, depth int) int {
	n.Depth = depth
	if n.IsTest {
		n.TestCount = 1
		return 1
	}
	total := 0
	for _, c := range n.Children {
		c.Parent = n
		total += finalize(c, depth+1)
	}
	n.TestCount = total
	return total
}
