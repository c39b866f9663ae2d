package run

import (
	"strings"

	"lazydotnet/internal/domain"
)

// UnreportedMessage marks a leaf whose runner never reported a result.
const UnreportedMessage = "test did not report a result"

// matchResult finds the leaves a streamed result applies to: exact
// identifier match first, then display-name fallback. An exact match is
// never reassigned by the fallback.
func matchResult(res domain.TestRunResult, byID map[string][]*domain.TestNode, requested []*domain.TestNode) []*domain.TestNode {
	if leaves := byID[res.ID]; len(leaves) > 0 {
		return leaves
	}
	if res.DisplayName == "" {
		return nil
	}
	return fuzzyMatch(res.DisplayName, requested)
}

// fuzzyMatch pairs a run-time display name with requested leaves. Some
// frameworks only assign final case names at execution time, after discovery
// produced a generic placeholder, so the identifier on the result is unknown
// to us. A leaf is eligible only while still Running; every eligible leaf
// the name matches receives the result.
func fuzzyMatch(display string, requested []*domain.TestNode) []*domain.TestNode {
	var matched []*domain.TestNode
	for _, leaf := range requested {
		if leaf.Status() != domain.StatusRunning {
			continue
		}
		method := domain.MethodName(leaf.FullName)
		stripped := domain.StripArgs(leaf.FullName)
		if strings.HasPrefix(display, method) ||
			strings.Contains(display, "."+method+"(") ||
			strings.Contains(display, stripped) {
			matched = append(matched, leaf)
		}
	}
	return matched
}
