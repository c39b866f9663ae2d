package discovery

import (
	"path/filepath"
	"strings"

	"lazydotnet/internal/domain"
)

// Filter filters discovered tests by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters discovered tests by full-name pattern using wildcard
// matching. Supports patterns like "*CheckoutTests*" or "Orders.*Refund*"
func (f *Filter) FilterByName(tests []domain.DiscoveredTest, pattern string) []domain.DiscoveredTest {
	if pattern == "" {
		return tests
	}

	var filtered []domain.DiscoveredTest
	for _, test := range tests {
		if matchesPattern(test.FullName, pattern) || matchesPattern(test.DisplayName, pattern) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

func matchesPattern(name, pattern string) bool {
	// filepath.Match covers exact wildcard shapes like "Orders.?.Refund"
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// Patterns like "*Payment*" fall back to ordered substring matching
	if strings.Contains(pattern, "*") {
		parts := strings.Split(pattern, "*")
		rest := name
		for _, part := range parts {
			if part == "" {
				continue
			}
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
		}
		return strings.ContainsFunc(pattern, func(r rune) bool { return r != '*' })
	}

	// No wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}
