package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
)

// Formatter formats and displays output for the headless commands
type Formatter struct {
	config *config.Config
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg}
}

// PrintSummary displays the outcome of a headless run
func (f *Formatter) PrintSummary(report *domain.RunReport) {
	meta := report.Meta

	fmt.Println()
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║                    Test Execution Statistics                  ║")
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Printf("  %-16s ", "Total tests")
	color.White("%d", meta.TotalTests)
	fmt.Printf("  %-16s ", "Passed")
	color.Green("%d", meta.PassedTests)
	fmt.Printf("  %-16s ", "Failed")
	color.Red("%d", meta.FailedTests)
	fmt.Printf("  %-16s ", "Duration")
	color.White("%.2fs", meta.DurationSeconds)

	fmt.Println()
	if meta.FailedTests == 0 {
		color.Green("✓ All tests passed!")
		return
	}
	color.Red("✗ %d test(s) failed", meta.FailedTests)
	fmt.Println()
	for _, failure := range report.Failures {
		color.Red("  ✗ %s", failure.FullName)
		if failure.ErrorMessage != "" {
			firstLine := strings.SplitN(failure.ErrorMessage, "\n", 2)[0]
			fmt.Printf("      %s\n", firstLine)
		}
	}
}

// PrintTree displays the discovered test tree for the list command
func (f *Formatter) PrintTree(root *domain.TestNode) {
	if root == nil || root.TestCount == 0 {
		color.Yellow("No tests discovered")
		return
	}
	color.Cyan("Discovered %d tests:", root.TestCount)
	fmt.Println()
	for _, c := range root.Children {
		f.printNode(c)
	}
}

func (f *Formatter) printNode(n *domain.TestNode) {
	indent := strings.Repeat("  ", n.Depth)
	if n.IsContainer {
		label := n.Name
		if n.IsParameterized {
			label += " (parameterized)"
		}
		color.Cyan("%s%s [%d]", indent, label, n.TestCount)
		for _, c := range n.Children {
			f.printNode(c)
		}
		return
	}
	fmt.Printf("%s%s\n", indent, n.Name)
}

// StatusGlyph returns the dashboard marker for a node status
func StatusGlyph(s domain.Status) string {
	switch s {
	case domain.StatusRunning:
		return "◐"
	case domain.StatusPassed:
		return "✓"
	case domain.StatusFailed:
		return "✗"
	}
	return "·"
}

// StatusColorTag returns the tview color tag for a node status
func StatusColorTag(s domain.Status) string {
	switch s {
	case domain.StatusRunning:
		return "[yellow]"
	case domain.StatusPassed:
		return "[green]"
	case domain.StatusFailed:
		return "[red]"
	}
	return "[white]"
}
