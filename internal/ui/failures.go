package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
	"lazydotnet/internal/storage"
)

// FailureViewer displays the last run's failures in an interactive TUI
type FailureViewer struct {
	config  *config.Config
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(cfg *config.Config, st storage.Storage) *FailureViewer {
	return &FailureViewer{
		config:  cfg,
		storage: st,
	}
}

// View displays the report's failures in an interactive TUI
func (fv *FailureViewer) View(report *domain.RunReport) error {
	if len(report.Failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	resolved := make(map[int]bool)
	for i, failure := range report.Failures {
		if failure.Resolved {
			resolved[i] = true
		}
	}

	saveResolved := func() error {
		for i := range report.Failures {
			report.Failures[i].Resolved = resolved[i]
		}
		return fv.storage.SaveReport(report)
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	itemText := func(index int) string {
		name := report.Failures[index].TestName
		if name == "" {
			name = fmt.Sprintf("Test %d", index+1)
		}
		if resolved[index] {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
	}

	for i := range report.Failures {
		list.AddItem(itemText(i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsView, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	countUnresolved := func() int {
		count := 0
		for i := range report.Failures {
			if !resolved[i] {
				count++
			}
		}
		return count
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
			len(report.Failures), countUnresolved(),
		))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(report.Failures) {
			failure := report.Failures[index]
			statsView.SetText(fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]\n[cyan]binary:[white] %s", failure.FullName, failure.Binary))
			detailsView.SetText(formatFailure(failure))
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(report.Failures) {
					resolved[index] = !resolved[index]
					list.SetItemText(index, itemText(index), "")
					updateHeader()
					updateDetails()
					_ = saveResolved()
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatFailure formats one failure for the details pane using tview color
// tags ([red], [cyan], ...).
func formatFailure(failure domain.TestFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", failure.TestName)
	fmt.Fprintf(&b, "[cyan]Full name: %s[white]\n\n", failure.FullName)

	if failure.ErrorMessage != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.ErrorMessage))
	}

	if failure.StackTrace != "" {
		lines := strings.Split(failure.StackTrace, "\n")
		fmt.Fprintf(&b, "[yellow]Stack Trace:[white]\n")
		for i, line := range lines {
			if i >= 10 {
				fmt.Fprintf(&b, "  [gray]... and %d more lines[white]\n", len(lines)-10)
				break
			}
			fmt.Fprintf(&b, "  %s\n", tview.Escape(line))
		}
		b.WriteString("\n")
	}

	if failure.Output != "" {
		fmt.Fprintf(&b, "[yellow]Output:[white]\n%s\n", tview.Escape(failure.Output))
	}

	return b.String()
}
