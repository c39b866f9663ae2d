package ui

import "lazydotnet/internal/domain"

// Viewer displays a run report in an interactive TUI
type Viewer interface {
	View(report *domain.RunReport) error
}
