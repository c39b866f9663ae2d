package ui

import (
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"lazydotnet/internal/domain"
)

// ProgressBar renders headless run progress from settled leaf tallies.
// Update is safe to call from the orchestrator's notification callback,
// which fires from more than one goroutine.
type ProgressBar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar sized to the requested test count.
func NewProgressBar(total int) *ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describeProgress(0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("■"),
			SaucerHead:    color.GreenString("■"),
			SaucerPadding: "·",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Update advances the bar to the number of settled tests.
func (p *ProgressBar) Update(passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Set(passed + failed)
	p.bar.Describe(describeProgress(passed, failed))
}

// Finish clears the bar so the summary that follows starts on a clean line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Finish()
}

func describeProgress(passed, failed int) string {
	return color.GreenString("%s %d", StatusGlyph(domain.StatusPassed), passed) +
		" " +
		color.RedString("%s %d", StatusGlyph(domain.StatusFailed), failed)
}
