package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lazydotnet/internal/build"
	"lazydotnet/internal/config"
	"lazydotnet/internal/discovery"
	"lazydotnet/internal/domain"
	"lazydotnet/internal/run"
	"lazydotnet/internal/tree"
	"lazydotnet/internal/view"
)

// Dashboard is the interactive test explorer: projects and the test tree on
// the left, details on the right, a status line at the bottom. All I/O-bound
// work (discovery, running, building) happens in background tasks; the event
// loop only ever renders from in-memory state and re-renders on refresh
// signals.
type Dashboard struct {
	config     *config.Config
	discoverer *discovery.Orchestrator
	runner     *run.Orchestrator
	builder    *build.Runner
	model      *view.Model

	app      *tview.Application
	pages    *tview.Pages
	projects *tview.List
	treeList *tview.List
	details  *tview.TextView
	status   *tview.TextView

	mu             sync.Mutex
	projectPaths   []string
	visible        []*domain.TestNode
	statusMsg      string
	debounce       *time.Timer
	discoverCancel context.CancelFunc
}

// NewDashboard creates a new Dashboard. The run orchestrator's refresh
// callback must point at this dashboard's RequestRefresh before any run is
// dispatched.
func NewDashboard(cfg *config.Config, discoverer *discovery.Orchestrator, runner *run.Orchestrator, builder *build.Runner, model *view.Model) *Dashboard {
	return &Dashboard{
		config:     cfg,
		discoverer: discoverer,
		runner:     runner,
		builder:    builder,
		model:      model,
	}
}

// Run starts the event loop and blocks until the user quits.
func (d *Dashboard) Run(projectPaths []string) error {
	d.projectPaths = projectPaths
	d.app = tview.NewApplication()

	d.projects = tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	d.projects.SetBorder(true).SetTitle(" Projects ")
	d.projects.AddItem("(whole workspace)", "", 0, nil)
	for _, p := range projectPaths {
		d.projects.AddItem(shortenPath(p), "", 0, nil)
	}
	d.projects.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		d.scheduleDiscovery(d.targetForIndex(index))
	})

	d.treeList = tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	d.treeList.SetBorder(true).SetTitle(" Tests ")
	d.treeList.SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	d.treeList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		d.renderDetails()
	})

	d.details = tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true)
	d.details.SetBorder(true).SetTitle(" Details ")

	d.status = tview.NewTextView().SetDynamicColors(true)

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.projects, 0, 1, false).
		AddItem(d.treeList, 0, 3, true)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(left, 0, 1, true).
		AddItem(d.details, 0, 2, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(d.status, 1, 0, false)

	d.pages = tview.NewPages().AddPage("main", layout, true, true)

	d.treeList.SetInputCapture(d.handleTreeKey)
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == 'q' && !d.pages.HasPage("output") {
			d.app.Stop()
			return nil
		}
		if event.Key() == tcell.KeyTab {
			if d.app.GetFocus() == d.projects {
				d.app.SetFocus(d.treeList)
			} else {
				d.app.SetFocus(d.projects)
			}
			return nil
		}
		return event
	})

	// Initial discovery covers the whole workspace.
	go d.discoverNow(d.config.GetTargetPath())
	d.setStatus("discovering tests...")
	d.render()

	return d.app.SetRoot(d.pages, true).SetFocus(d.treeList).Run()
}

// RequestRefresh is the engine's push-style notification: background state
// changed and the view should re-render. Safe to call from any goroutine.
func (d *Dashboard) RequestRefresh() {
	if d.app == nil {
		return
	}
	d.app.QueueUpdateDraw(d.render)
}

func (d *Dashboard) handleTreeKey(event *tcell.EventKey) *tcell.EventKey {
	node := d.selectedNode()
	switch event.Key() {
	case tcell.KeyEnter:
		if node != nil && node.IsContainer {
			d.model.ToggleExpand(node)
			d.render()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case ' ':
			if node != nil && node.IsContainer {
				d.model.ToggleExpand(node)
				d.render()
			}
			return nil
		case 'r':
			if node != nil {
				d.runSubtree(node)
			}
			return nil
		case 'a':
			if root := d.model.Root(); root != nil {
				d.runSubtree(root)
			}
			return nil
		case 'f':
			d.model.CycleFilter()
			d.render()
			return nil
		case 'd':
			d.setStatus("discovering tests...")
			go d.discoverNow(d.currentTarget())
			return nil
		case 'b':
			d.buildSelectedProject()
			return nil
		case 'o':
			if node != nil && node.IsTest {
				d.showOutputModal(node)
			}
			return nil
		}
	}
	return event
}

// runSubtree dispatches a run for a node's subtree as a background task
// whose completion is observed, not ignored.
func (d *Dashboard) runSubtree(node *domain.TestNode) {
	go func() {
		if err := d.runner.RunNode(context.Background(), node); err != nil {
			d.setStatus(fmt.Sprintf("run finished with error: %v", err))
			d.RequestRefresh()
		}
	}()
}

func (d *Dashboard) buildSelectedProject() {
	index := d.projects.GetCurrentItem() - 1
	d.mu.Lock()
	if index < 0 || index >= len(d.projectPaths) {
		d.mu.Unlock()
		d.setStatus("select a project to build")
		return
	}
	project := d.projectPaths[index]
	d.mu.Unlock()

	d.setStatus("building " + shortenPath(project) + "...")
	go func() {
		err := d.builder.Build(context.Background(), project, func(line string) {})
		if err != nil {
			d.setStatus(fmt.Sprintf("build failed: %v", err))
		} else {
			d.setStatus("build succeeded: " + shortenPath(project))
		}
		d.RequestRefresh()
	}()
}

// scheduleDiscovery debounces project-selection changes: rapid navigation
// keeps pushing the reload out, and a newer selection cancels the in-flight
// discovery of the previous one.
func (d *Dashboard) scheduleDiscovery(target string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.debounce != nil {
		d.debounce.Stop()
	}
	if d.discoverCancel != nil {
		d.discoverCancel()
		d.discoverCancel = nil
	}
	d.debounce = time.AfterFunc(d.config.DiscoveryDebounce, func() {
		d.discoverNow(target)
	})
}

func (d *Dashboard) discoverNow(target string) {
	ctx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	if d.discoverCancel != nil {
		d.discoverCancel()
	}
	d.discoverCancel = cancel
	d.mu.Unlock()

	tests, err := d.discoverer.Discover(ctx, target)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// A superseded discovery drops its partial output silently.
			return
		}
		d.setStatus(fmt.Sprintf("discovery failed: %v", err))
		d.RequestRefresh()
		return
	}

	d.model.SetTree(tree.Build(tests))
	d.setStatus(fmt.Sprintf("%d tests discovered", len(tests)))
	d.RequestRefresh()
}

func (d *Dashboard) currentTarget() string {
	return d.targetForIndex(d.projects.GetCurrentItem())
}

func (d *Dashboard) targetForIndex(index int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index <= 0 || index > len(d.projectPaths) {
		return d.config.GetTargetPath()
	}
	return d.projectPaths[index-1]
}

func (d *Dashboard) selectedNode() *domain.TestNode {
	d.mu.Lock()
	defer d.mu.Unlock()
	index := d.treeList.GetCurrentItem()
	if index < 0 || index >= len(d.visible) {
		return nil
	}
	return d.visible[index]
}

// render rebuilds the tree rows and the status line from the model. Always
// runs on the event loop.
func (d *Dashboard) render() {
	d.model.Recompute()
	nodes := d.model.VisibleNodes()

	current := d.treeList.GetCurrentItem()
	d.treeList.Clear()
	for _, n := range nodes {
		d.treeList.AddItem(d.rowLabel(n), "", 0, nil)
	}
	if current >= d.treeList.GetItemCount() {
		current = d.treeList.GetItemCount() - 1
	}
	if current >= 0 {
		d.treeList.SetCurrentItem(current)
	}

	d.mu.Lock()
	d.visible = nodes
	msg := d.statusMsg
	d.mu.Unlock()

	active := d.runner.ActiveRuns()
	parts := []string{fmt.Sprintf("[cyan]filter:[white] %s", d.model.Filter())}
	if root := d.model.Root(); root != nil {
		parts = append(parts, fmt.Sprintf("%d tests", root.TestCount))
	}
	if active > 0 {
		parts = append(parts, fmt.Sprintf("[yellow]%d active[white]", active))
	}
	if msg != "" {
		parts = append(parts, msg)
	}
	parts = append(parts, "[gray]r run  a run all  f filter  b build  o output  q quit[white]")
	d.status.SetText(" " + strings.Join(parts, "  |  "))

	d.renderDetails()
}

func (d *Dashboard) rowLabel(n *domain.TestNode) string {
	indent := strings.Repeat("  ", n.Depth-1)
	tag := StatusColorTag(n.Status())
	glyph := StatusGlyph(n.Status())

	if n.IsContainer {
		arrow := "▸"
		if n.Expanded {
			arrow = "▾"
		}
		return fmt.Sprintf("%s%s %s%s[white] %s [gray](%d)[white]", indent, arrow, tag, glyph, tview.Escape(n.Name), n.TestCount)
	}
	label := fmt.Sprintf("%s  %s%s %s[white]", indent, tag, glyph, tview.Escape(n.Name))
	if dur := n.Duration(); dur > 0 {
		label += fmt.Sprintf(" [gray]%s[white]", dur.Round(time.Millisecond))
	}
	return label
}

func (d *Dashboard) renderDetails() {
	node := d.selectedNode()
	if node == nil {
		d.details.SetText("")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s[white] %s\n\n", StatusColorTag(node.Status()), node.Status(), tview.Escape(node.FullName))
	if node.IsContainer {
		fmt.Fprintf(&b, "[cyan]tests:[white] %d\n", node.TestCount)
	}
	if node.Binary != "" {
		fmt.Fprintf(&b, "[cyan]binary:[white] %s\n", tview.Escape(node.Binary))
		fmt.Fprintf(&b, "[cyan]protocol:[white] %s\n", node.Protocol)
	}
	if node.SourceFile != "" {
		fmt.Fprintf(&b, "[cyan]source:[white] %s:%d\n", tview.Escape(node.SourceFile), node.SourceLine)
	}
	if errText := node.ErrorText(); errText != "" {
		fmt.Fprintf(&b, "\n[red]Error:[white]\n%s\n", tview.Escape(errText))
	}
	if out := node.OutputSnapshot(); len(out) > 0 {
		fmt.Fprintf(&b, "\n[yellow]Output:[white]\n%s\n", tview.Escape(strings.Join(out, "\n")))
	}
	d.details.SetText(b.String())
}

// showOutputModal pops the full captured output of a leaf over the dashboard.
func (d *Dashboard) showOutputModal(node *domain.TestNode) {
	text := strings.Join(node.OutputSnapshot(), "\n")
	if errText := node.ErrorText(); errText != "" {
		if text != "" {
			text += "\n\n"
		}
		text += errText
	}
	if text == "" {
		text = "(no captured output)"
	}

	output := tview.NewTextView().SetDynamicColors(false).SetWrap(true)
	output.SetText(text)
	output.SetBorder(true).SetTitle(" " + node.FullName + " ")
	output.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			d.pages.RemovePage("output")
			d.app.SetFocus(d.treeList)
			return nil
		}
		return event
	})

	d.pages.AddPage("output", output, true, true)
	d.app.SetFocus(output)
}

func (d *Dashboard) setStatus(msg string) {
	d.mu.Lock()
	d.statusMsg = msg
	d.mu.Unlock()
}

func shortenPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
