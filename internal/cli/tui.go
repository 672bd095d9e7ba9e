package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/layout/optimize"
)

// watchHistory is how many recent moves the watch view keeps.
const watchHistory = 8

// List styles
var (
	watchLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	watchMoveStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	watchDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

// moveMsg carries one optimizer move into the model.
type moveMsg optimize.Notification

// layoutDoneMsg reports that the layout computation returned.
type layoutDoneMsg struct {
	layout graph.Layout
	err    error
}

// tickMsg refreshes the elapsed time.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// WatchModel - live optimizer view
// =============================================================================

// WatchModel is the bubbletea model that shows optimizer moves as they are
// committed.
type WatchModel struct {
	Source    string
	Iteration int
	Moves     int
	Recent    []optimize.Notification
	Done      bool
	Layout    graph.Layout
	Err       error

	start  time.Time
	now    time.Time
	cancel context.CancelFunc
}

// NewWatchModel creates a watch model. cancel stops the running layout when
// the user quits early.
func NewWatchModel(source string, cancel context.CancelFunc) WatchModel {
	now := time.Now()
	return WatchModel{Source: source, start: now, now: now, cancel: cancel}
}

func (m WatchModel) Init() tea.Cmd {
	return tick()
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.Done {
				if m.cancel != nil {
					m.cancel()
				}
				m.Err = context.Canceled
			}
			return m, tea.Quit
		}
	case moveMsg:
		m.Moves++
		m.Iteration = max(m.Iteration, msg.Iteration)
		m.Recent = append(m.Recent, optimize.Notification(msg))
		if len(m.Recent) > watchHistory {
			m.Recent = m.Recent[len(m.Recent)-watchHistory:]
		}
	case layoutDoneMsg:
		m.Done = true
		m.Layout = msg.layout
		m.Err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.now = time.Time(msg)
		if m.Done {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Optimizing " + m.Source))
	b.WriteString("\n")
	b.WriteString(watchDimStyle.Render("q quit"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(watchLabelStyle.Render(label) + " " + StyleNumber.Render(value) + "\n")
	}
	row("Iteration", fmt.Sprintf("%d", m.Iteration))
	row("Moves", fmt.Sprintf("%d", m.Moves))
	row("Elapsed", m.now.Sub(m.start).Truncate(100*time.Millisecond).String())
	b.WriteString("\n")

	for _, n := range m.Recent {
		line := fmt.Sprintf("  #%-5d %-24s %s (%d, %d)", n.Iteration, n.Key, iconArrow, n.X, n.Y)
		b.WriteString(watchMoveStyle.Render(line))
		b.WriteString("\n")
	}

	if m.Done && m.Err == nil {
		b.WriteString("\n")
		b.WriteString(StyleSuccess.Render(fmt.Sprintf("%s cost %.2f, %d overlaps", iconSuccess, m.Layout.Stats.Cost, m.Layout.Stats.Overlaps)))
		b.WriteString("\n")
	}
	return b.String()
}

// cancelled reports whether the user quit before the layout finished.
func (m WatchModel) cancelled() bool {
	return errors.Is(m.Err, context.Canceled) && !m.Done
}
