package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stemma/pkg/graph"
	"github.com/matzehuels/stemma/pkg/tree"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary actions
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links, commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleBar      = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// stdout receives all status output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Status Lines
// =============================================================================

func printStatus(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Fprintln(stdout, iconStyle.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printStatus(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(iconWarning, styleIconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a value under a fixed-width label.
func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// =============================================================================
// Layout Summaries
// =============================================================================

// printLayoutStats prints the one-line summary shown after a layout or
// render run.
func printLayoutStats(l graph.Layout, cached bool) {
	parts := layoutStatParts(l, cached)
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func layoutStatParts(l graph.Layout, cached bool) []string {
	parts := []string{
		fmt.Sprintf("%d individuals", l.Stats.Individuals),
		fmt.Sprintf("%d unions", l.Stats.Unions),
		fmt.Sprintf("%d generations", l.Generations),
		fmt.Sprintf("cost %.2f", l.Stats.Cost),
	}
	if l.Stats.Crossings > 0 {
		parts = append(parts, fmt.Sprintf("%d crossings", l.Stats.Crossings))
	}
	if l.Stats.Overlaps > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d overlaps", l.Stats.Overlaps)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return parts
}

// printGenerations prints one bar per generation column, sized by the
// number of nodes in it.
func printGenerations(l graph.Layout) {
	for _, line := range generationBars(l, 40) {
		fmt.Fprintln(stdout, "  "+line)
	}
}

// generationBars renders node counts per level as bars no wider than width.
// Levels without nodes still get a row so the chart stays contiguous.
func generationBars(l graph.Layout, width int) []string {
	if len(l.Nodes) == 0 {
		return nil
	}
	maxLevel := 0
	for _, n := range l.Nodes {
		maxLevel = max(maxLevel, n.Level)
	}
	people := make([]int, maxLevel+1)
	unions := make([]int, maxLevel+1)
	widest := 0
	for _, n := range l.Nodes {
		if n.IsUnion() {
			unions[n.Level]++
		} else {
			people[n.Level]++
		}
		widest = max(widest, people[n.Level]+unions[n.Level])
	}

	lines := make([]string, 0, maxLevel+1)
	for level := range people {
		total := people[level] + unions[level]
		bar := total * width / widest
		if total > 0 && bar == 0 {
			bar = 1
		}
		label := fmt.Sprintf("%d people", people[level])
		if unions[level] > 0 {
			label = fmt.Sprintf("%d unions", unions[level])
			if people[level] > 0 {
				label = fmt.Sprintf("%d people, %d unions", people[level], unions[level])
			}
		}
		lines = append(lines, fmt.Sprintf("%3d %s %s",
			level, styleBar.Render(strings.Repeat("█", bar)), StyleDim.Render(label)))
	}
	return lines
}

// printWarnings prints dropped record references, at most maxWarnings of them.
func printWarnings(warnings []tree.Warning) {
	const maxWarnings = 5
	for i, w := range warnings {
		if i == maxWarnings {
			printDetail("... and %d more", len(warnings)-maxWarnings)
			return
		}
		printWarning("%s", w)
	}
}
