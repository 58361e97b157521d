package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/guide"
	"github.com/matzehuels/wayfinder/pkg/navigator"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// stepIcons are terminal stand-ins for the instruction pictures.
var stepIcons = map[guide.Kind]string{
	guide.Straight: "↑",
	guide.Left:     "←",
	guide.Right:    "→",
	guide.Stairs:   "▤",
	guide.Elevator: "▣",
	guide.Arrived:  "●",
}

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints route statistics on a single line.
func printStats(stats navigator.Stats, cached bool) {
	var parts []string
	if stats.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", stats.Nodes))
	}
	if stats.Duration > 0 {
		parts = append(parts, stats.Duration.String())
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// =============================================================================
// Routes
// =============================================================================

// formatMeters renders a walking distance.
func formatMeters(d float64) string {
	if d >= 1000 {
		return strconv.FormatFloat(d/1000, 'f', 2, 64) + " km"
	}
	return strconv.FormatFloat(d, 'f', 0, 64) + " m"
}

// writeRoute prints a route summary followed by one table per leg.
func writeRoute(w io.Writer, res *navigator.Result) {
	origin := res.From
	if res.At != nil {
		origin = res.At.String()
	}
	fmt.Fprintln(w, StyleTitle.Render(origin+" "+iconArrow+" "+res.To))
	fmt.Fprintln(w, StyleDim.Render(string(res.Kind)+" · "+formatMeters(res.Total)))
	for _, leg := range res.Legs {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleHighlight.Render(legTitle(leg))+" "+StyleDim.Render(formatMeters(leg.Distance)))
		fmt.Fprintln(w, legTable(leg).Render())
	}
}

func legTitle(l navigator.Leg) string {
	if l.Kind == graph.KindOutdoor {
		return "Outside"
	}
	return "Building " + l.Graph
}

// legTable lists the instructions of an indoor leg, or the waypoints of an
// outdoor leg.
func legTable(l navigator.Leg) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	if l.Kind == graph.KindOutdoor {
		t.Headers("#", "Node", "Position")
		for i, id := range l.Path {
			pos := ""
			if i < len(l.Coordinates) {
				pos = l.Coordinates[i].String()
			}
			t.Row(strconv.Itoa(i+1), id, pos)
		}
		return t
	}
	t.Headers("#", "", "Instruction")
	for i, s := range l.Instructions {
		t.Row(strconv.Itoa(i+1), stepIcons[s.Kind], s.Text)
	}
	return t
}
