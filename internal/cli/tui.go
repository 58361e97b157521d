package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/guide"
	"github.com/matzehuels/wayfinder/pkg/navigator"
)

// Step viewer styles
var (
	stepCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	stepNormalStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	stepDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	stepIconStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan).
				Padding(0, 2).
				Bold(true)
)

// =============================================================================
// stepModel - Interactive instruction viewer
// =============================================================================

// viewStep is one screen of the viewer: an instruction, or the outdoor walk
// to an entrance.
type viewStep struct {
	Leg  string
	Kind guide.Kind
	Text string
	Icon string
}

// stepModel is the bubbletea model that shows a route one step at a time.
type stepModel struct {
	Title  string
	Steps  []viewStep
	Cursor int
}

// newStepModel flattens res into viewer steps. An outdoor leg becomes a
// single step naming the entrance it leads to.
func newStepModel(res *navigator.Result) stepModel {
	m := stepModel{Title: res.To + " · " + formatMeters(res.Total)}
	for _, leg := range res.Legs {
		title := legTitle(leg)
		if leg.Kind == graph.KindOutdoor {
			target := ""
			if n := len(leg.Path); n > 0 {
				target = leg.Path[n-1]
			}
			m.Steps = append(m.Steps, viewStep{
				Leg:  title,
				Kind: guide.Straight,
				Text: fmt.Sprintf("Walk %s to %s", formatMeters(leg.Distance), target),
			})
			continue
		}
		for _, s := range leg.Instructions {
			m.Steps = append(m.Steps, viewStep{Leg: title, Kind: s.Kind, Text: s.Text, Icon: s.Icon})
		}
	}
	return m
}

func (m stepModel) Init() tea.Cmd {
	return nil
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "right", "l", "down", "j", " ", "enter":
			if m.Cursor < len(m.Steps)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Steps)-1, 0)
		}
	}
	return m, nil
}

func (m stepModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(stepDimStyle.Render("←/→ step  q quit"))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(stepNormalStyle.Render("You are already there."))
		b.WriteString("\n")
		return b.String()
	}

	cur := m.Steps[m.Cursor]
	b.WriteString(stepDimStyle.Render(cur.Leg))
	b.WriteString("\n")
	b.WriteString(stepIconStyle.Render(stepIcons[cur.Kind]))
	b.WriteString("\n")
	b.WriteString(stepCurrentStyle.Render(cur.Text))
	b.WriteString("\n")
	if cur.Icon != "" {
		b.WriteString(stepDimStyle.Render(cur.Icon))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.Cursor+1 < len(m.Steps) {
		b.WriteString(stepDimStyle.Render("next: "))
		b.WriteString(stepNormalStyle.Render(m.Steps[m.Cursor+1].Text))
		b.WriteString("\n")
	}
	b.WriteString(stepDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}
