package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sdd-engine/sdd/internal/workspace"
)

// StatusBar renders the persistent top bar: the workspace summary on the
// left, load errors and the last refresh time on the right.
type StatusBar struct {
	Summary     workspace.Summary
	Errored     int
	Workflows   int
	RefreshedAt time.Time
	Width       int
}

// View renders the status bar as a single line. The summary text is
// truncated first; the right segments are dropped in compact mode.
func (s StatusBar) View() string {
	compact := s.Width < CompactWidth

	const barPadding = 2
	innerWidth := s.Width - barPadding
	if innerWidth < 0 {
		innerWidth = 0
	}

	var right []string
	if !compact {
		if s.Errored > 0 {
			right = append(right, styleStatusAttention.Render(fmt.Sprintf("%s %d errored", iconError, s.Errored)))
		}
		if s.Workflows > 0 {
			right = append(right, styleStatusMeta.Render(fmt.Sprintf("%d workflow(s)", s.Workflows)))
		}
		if !s.RefreshedAt.IsZero() {
			right = append(right, styleStatusMeta.Render(s.RefreshedAt.Format("15:04:05")))
		}
	}
	barBg := lipgloss.NewStyle().Background(colorSurface)
	rightStr := strings.Join(right, barBg.Render("  "))

	const minGap = 1
	available := innerWidth - lipgloss.Width(rightStr) - minGap
	text := TruncateWithEllipsis(s.Summary.Text, available)
	left := s.summaryStyle().Render(text)

	gap := innerWidth - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 0 {
		gap = 0
	}
	line := left + barBg.Render(strings.Repeat(" ", gap)) + rightStr
	return styleStatusBar.Width(s.Width).Render(line)
}

func (s StatusBar) summaryStyle() lipgloss.Style {
	switch s.Summary.State {
	case workspace.SummaryAttention:
		return styleStatusAttention
	case workspace.SummaryComplete, workspace.SummaryReadyToPlan:
		return styleStatusDone
	default:
		return lipgloss.NewStyle().Background(colorSurface).Foreground(colorWhite).Bold(true)
	}
}
