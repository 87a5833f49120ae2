package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Footer renders context-sensitive keybinding hints.
type Footer struct {
	Width    int
	Bindings []key.Binding
}

// View renders the footer as a single line of keybinding hints.
// In compact mode (narrow terminals), shows only key hints without descriptions.
func (f Footer) View() string {
	compact := f.Width < CompactWidth

	var parts []string
	for _, b := range f.Bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		var part string
		if compact {
			part = styleFooterKey.Render(help.Key)
		} else {
			part = styleFooterKey.Render(help.Key) + styleFooterSep.Render(":") + styleFooterDesc.Render(help.Desc)
		}
		parts = append(parts, part)
	}
	sep := styleFooterSep.Render("  ")
	if compact {
		sep = styleFooterSep.Render(" ")
	}
	line := strings.Join(parts, sep)
	return styleFooter.Width(f.Width).Render(line)
}

// footerBindings returns the bindings that apply to the selected row.
// Leaf actions are only offered when a leaf is selected; the plan binding
// additionally requires planning to have started.
func footerBindings(km KeyMap, row *treeRow) []key.Binding {
	b := []key.Binding{km.Up, km.Down}
	if row != nil {
		switch {
		case row.isEpic():
			b = append(b, km.Toggle)
		case row.leaf() != nil:
			b = append(b, km.OpenSpec)
			if row.hasPlan() {
				b = append(b, km.OpenPlan)
			}
			b = append(b, km.Focus)
		}
	}
	return append(b, km.ClearFocus, km.Refresh, km.Quit)
}
