package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/traypop/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var lines []string
	for _, kb := range m.keyBindings() {
		lines = append(lines, fmt.Sprintf("- `%s` %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Markdown: "## keys\n" + strings.Join(lines, "\n"),
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) keyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.AddTask, Action: "add task to selected list"},
		{Key: m.Keys.NewList, Action: "create list"},
		{Key: m.Keys.Rename, Action: "rename selected task or list"},
		{Key: m.Keys.Collapse + "/enter", Action: "fold/unfold selected list"},
		{Key: "space", Action: "toggle task done"},
		{Key: m.Keys.Delete, Action: "delete selected"},
		{Key: "j/k", Action: "move selection"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle this help"},
		{Key: m.Keys.Hide, Action: "hide popup"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.keyBindings()))
	for _, kb := range m.keyBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
