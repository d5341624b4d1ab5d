package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/tasklist/internal/views"
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

const commandGrammar = `
**Commands**

- ` + "`add <title> [due:2026-03-01T09:30] [cat:work] [pri:high] [force]`" + `
- ` + "`edit <n> [title] [due:…|due:none] [cat:…] [pri:…]`" + `
- ` + "`done <n>`" + `, ` + "`delete <n>`" + `, ` + "`clear`" + `
- ` + "`move <n> up|down|top|bottom|<offset>`" + `
- ` + "`sort due|priority|category|default`" + `
- ` + "`search <term>`" + ` (empty term clears)
`

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.keyBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", displayKey(kb.Key), kb.Action))
	}
	bindings := m.helpBindings()
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		Grammar:  commandGrammar,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) keyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Up + "/" + m.Keys.Down, Action: "move cursor"},
		{Key: m.Keys.MoveUp + "/" + m.Keys.MoveDown, Action: "move task up/down"},
		{Key: m.Keys.Toggle, Action: "toggle complete"},
		{Key: m.Keys.Delete, Action: "delete task"},
		{Key: m.Keys.Clear, Action: "clear completed"},
		{Key: m.Keys.Sort, Action: "cycle sort"},
		{Key: m.Keys.Add, Action: "add task"},
		{Key: m.Keys.Search, Action: "search"},
		{Key: "esc", Action: "clear search"},
		{Key: m.Keys.Palette, Action: "command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.keyBindings()))
	for _, kb := range m.keyBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(displayKey(kb.Key), kb.Action)))
	}
	return out
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
