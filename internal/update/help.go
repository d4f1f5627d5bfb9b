package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/studyplan/internal/views"
)

type keyMap struct {
	New      key.Binding
	Edit     key.Binding
	QuickAdd key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Clear    key.Binding
	Filter   key.Binding
	Up       key.Binding
	Down     key.Binding
	Copy     key.Binding
	Palette  key.Binding
	Help     key.Binding
	Quit     key.Binding
	// form
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Reset     key.Binding
	NotesUp   key.Binding
	NotesDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit selected")),
		QuickAdd:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "quick add")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle done")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "move up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "move down")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
		Palette:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command palette")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "save and quit")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Reset:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "reset form")),
		NotesUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll notes")),
		NotesDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll notes")),
	}
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.contextBindings()
	var plain []string
	for _, b := range bindings {
		h := b.Help()
		plain = append(plain, fmt.Sprintf("- %s: %s", h.Key, h.Desc))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: m.shortBindings(),
			full:  [][]key.Binding{bindings},
		}),
	})
}

// contextBindings lists the keys that apply in the current input mode.
func (m Model) contextBindings() []key.Binding {
	k := m.keys
	if m.Form.Active {
		return []key.Binding{k.NextField, k.PrevField, k.Submit, k.Reset, m.notesArea.KeyMap.InsertNewline}
	}
	return []key.Binding{
		k.New, k.Edit, k.QuickAdd, k.Toggle, k.Delete, k.Clear, k.Filter,
		k.Up, k.Down, k.Copy, k.NotesUp, k.NotesDown, k.Palette, k.Help, k.Quit,
	}
}

func (m Model) shortBindings() []key.Binding {
	k := m.keys
	if m.Form.Active {
		return []key.Binding{k.NextField, k.Submit, k.Reset}
	}
	return []key.Binding{k.New, k.QuickAdd, k.Toggle, k.Filter, k.Help, k.Quit}
}
