package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyplan/internal/agenda"
	"github.com/sandeepkv93/studyplan/internal/commands"
	"github.com/sandeepkv93/studyplan/internal/planner"
)

func (m Model) openPalette() Model {
	m.Palette = CommandPaletteState{Active: true}
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette = CommandPaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			t, err := m.svc.Submit(m.ctx, planner.FormInput{Title: a.Title})
			if err != nil {
				return commands.Result{}, commands.Failed(err)
			}
			m.SelectedID = t.ID
			return commands.Result{Message: fmt.Sprintf("task added: %s", t.Title)}, nil
		},
		Quick: func(q commands.QuickArgs) (commands.Result, error) {
			t, err := m.svc.QuickAdd(m.ctx, q.Line)
			if err != nil {
				return commands.Result{}, commands.Failed(err)
			}
			m.SelectedID = t.ID
			return commands.Result{Message: fmt.Sprintf("task added: %s", t.Title)}, nil
		},
		Import: func(p commands.PathArgs) (commands.Result, error) {
			n, err := m.svc.ImportFile(m.ctx, p.Path)
			if err != nil {
				return commands.Result{}, commands.Failed(err)
			}
			return commands.Result{Message: fmt.Sprintf("Imported %d tasks", n)}, nil
		},
		Export: func(p commands.PathArgs) (commands.Result, error) {
			if err := m.svc.ExportFile(p.Path); err != nil {
				return commands.Result{}, commands.Failed(err)
			}
			return commands.Result{Message: fmt.Sprintf("exported %d tasks to %s", len(m.svc.Tasks()), p.Path)}, nil
		},
		ICS: func(p commands.PathArgs) (commands.Result, error) {
			if err := m.svc.ExportICSFile(p.Path); err != nil {
				return commands.Result{}, commands.Failed(err)
			}
			return commands.Result{Message: fmt.Sprintf("calendar written to %s", p.Path)}, nil
		},
		Clear: func() (commands.Result, error) {
			m = m.askConfirm(ConfirmClear, "")
			return commands.Result{Message: m.Confirm.Prompt}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			filter, err := agenda.ParseFilter(f.Mode)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			m.Filter = filter
			return commands.Result{Message: fmt.Sprintf("filter: %s", filter)}, nil
		},
		Done: func() (commands.Result, error) {
			t, err := m.toggleSelected()
			if err != nil {
				return commands.Result{}, commands.Failed(err)
			}
			return commands.Result{Message: toggleMessage(t.Title, t.Completed)}, nil
		},
		Delete: func() (commands.Result, error) {
			if _, ok := m.selectedTask(); !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
			}
			m = m.askConfirm(ConfirmDelete, m.SelectedID)
			return commands.Result{Message: m.Confirm.Prompt}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.refresh()
	m.Status = StatusBar{Text: res.Message}
	if m.Confirm == nil {
		m.notify("Command", res.Message, "info")
	}
	return m, nil
}
