package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyplan/internal/planner"
	"github.com/sandeepkv93/studyplan/internal/scheduler"
	"github.com/sandeepkv93/studyplan/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForReminderCmd(m.reminders)
}

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m = m.fail("error", typed.Err)
		}
		return m, nil
	case ReminderDueMsg:
		if note, ok := m.svc.Fire(typed.Event); ok {
			m.Status = StatusBar{Text: note.Title}
			m.notify("Reminder", fmt.Sprintf("%s (%s)", note.Title, note.Body), "reminder")
		}
		m.refresh()
		return m, waitForReminderCmd(m.reminders)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.Confirm != nil {
		switch msg.String() {
		case "y", "Y":
			return m.resolveConfirm(true), nil
		case "n", "N", "esc":
			return m.resolveConfirm(false), nil
		}
		return m, nil
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}
	if m.QuickAdd {
		return m.handleQuickAddKey(msg)
	}
	if m.Form.Active {
		return m.handleFormKey(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.New):
		m = m.openForm(planner.FormInput{})
		m.Status = StatusBar{Text: "new task"}
	case key.Matches(msg, k.Edit):
		t, ok := m.selectedTask()
		if !ok {
			m.Status = StatusBar{Text: errNoSelection.Error(), IsError: true}
			return m, nil
		}
		m = m.openForm(planner.FormFromTask(t))
		m.Status = StatusBar{Text: "editing: " + t.Title}
	case key.Matches(msg, k.QuickAdd):
		m.QuickAdd = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
	case key.Matches(msg, k.Toggle):
		t, err := m.toggleSelected()
		if err != nil {
			return m.fail("toggle failed", err), nil
		}
		m.refresh()
		m.Status = StatusBar{Text: toggleMessage(t.Title, t.Completed)}
	case key.Matches(msg, k.Delete):
		if _, ok := m.selectedTask(); !ok {
			m.Status = StatusBar{Text: errNoSelection.Error(), IsError: true}
			return m, nil
		}
		m = m.askConfirm(ConfirmDelete, m.SelectedID)
	case key.Matches(msg, k.Clear):
		m = m.askConfirm(ConfirmClear, "")
	case key.Matches(msg, k.Filter):
		m.Filter = m.Filter.Next()
		m.refresh()
		m.Status = StatusBar{Text: "filter: " + string(m.Filter)}
	case key.Matches(msg, k.Up):
		m.moveSelection(-1)
	case key.Matches(msg, k.Down):
		m.moveSelection(1)
	case key.Matches(msg, k.NotesUp):
		m.notesViewport.HalfViewUp()
	case key.Matches(msg, k.NotesDown):
		m.notesViewport.HalfViewDown()
	case key.Matches(msg, k.Copy):
		m = m.copySelected()
	case key.Matches(msg, k.Palette):
		m = m.openPalette()
	case key.Matches(msg, k.Help):
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.QuickAdd = false
		m.quickAddInput.Blur()
		return m, nil
	case "enter":
		line := m.quickAddInput.Value()
		m.QuickAdd = false
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		t, err := m.svc.QuickAdd(m.ctx, line)
		if err != nil {
			return m.fail("quick add failed", err), nil
		}
		m.SelectedID = t.ID
		m.refresh()
		m.Status = StatusBar{Text: "task added: " + t.Title}
		return m, nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	return m, cmd
}

// quit saves the collection before leaving. A failed save is logged and
// reported but does not block quitting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if err := m.svc.Flush(m.ctx); err != nil {
		m = m.fail("save on quit failed", err)
	}
	m.Quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	left := []string{m.renderForm()}
	if qa := views.RenderQuickAdd(m.QuickAdd, m.quickAddInput.View()); qa != "" {
		left = append(left, qa)
	}
	left = append(left, m.renderTaskList())

	right := []string{m.renderTimeline(), m.renderDetail()}
	if p := views.RenderCommandPalette(m.Palette.Active, m.commandInput.Value()); p != "" {
		right = append(right, p)
	}
	if m.Confirm != nil {
		right = append(right, views.RenderConfirm(m.Confirm.Prompt))
	}
	if h := m.renderHelpIfVisible(); h != "" {
		right = append(right, h)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("studyplan | filter: %s | selected: %s", m.Filter, m.SelectedID),
		Summary:      views.RenderSummary(m.snapshot),
		LeftPane:     strings.Join(left, "\n\n"),
		RightPane:    strings.Join(right, "\n\n"),
		StatusLine:   status,
		Notification: m.renderNotificationsView(),
		Footer:       m.helpModel.ShortHelpView(m.shortBindings()),
	})
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
