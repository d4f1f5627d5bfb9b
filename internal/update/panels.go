package update

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/studyplan/internal/model"
	"github.com/sandeepkv93/studyplan/internal/views"
)

var errNoSelection = errors.New("update: no task selected")

// refresh re-renders the planner snapshot for the current filter and keeps
// the selection on a visible task.
func (m *Model) refresh() {
	m.snapshot = m.svc.Render(m.Filter)
	if _, ok := m.visibleIndex(m.SelectedID); !ok {
		m.SelectedID = ""
		if len(m.snapshot.Items) > 0 {
			m.SelectedID = m.snapshot.Items[0].ID
		}
	}
	m.syncNotesViewport()
}

func (m Model) visibleIndex(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i, t := range m.snapshot.Items {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (m Model) selectedTask() (model.Task, bool) {
	if _, ok := m.visibleIndex(m.SelectedID); !ok {
		return model.Task{}, false
	}
	return m.svc.Get(m.SelectedID)
}

func (m *Model) moveSelection(delta int) {
	items := m.snapshot.Items
	if len(items) == 0 {
		return
	}
	i, _ := m.visibleIndex(m.SelectedID)
	i += delta
	if i < 0 {
		i = 0
	}
	if i > len(items)-1 {
		i = len(items) - 1
	}
	m.SelectedID = items[i].ID
	m.syncNotesViewport()
}

func (m *Model) syncNotesViewport() {
	t, ok := m.selectedTask()
	if !ok {
		m.notesViewport.SetContent("")
		return
	}
	m.notesViewport.SetContent(views.RenderMarkdown(t.Notes))
	m.notesViewport.GotoTop()
}

func (m Model) toggleSelected() (model.Task, error) {
	t, ok := m.selectedTask()
	if !ok {
		return model.Task{}, errNoSelection
	}
	return m.svc.Toggle(m.ctx, t.ID)
}

func toggleMessage(title string, completed bool) string {
	if completed {
		return fmt.Sprintf("completed: %s", title)
	}
	return fmt.Sprintf("reopened: %s", title)
}

func (m Model) askConfirm(action ConfirmAction, taskID string) Model {
	prompt := "Clear all tasks?"
	if action == ConfirmDelete {
		title := taskID
		if t, ok := m.svc.Get(taskID); ok {
			title = t.Title
		}
		prompt = fmt.Sprintf("Delete %q?", title)
	}
	m.Confirm = &Confirmation{Action: action, TaskID: taskID, Prompt: prompt}
	return m
}

// resolveConfirm runs or drops the pending confirmation.
func (m Model) resolveConfirm(accept bool) Model {
	c := m.Confirm
	m.Confirm = nil
	if c == nil {
		return m
	}
	if !accept {
		m.Status = StatusBar{Text: fmt.Sprintf("%s cancelled", c.Action)}
		return m
	}
	switch c.Action {
	case ConfirmDelete:
		removed, err := m.svc.Delete(m.ctx, c.TaskID)
		if err != nil {
			return m.fail("delete failed", err)
		}
		if !removed {
			m.Status = StatusBar{Text: "task already gone"}
			break
		}
		m.Status = StatusBar{Text: "task deleted"}
		if m.Form.EditingID == c.TaskID {
			m = m.resetForm()
		}
	case ConfirmClear:
		if err := m.svc.Clear(m.ctx); err != nil {
			return m.fail("clear failed", err)
		}
		m = m.resetForm()
		m.Status = StatusBar{Text: "all tasks cleared"}
	}
	m.refresh()
	m.notify("Tasks", m.Status.Text, "info")
	return m
}

func (m Model) copySelected() Model {
	t, ok := m.selectedTask()
	if !ok {
		m.Status = StatusBar{Text: errNoSelection.Error(), IsError: true}
		return m
	}
	line := t.DisplayTitle() + " • " + views.TaskMetaLine(t)
	if err := m.copyText(line); err != nil {
		return m.fail("copy failed", err)
	}
	m.Status = StatusBar{Text: "copied: " + t.Title}
	return m
}

// fail reports a recoverable error in the status bar and notification log.
func (m Model) fail(what string, err error) Model {
	m.LastError = err
	m.Status = StatusBar{Text: fmt.Sprintf("%s: %v", what, err), IsError: true}
	m.notify("Error", m.Status.Text, "error")
	m.log.Error(err, what)
	return m
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Title+": "+n.Body)
}

func (m Model) renderTaskList() string {
	return views.RenderTaskList(views.TaskListData{
		Filter:     string(m.Filter),
		Items:      m.snapshot.Items,
		SelectedID: m.SelectedID,
	})
}

func (m Model) renderTimeline() string {
	return views.RenderTimeline(views.TimelineData{
		Rows:     m.snapshot.Timeline,
		Cells:    24,
		Progress: m.taskProgress.ViewAs,
	})
}

func (m Model) renderDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return views.RenderDetail(views.DetailData{})
	}
	notes := ""
	if strings.TrimSpace(t.Notes) != "" {
		notes = m.notesViewport.View()
	}
	return views.RenderDetail(views.DetailData{Task: &t, NotesView: notes})
}
