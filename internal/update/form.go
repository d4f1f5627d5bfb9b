package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyplan/internal/planner"
	"github.com/sandeepkv93/studyplan/internal/views"
)

// openForm activates the form filled from in. An empty ID is create mode.
func (m Model) openForm(in planner.FormInput) Model {
	m.Form = FormState{Active: true, EditingID: in.ID}
	m.fields[FieldTitle].SetValue(in.Title)
	m.fields[FieldSubject].SetValue(in.Subject)
	m.fields[FieldDue].SetValue(in.Due)
	m.fields[FieldDuration].SetValue(in.Duration)
	m.fields[FieldPriority].SetValue(in.Priority)
	m.notesArea.SetValue(in.Notes)
	return m.focusField(FieldTitle)
}

func (m Model) focusField(i int) Model {
	i = (i%formFieldCount + formFieldCount) % formFieldCount
	m.Form.Focus = i
	for j := range m.fields {
		if j == i {
			m.fields[j].Focus()
		} else {
			m.fields[j].Blur()
		}
	}
	if i == FieldNotes {
		m.notesArea.Focus()
	} else {
		m.notesArea.Blur()
	}
	return m
}

// resetForm clears every field and leaves edit mode.
func (m Model) resetForm() Model {
	for i := range m.fields {
		m.fields[i].Reset()
		m.fields[i].Blur()
	}
	m.notesArea.Reset()
	m.notesArea.Blur()
	m.Form = FormState{}
	return m
}

func (m Model) formInput() planner.FormInput {
	return planner.FormInput{
		ID:       m.Form.EditingID,
		Title:    m.fields[FieldTitle].Value(),
		Subject:  m.fields[FieldSubject].Value(),
		Due:      m.fields[FieldDue].Value(),
		Duration: m.fields[FieldDuration].Value(),
		Priority: m.fields[FieldPriority].Value(),
		Notes:    m.notesArea.Value(),
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextField):
		return m.focusField(m.Form.Focus + 1), nil
	case key.Matches(msg, m.keys.PrevField):
		return m.focusField(m.Form.Focus - 1), nil
	case key.Matches(msg, m.keys.Reset):
		m = m.resetForm()
		m.Status = StatusBar{Text: "form reset"}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submitForm(), nil
	}

	var cmd tea.Cmd
	if m.Form.Focus == FieldNotes {
		m.notesArea, cmd = m.notesArea.Update(msg)
		return m, cmd
	}
	m.fields[m.Form.Focus], cmd = m.fields[m.Form.Focus].Update(msg)
	return m, cmd
}

func (m Model) submitForm() Model {
	editing := m.Form.EditingID != ""
	t, err := m.svc.Submit(m.ctx, m.formInput())
	if err != nil {
		return m.fail("save failed", err)
	}
	m = m.resetForm()
	m.SelectedID = t.ID
	m.refresh()
	text := fmt.Sprintf("task added: %s", t.Title)
	if editing {
		text = fmt.Sprintf("task updated: %s", t.Title)
	}
	m.Status = StatusBar{Text: text}
	m.notify("Saved", text, "info")
	return m
}

func (m Model) renderForm() string {
	fields := make([]views.FormField, 0, formFieldCount)
	for i := range m.fields {
		fields = append(fields, views.FormField{
			Label:   fieldLabels[i],
			View:    m.fields[i].View(),
			Focused: m.Form.Focus == i,
		})
	}
	notes := m.notesArea.View()
	if !m.Form.Active {
		notes = m.notesArea.Value()
	}
	fields = append(fields, views.FormField{
		Label:   fieldLabels[FieldNotes],
		View:    notes,
		Focused: m.Form.Focus == FieldNotes,
	})
	return views.RenderForm(views.FormData{
		Editing: m.Form.EditingID != "",
		Active:  m.Form.Active,
		Fields:  fields,
	})
}
