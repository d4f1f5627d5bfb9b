package views

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/studyplan/internal/agenda"
	"github.com/sandeepkv93/studyplan/internal/model"
)

type TaskListData struct {
	Filter     string
	Items      []model.Task
	SelectedID string
}

type FormField struct {
	Label   string
	View    string
	Focused bool
}

type FormData struct {
	Editing bool
	Active  bool
	Fields  []FormField
}

type DetailData struct {
	Task      *model.Task
	NotesView string
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

// RenderSummary renders the stats line and the next-reminder banner.
func RenderSummary(snap agenda.Snapshot) string {
	return snap.Summary.String() + "\n" + snap.Next.String()
}

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks [%s]:\n", data.Filter))
	if len(data.Items) == 0 {
		b.WriteString(mutedStyle.Render("(no tasks)"))
		return b.String()
	}
	for _, t := range data.Items {
		cursor := " "
		title := t.DisplayTitle()
		if t.ID == data.SelectedID {
			cursor = ">"
			title = selectStyle.Render(title)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", cursor, PriorityStripe(t.Priority), title))
		b.WriteString("    " + mutedStyle.Render(TaskMetaLine(t)) + "\n")
		b.WriteString(fmt.Sprintf("    Priority: %s\n", t.Priority))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// TaskMetaLine is the secondary list line: subject, duration and due date.
func TaskMetaLine(t model.Task) string {
	subject := t.Subject
	if subject == "" {
		subject = "No subject"
	}
	duration := ""
	if t.Duration > 0 {
		duration = fmt.Sprintf("%d mins • ", t.Duration)
	}
	return fmt.Sprintf("%s • %s%s", subject, duration, t.Due.Pretty())
}

func PriorityStripe(p model.Priority) string {
	style, ok := stripeStyles[string(p)]
	if !ok {
		style = stripeStyles[string(model.PriorityMedium)]
	}
	return style.Render("▌")
}

func RenderForm(data FormData) string {
	var b strings.Builder
	if data.Editing {
		b.WriteString("Edit Task\n")
	} else {
		b.WriteString("Create Task\n")
	}
	for _, f := range data.Fields {
		cursor := " "
		if data.Active && f.Focused {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-9s %s\n", cursor, f.Label+":", f.View))
	}
	if data.Active {
		b.WriteString("keys: [tab]next [enter]save [esc]reset")
	} else {
		b.WriteString("keys: [n]new [e]edit selected")
	}
	return b.String()
}

func RenderQuickAdd(active bool, view string) string {
	if !active {
		return ""
	}
	return "quick add (title | yyyy-mm-dd hh:mm):\n" + view
}

func RenderConfirm(prompt string) string {
	if prompt == "" {
		return ""
	}
	return errorStyle.Render(prompt + " [y/n]")
}

func RenderDetail(data DetailData) string {
	if data.Task == nil {
		return "details:\n(no selection)"
	}
	t := data.Task
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("id: %s\n", t.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", t.DisplayTitle()))
	b.WriteString(fmt.Sprintf("due: %s\n", t.Due.Pretty()))
	b.WriteString(fmt.Sprintf("created: %s\n", t.Created.Local().Format("2006-01-02 15:04")))
	if data.NotesView != "" {
		b.WriteString("\nnotes:\n")
		b.WriteString(data.NotesView)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}
