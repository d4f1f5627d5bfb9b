package update

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/go-logr/logr"
	"github.com/sandeepkv93/studyplan/internal/agenda"
	"github.com/sandeepkv93/studyplan/internal/planner"
	"github.com/sandeepkv93/studyplan/internal/scheduler"
)

// Form field order. The notes field is a textarea and comes last.
const (
	FieldTitle = iota
	FieldSubject
	FieldDue
	FieldDuration
	FieldPriority
	FieldNotes

	inputFieldCount = FieldNotes
	formFieldCount  = FieldNotes + 1
)

var fieldLabels = [formFieldCount]string{"Title", "Subject", "Due", "Duration", "Priority", "Notes"}

type StatusBar struct {
	Text    string
	IsError bool
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type FormState struct {
	Active bool
	// EditingID is the task being edited; empty in create mode.
	EditingID string
	Focus     int
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type ConfirmAction string

const (
	ConfirmDelete ConfirmAction = "delete"
	ConfirmClear  ConfirmAction = "clear"
)

// Confirmation is a pending y/n prompt for a destructive action.
type Confirmation struct {
	Action ConfirmAction
	TaskID string
	Prompt string
}

type Model struct {
	Filter        agenda.Filter
	SelectedID    string
	Form          FormState
	QuickAdd      bool
	Confirm       *Confirmation
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Quitting      bool
	LastError     error

	svc       *planner.Service
	ctx       context.Context
	log       logr.Logger
	copyText  func(string) error
	keys      keyMap
	snapshot  agenda.Snapshot
	reminders <-chan scheduler.ReminderEvent

	// Bubble components used for rich TUI controls
	fields        [inputFieldCount]textinput.Model
	notesArea     textarea.Model
	quickAddInput textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
	notesViewport viewport.Model
	taskProgress  progress.Model
}

type Option func(*Model)

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func WithLogger(l logr.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithFilter sets the filter shown at startup.
func WithFilter(f agenda.Filter) Option {
	return func(m *Model) { m.Filter = f }
}

// WithClipboard replaces the system clipboard writer used by the copy key.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

func NewModel(svc *planner.Service, opts ...Option) Model {
	m := Model{
		Filter:   agenda.FilterAll,
		svc:      svc,
		ctx:      context.Background(),
		log:      logr.Discard(),
		copyText: clipboard.WriteAll,
		keys:     defaultKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if rem := svc.Reminders(); rem != nil {
		m.reminders = rem.Engine().C()
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	placeholders := [inputFieldCount]string{
		"What are you studying?",
		"Subject",
		"yyyy-mm-dd hh:mm",
		"minutes",
		"low | medium | high",
	}
	for i := range m.fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 40
		in.Placeholder = placeholders[i]
		m.fields[i] = in
	}

	m.notesArea = textarea.New()
	m.notesArea.SetWidth(44)
	m.notesArea.SetHeight(4)
	m.notesArea.ShowLineNumbers = false
	m.notesArea.Placeholder = "Notes (markdown)"
	// enter submits the form
	m.notesArea.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "new line"))

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42
	m.quickAddInput.Placeholder = "Essay draft | 2025-01-10 14:00"

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.notesViewport = viewport.New(54, 8)
	m.taskProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(12))
}
