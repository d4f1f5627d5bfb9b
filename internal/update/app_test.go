package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyplan/internal/agenda"
	"github.com/sandeepkv93/studyplan/internal/model"
	"github.com/sandeepkv93/studyplan/internal/planner"
	"github.com/sandeepkv93/studyplan/internal/reminder"
	"github.com/sandeepkv93/studyplan/internal/scheduler"
	"github.com/sandeepkv93/studyplan/internal/storage"
	"github.com/sandeepkv93/studyplan/internal/store"
)

var start = time.Date(2026, 2, 9, 12, 0, 0, 0, time.Local)

type harness struct {
	svc     *planner.Service
	slot    *storage.MemorySlot
	clock   *scheduler.ManualClock
	engine  *scheduler.Engine
	copied  []string
	copyErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: scheduler.NewManualClock(start), slot: storage.NewMemorySlot()}
	st := store.New(h.slot, store.WithClock(h.clock.Now))
	st.Load(context.Background())
	h.engine = scheduler.NewEngineWithClock(8, h.clock)
	t.Cleanup(h.engine.Stop)
	rem := reminder.New(h.engine, reminder.WithPermission(reminder.PermissionDenied))
	h.svc = planner.New(st, rem)
	return h
}

func (h *harness) model(opts ...Option) Model {
	opts = append([]Option{WithClipboard(func(s string) error {
		if h.copyErr != nil {
			return h.copyErr
		}
		h.copied = append(h.copied, s)
		return nil
	})}, opts...)
	return NewModel(h.svc, opts...)
}

func (h *harness) seed(t *testing.T, in planner.FormInput) model.Task {
	t.Helper()
	task, err := h.svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return task
}

// runes builds a key press. Multi-rune text arrives as a paste, the way a
// terminal delivers it, so words like "delete" never hit key bindings.
func runes(s string) tea.KeyMsg {
	r := []rune(s)
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: r, Paste: len(r) > 1}
}

var (
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	space    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	h := newHarness(t)
	m := h.model()
	if m.Filter != agenda.FilterAll || m.SelectedID != "" || m.Form.Active {
		t.Fatalf("unexpected defaults: filter=%q selected=%q form=%+v", m.Filter, m.SelectedID, m.Form)
	}
	out := m.View()
	for _, want := range []string{"0 tasks • 0 upcoming", "No reminders scheduled", "Create Task", "No timed tasks to show"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestWithFilterOption(t *testing.T) {
	h := newHarness(t)
	if m := h.model(WithFilter(agenda.FilterCompleted)); m.Filter != agenda.FilterCompleted {
		t.Fatalf("expected completed filter, got %q", m.Filter)
	}
}

func TestFormCreatesTask(t *testing.T) {
	h := newHarness(t)
	m := h.model()
	m = press(t, m,
		runes("n"),
		runes("Read Ch.3"), tab,
		runes("Math"), tab,
		runes("2026-02-10 09:00"), tab,
		runes("30"), tab,
		runes("high"), tab,
		runes("skim *first*"),
		enter,
	)

	tasks := h.svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Read Ch.3" || got.Subject != "Math" || got.Duration != 30 || got.Priority != model.PriorityHigh {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Notes != "skim *first*" || !got.HasDue() {
		t.Fatalf("unexpected notes or due: %+v", got)
	}
	if m.Form.Active || m.SelectedID != got.ID {
		t.Fatalf("expected form closed and new task selected, form=%+v selected=%q", m.Form, m.SelectedID)
	}
	if m.Status.Text != "task added: Read Ch.3" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if !h.svc.Reminders().Pending(got.ID) {
		t.Fatal("expected reminder armed for dated task")
	}
	out := m.View()
	for _, want := range []string{"1 tasks • 1 upcoming", "Next: Read Ch.3", "Math • 30 mins"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestFormFieldFocusWraps(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("n"))
	if m.Form.Focus != FieldTitle {
		t.Fatalf("expected title focus, got %d", m.Form.Focus)
	}
	m = press(t, m, shiftTab)
	if m.Form.Focus != FieldNotes {
		t.Fatalf("expected wrap to notes, got %d", m.Form.Focus)
	}
	m = press(t, m, tab)
	if m.Form.Focus != FieldTitle {
		t.Fatalf("expected wrap to title, got %d", m.Form.Focus)
	}
}

func TestEscResetsForm(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("n"), runes("draft"), esc)
	if m.Form.Active || m.fields[FieldTitle].Value() != "" {
		t.Fatalf("expected reset form, got %+v title=%q", m.Form, m.fields[FieldTitle].Value())
	}
	if len(h.svc.Tasks()) != 0 {
		t.Fatal("reset must not create a task")
	}
}

func TestEditKeepsCompletion(t *testing.T) {
	h := newHarness(t)
	seeded := h.seed(t, planner.FormInput{Title: "Lab report", Priority: "low"})
	m := press(t, h.model(), space)
	if task, _ := h.svc.Get(seeded.ID); !task.Completed {
		t.Fatal("expected space to complete the selected task")
	}

	m = press(t, m, runes("e"))
	if !m.Form.Active || m.Form.EditingID != seeded.ID {
		t.Fatalf("expected edit mode for %s, got %+v", seeded.ID, m.Form)
	}
	if m.fields[FieldTitle].Value() != "Lab report" || m.fields[FieldPriority].Value() != "low" {
		t.Fatal("expected form filled from the selected task")
	}
	if !strings.Contains(m.View(), "Edit Task") {
		t.Fatal("expected edit title in view")
	}

	m = press(t, m, tab, runes("Bio"), enter)
	task, _ := h.svc.Get(seeded.ID)
	if task.Subject != "Bio" || !task.Completed || task.Title != "Lab report" {
		t.Fatalf("unexpected edited task: %+v", task)
	}
	if len(h.svc.Tasks()) != 1 || m.Status.Text != "task updated: Lab report" {
		t.Fatalf("expected in-place update, status=%+v", m.Status)
	}
}

func TestEditWithoutSelection(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("e"))
	if m.Form.Active || !m.Status.IsError {
		t.Fatalf("expected error status without selection, got %+v", m.Status)
	}
}

func TestQuickAdd(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("a"), runes("Essay draft | 2026-02-11 14:00"), enter)
	tasks := h.svc.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Essay draft" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	want := time.Date(2026, 2, 11, 14, 0, 0, 0, time.Local)
	if !tasks[0].Due.Equal(want) {
		t.Fatalf("unexpected due %v", tasks[0].Due)
	}
	if m.QuickAdd || m.SelectedID != tasks[0].ID {
		t.Fatalf("expected quick add closed with selection, got quick=%v selected=%q", m.QuickAdd, m.SelectedID)
	}
}

func TestQuickAddEmptyLine(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("a"), enter)
	if !m.Status.IsError || !errors.Is(m.LastError, planner.ErrEmptyQuickAdd) {
		t.Fatalf("expected empty quick add error, got %v", m.LastError)
	}
	if len(m.Notifications) == 0 || m.Notifications[len(m.Notifications)-1].Level != "error" {
		t.Fatal("expected error notification")
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "one"})
	h.seed(t, planner.FormInput{Title: "two"})
	m := press(t, h.model(), runes("d"))
	if m.Confirm == nil || m.Confirm.Action != ConfirmDelete {
		t.Fatalf("expected delete confirmation, got %+v", m.Confirm)
	}
	if !strings.Contains(m.View(), `Delete "one"? [y/n]`) {
		t.Fatalf("expected prompt in view:\n%s", m.View())
	}

	m = press(t, m, runes("n"))
	if m.Confirm != nil || len(h.svc.Tasks()) != 2 {
		t.Fatal("declined delete must keep tasks")
	}

	m = press(t, m, runes("d"), runes("y"))
	tasks := h.svc.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "two" {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}
	if m.SelectedID != tasks[0].ID {
		t.Fatalf("expected selection to move to remaining task, got %q", m.SelectedID)
	}
}

func TestClearAllAfterConfirm(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "one", Due: "2026-02-10 09:00"})
	m := press(t, h.model(), runes("C"))
	if m.Confirm == nil || m.Confirm.Action != ConfirmClear {
		t.Fatalf("expected clear confirmation, got %+v", m.Confirm)
	}
	m = press(t, m, runes("x"))
	if m.Confirm == nil {
		t.Fatal("unrelated keys must not resolve the prompt")
	}
	m = press(t, m, runes("y"))
	if len(h.svc.Tasks()) != 0 || m.SelectedID != "" {
		t.Fatalf("expected empty collection, got %d tasks", len(h.svc.Tasks()))
	}
	if h.engine.Len() != 0 {
		t.Fatalf("expected no pending reminders, got %d", h.engine.Len())
	}
}

func TestFilterCycleAndSelection(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "today", Due: "2026-02-09 18:00"})
	h.seed(t, planner.FormInput{Title: "later", Due: "2026-03-20 18:00"})
	m := h.model()

	m = press(t, m, runes("f"))
	if m.Filter != agenda.FilterToday || len(m.snapshot.Items) != 1 || m.snapshot.Items[0].Title != "today" {
		t.Fatalf("unexpected today view: filter=%q items=%+v", m.Filter, m.snapshot.Items)
	}
	m = press(t, m, runes("f"), runes("f"))
	if m.Filter != agenda.FilterCompleted || m.SelectedID != "" {
		t.Fatalf("expected empty completed view, got filter=%q selected=%q", m.Filter, m.SelectedID)
	}
	m = press(t, m, runes("f"))
	if m.Filter != agenda.FilterAll {
		t.Fatalf("expected wrap to all, got %q", m.Filter)
	}
}

func TestMoveSelection(t *testing.T) {
	h := newHarness(t)
	first := h.seed(t, planner.FormInput{Title: "first"})
	second := h.seed(t, planner.FormInput{Title: "second"})
	m := h.model()
	if m.SelectedID != first.ID {
		t.Fatalf("expected first task selected, got %q", m.SelectedID)
	}
	m = press(t, m, runes("j"), runes("j"))
	if m.SelectedID != second.ID {
		t.Fatalf("expected selection clamped at second, got %q", m.SelectedID)
	}
	m = press(t, m, runes("k"))
	if m.SelectedID != first.ID {
		t.Fatalf("expected first task again, got %q", m.SelectedID)
	}
}

func TestCopySelected(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "Flashcards", Subject: "Spanish"})
	m := press(t, h.model(), runes("y"))
	if len(h.copied) != 1 || h.copied[0] != "Flashcards • Spanish • No due" {
		t.Fatalf("unexpected clipboard content: %q", h.copied)
	}
	if m.Status.IsError {
		t.Fatalf("unexpected error: %+v", m.Status)
	}

	h.copyErr = errors.New("no clipboard")
	m = press(t, m, runes("y"))
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no clipboard") {
		t.Fatalf("expected copy failure status, got %+v", m.Status)
	}
}

func runPalette(t *testing.T, m Model, line string) Model {
	t.Helper()
	return press(t, m, runes("/"), runes(line), enter)
}

func TestPaletteCommands(t *testing.T) {
	h := newHarness(t)
	m := h.model()

	m = runPalette(t, m, "add Past papers")
	if tasks := h.svc.Tasks(); len(tasks) != 1 || tasks[0].Title != "Past papers" {
		t.Fatalf("unexpected tasks after /add: %+v", tasks)
	}
	m = runPalette(t, m, "quick Mock exam | 2026-02-12 10:00")
	if len(h.svc.Tasks()) != 2 {
		t.Fatalf("expected 2 tasks after /quick, got %d", len(h.svc.Tasks()))
	}
	if m.Palette.Active {
		t.Fatal("palette should close after running a command")
	}

	m = runPalette(t, m, "filter upcoming")
	if m.Filter != agenda.FilterUpcoming || len(m.snapshot.Items) != 1 {
		t.Fatalf("unexpected upcoming view: %q %+v", m.Filter, m.snapshot.Items)
	}

	m = runPalette(t, m, "done")
	if task, _ := h.svc.Get(m.SelectedID); !task.Completed {
		t.Fatal("expected /done to complete the selected task")
	}

	m = runPalette(t, m, "filter sideways")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "invalid_argument") {
		t.Fatalf("expected invalid filter error, got %+v", m.Status)
	}
	m = runPalette(t, m, "bogus")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}
}

func TestPaletteExportImportRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "one", Due: "2026-02-10 09:00"})
	h.seed(t, planner.FormInput{Title: "two"})
	m := h.model()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "tasks.json")
	icsPath := filepath.Join(dir, "tasks.ics")
	m = runPalette(t, m, "export "+jsonPath)
	m = runPalette(t, m, "ics "+icsPath)
	if m.Status.IsError {
		t.Fatalf("unexpected export error: %+v", m.Status)
	}
	if raw, err := os.ReadFile(icsPath); err != nil || !strings.Contains(string(raw), "BEGIN:VEVENT") {
		t.Fatalf("expected ics file with an event, err=%v", err)
	}

	m = press(t, m, runes("C"), runes("y"))
	m = runPalette(t, m, "import "+jsonPath)
	if m.Status.Text != "Imported 2 tasks" {
		t.Fatalf("unexpected import status: %+v", m.Status)
	}
	if len(h.svc.Tasks()) != 2 {
		t.Fatalf("expected 2 tasks after import, got %d", len(h.svc.Tasks()))
	}

	m = runPalette(t, m, "import "+filepath.Join(dir, "missing.json"))
	if !m.Status.IsError || m.LastError == nil || !strings.Contains(m.Status.Text, "failed") {
		t.Fatalf("expected import failure, got %+v", m.Status)
	}
}

func TestPaletteDeleteConfirms(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "one"})
	m := runPalette(t, h.model(), "delete")
	if m.Confirm == nil || m.Confirm.Action != ConfirmDelete {
		t.Fatalf("expected delete confirmation, got %+v (status %+v)", m.Confirm, m.Status)
	}
	if !strings.Contains(m.View(), `Delete "one"? [y/n]`) {
		t.Fatalf("expected prompt in view:\n%s", m.View())
	}
	m = press(t, m, runes("y"))
	if len(h.svc.Tasks()) != 0 {
		t.Fatal("expected task deleted after confirmation")
	}
}

func TestPaletteClearConfirms(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "one"})
	m := runPalette(t, h.model(), "clear")
	if m.Confirm == nil || m.Confirm.Action != ConfirmClear {
		t.Fatalf("expected clear confirmation, got %+v (status %+v)", m.Confirm, m.Status)
	}
	m = press(t, m, runes("n"))
	if len(h.svc.Tasks()) != 1 {
		t.Fatal("declined clear must keep tasks")
	}
}

func TestPaletteEscCloses(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("/"), runes("add x"), esc)
	if m.Palette.Active || len(h.svc.Tasks()) != 0 {
		t.Fatal("esc should close the palette without running the command")
	}
}

func TestReminderDueMsgNotifies(t *testing.T) {
	h := newHarness(t)
	task := h.seed(t, planner.FormInput{Title: "Quiz", Subject: "Chem", Due: "2026-02-09 13:00"})
	m := h.model()
	ev := scheduler.ReminderEvent{ID: task.ID, TaskID: task.ID, TriggerAt: task.Due.Time}
	h.clock.Advance(time.Hour)

	updated, cmd := m.Update(ReminderDueMsg{Event: ev})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected the model to keep waiting for reminders")
	}
	last := m.Notifications[len(m.Notifications)-1]
	if last.Level != "reminder" || !strings.Contains(last.Body, model.ReminderTitlePrefix+"Quiz") {
		t.Fatalf("unexpected notification: %+v", last)
	}

	h.svc.Toggle(context.Background(), task.ID)
	before := len(m.Notifications)
	updated, _ = m.Update(ReminderDueMsg{Event: ev})
	if got := len(updated.(Model).Notifications); got != before {
		t.Fatal("completed task must not notify")
	}
}

func TestEngineDeliversReminderToModel(t *testing.T) {
	h := newHarness(t)
	h.engine.Start()
	h.seed(t, planner.FormInput{Title: "Revise", Due: "2026-02-09 13:00"})
	m := h.model()

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected reminder wait command")
	}
	h.clock.Advance(time.Hour)

	msgs := make(chan tea.Msg, 1)
	go func() { msgs <- cmd() }()
	select {
	case msg := <-msgs:
		due, ok := msg.(ReminderDueMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		m = press(t, m, due)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reminder")
	}
	if m.Status.Text != model.ReminderTitlePrefix+"Revise" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), runes("?"))
	if !m.HelpVisible || !strings.Contains(m.View(), "toggle help") {
		t.Fatal("expected help panel")
	}
	m = press(t, m, runes("?"))
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}

func TestQuitFlushes(t *testing.T) {
	h := newHarness(t)
	h.seed(t, planner.FormInput{Title: "one"})
	before := h.slot.Writes()
	updated, cmd := h.model().Update(runes("q"))
	m := updated.(Model)
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit command")
	}
	if h.slot.Writes() <= before {
		t.Fatal("expected a save on quit")
	}
}

func TestStatusAndErrorMessages(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.model(), SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = press(t, m, AppErrorMsg{Err: errors.New("boom")})
	if !m.Status.IsError || m.LastError == nil || m.LastError.Error() != "boom" {
		t.Fatalf("unexpected error state: %+v %v", m.Status, m.LastError)
	}
	m = press(t, m, ClearStatusMsg{})
	if m.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", m.Status)
	}
}
