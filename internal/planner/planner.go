package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/sandeepkv93/studyplan/internal/agenda"
	"github.com/sandeepkv93/studyplan/internal/model"
	"github.com/sandeepkv93/studyplan/internal/reminder"
	"github.com/sandeepkv93/studyplan/internal/scheduler"
	"github.com/sandeepkv93/studyplan/internal/store"
)

var (
	ErrEmptyQuickAdd = errors.New("planner: quick add is empty")
	ErrInvalidImport = errors.New("planner: invalid import format")
	ErrImportFailed  = errors.New("planner: import failed")
)

// Service is the mutation surface the UI drives. Each mutation persists and
// cancels the affected reminder; Render re-arms.
type Service struct {
	store     *store.Store
	reminders *reminder.Scheduler
	now       func() time.Time
	loc       *time.Location
	log       logr.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(l logr.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(st *store.Store, rem *reminder.Scheduler, opts ...Option) *Service {
	s := &Service{
		store:     st,
		reminders: rem,
		now:       rem.Engine().Clock().Now,
		loc:       time.Local,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Reminders() *reminder.Scheduler {
	return s.reminders
}

func (s *Service) Tasks() []model.Task {
	return s.store.Snapshot()
}

func (s *Service) Get(id string) (model.Task, bool) {
	return s.store.Get(id)
}

// Submit creates or edits a task from form input. An empty ID creates a new
// task; completion state is never changed by an edit.
func (s *Service) Submit(ctx context.Context, in FormInput) (model.Task, error) {
	p := in.Patch(s.loc)
	if p.ID == "" {
		p.ID = model.NewID()
	}
	t, err := s.store.Upsert(ctx, p)
	if err != nil {
		return model.Task{}, err
	}
	s.reminders.Cancel(t.ID)
	if t.HasDue() && s.reminders.Permission() == reminder.PermissionDefault {
		s.reminders.RequestPermission()
	}
	s.log.V(1).Info("task submitted", "task", t.ID, "edit", in.ID != "")
	return t, nil
}

// QuickAdd parses "title | when" and always creates a new task. An
// unparseable when leaves the task undated.
func (s *Service) QuickAdd(ctx context.Context, line string) (model.Task, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.Task{}, ErrEmptyQuickAdd
	}
	parts := strings.Split(line, "|")
	title := strings.TrimSpace(parts[0])
	p := model.Patch{ID: model.NewID(), Title: &title}
	if len(parts) > 1 {
		if due, ok := model.ParseDue(parts[1], s.loc); ok {
			p.Due = &due
		}
	}
	t, err := s.store.Upsert(ctx, p)
	if err != nil {
		return model.Task{}, err
	}
	s.log.V(1).Info("task quick-added", "task", t.ID, "dated", t.HasDue())
	return t, nil
}

// Import replaces the whole collection with the JSON array read from r and
// returns how many tasks it now holds. On error the collection is untouched.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}
	previous := s.store.Snapshot()
	tasks, err := s.store.ReplaceAll(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotSequence), errors.Is(err, store.ErrNotTask), errors.Is(err, store.ErrDuplicateID):
			return 0, fmt.Errorf("%w: %w", ErrInvalidImport, err)
		default:
			return 0, fmt.Errorf("%w: %w", ErrImportFailed, err)
		}
	}
	for _, t := range previous {
		s.reminders.Cancel(t.ID)
	}
	s.log.Info("tasks imported", "count", len(tasks))
	return len(tasks), nil
}

func (s *Service) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}
	defer f.Close()
	return s.Import(ctx, f)
}

// Export writes the whole collection as a pretty-printed JSON array.
func (s *Service) Export(w io.Writer) error {
	raw, err := store.EncodeIndent(s.store.Snapshot())
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	_, err = w.Write(append(raw, '\n'))
	return err
}

func (s *Service) ExportFile(path string) error {
	return writeFileAtomic(path, s.Export)
}

func (s *Service) ExportICSFile(path string) error {
	return writeFileAtomic(path, s.ExportICS)
}

// Delete removes id and its pending reminder.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	s.reminders.Cancel(id)
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.log.V(1).Info("task deleted", "task", id)
	}
	return removed, nil
}

// Toggle flips completion of id and cancels its pending reminder.
func (s *Service) Toggle(ctx context.Context, id string) (model.Task, error) {
	s.reminders.Cancel(id)
	return s.store.Toggle(ctx, id)
}

// Clear empties the collection and cancels every pending reminder.
func (s *Service) Clear(ctx context.Context) error {
	for _, t := range s.store.Snapshot() {
		s.reminders.Cancel(t.ID)
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("tasks cleared")
	return nil
}

// Render re-arms reminders for the current collection and derives the view
// data for filter.
func (s *Service) Render(filter agenda.Filter) agenda.Snapshot {
	tasks := s.store.Snapshot()
	armed := s.reminders.ArmAll(tasks)
	s.log.V(2).Info("render", "filter", string(filter), "tasks", len(tasks), "armed", armed)
	return agenda.Build(tasks, filter, s.now())
}

// Fire resolves a delivered reminder event against the current collection.
// Tasks that were deleted or completed since arming produce nothing. An event
// armed for an earlier due date, or delivered before the due instant, is
// stale and leaves the task's current reminder pending.
func (s *Service) Fire(ev scheduler.ReminderEvent) (model.Notification, bool) {
	t, ok := s.store.Get(ev.TaskID)
	if !ok || t.Completed || !t.HasDue() {
		s.reminders.Cancel(ev.TaskID)
		return model.Notification{}, false
	}
	if !t.Due.Equal(ev.TriggerAt) || s.now().Before(t.Due.Time) {
		s.log.V(1).Info("stale reminder skipped", "task", t.ID, "trigger", ev.TriggerAt, "due", t.Due.Time)
		return model.Notification{}, false
	}
	note := s.reminders.Fire(t)
	s.log.Info("reminder fired", "task", t.ID)
	return note, true
}

// Flush saves the collection as it stands, for use on quit.
func (s *Service) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("planner: empty output path")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
