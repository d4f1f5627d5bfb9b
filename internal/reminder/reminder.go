package reminder

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/sandeepkv93/studyplan/internal/model"
	"github.com/sandeepkv93/studyplan/internal/scheduler"
)

// DefaultHorizon bounds how far ahead a reminder is armed.
const DefaultHorizon = 7 * 24 * time.Hour

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a config value onto a permission state. Anything that
// is not an explicit yes or no leaves the decision open.
func ParsePermission(raw string) Permission {
	switch raw {
	case "1", "true", "yes", "y", "on", string(PermissionGranted):
		return PermissionGranted
	case "0", "false", "no", "n", "off", string(PermissionDenied):
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// ArmResult says what Arm did with a task.
type ArmResult string

const (
	ArmScheduled  ArmResult = "scheduled"
	ArmNoDue      ArmResult = "no_due"
	ArmCompleted  ArmResult = "completed"
	ArmPast       ArmResult = "past"
	ArmBeyond     ArmResult = "beyond_horizon"
	ArmEngineFail ArmResult = "engine_error"
)

// Scheduler arms one deferred reminder per task on top of the engine.
type Scheduler struct {
	engine     *scheduler.Engine
	clock      scheduler.Clock
	horizon    time.Duration
	notifier   DesktopNotifier
	permission Permission
	log        logr.Logger
}

type Option func(*Scheduler)

func WithHorizon(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.horizon = d
		}
	}
}

func WithNotifier(n DesktopNotifier) Option {
	return func(s *Scheduler) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithPermission(p Permission) Option {
	return func(s *Scheduler) { s.permission = p }
}

func WithLogger(l logr.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

func New(engine *scheduler.Engine, opts ...Option) *Scheduler {
	s := &Scheduler{
		engine:     engine,
		clock:      engine.Clock(),
		horizon:    DefaultHorizon,
		notifier:   NoopNotifier{},
		permission: PermissionDefault,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Engine() *scheduler.Engine {
	return s.engine
}

func (s *Scheduler) Horizon() time.Duration {
	return s.horizon
}

// Arm schedules a reminder at the task's due time when it falls within the
// horizon. Re-arming replaces the pending reminder for the same id.
func (s *Scheduler) Arm(t model.Task) ArmResult {
	if !t.HasDue() {
		return ArmNoDue
	}
	if t.Completed {
		return ArmCompleted
	}
	delay := t.Due.Sub(s.clock.Now())
	if delay <= 0 {
		return ArmPast
	}
	s.engine.Cancel(t.ID)
	if delay > s.horizon {
		return ArmBeyond
	}
	err := s.engine.Schedule(scheduler.ReminderEvent{ID: t.ID, TaskID: t.ID, TriggerAt: t.Due.Time})
	if err != nil {
		s.log.Error(err, "arm reminder", "task", t.ID)
		return ArmEngineFail
	}
	s.log.V(1).Info("reminder armed", "task", t.ID, "due", t.Due.Time, "delay", delay.String())
	return ArmScheduled
}

// ArmAll arms every task and returns how many reminders ended up scheduled.
func (s *Scheduler) ArmAll(tasks []model.Task) int {
	armed := 0
	for _, t := range tasks {
		if s.Arm(t) == ArmScheduled {
			armed++
		}
	}
	return armed
}

// Cancel clears the pending reminder for id, if any.
func (s *Scheduler) Cancel(id string) bool {
	return s.engine.Cancel(id)
}

func (s *Scheduler) Pending(id string) bool {
	return s.engine.Pending(id)
}

func (s *Scheduler) Permission() Permission {
	return s.permission
}

// RequestPermission resolves an undecided permission by probing the desktop
// notifier. Decided states are returned unchanged.
func (s *Scheduler) RequestPermission() Permission {
	if s.permission != PermissionDefault {
		return s.permission
	}
	if s.notifier.Available() {
		s.permission = PermissionGranted
	} else {
		s.permission = PermissionDenied
	}
	s.log.Info("notification permission resolved", "permission", string(s.permission))
	return s.permission
}

// Fire builds the reminder notification for t and sends it to the desktop
// when permission is granted. Delivery failures and denial are silent; the
// notification is always returned for in-app display.
func (s *Scheduler) Fire(t model.Task) model.Notification {
	s.engine.Cancel(t.ID)
	note := model.ReminderFor(t)
	if s.permission != PermissionGranted {
		return note
	}
	if err := s.notifier.Send(note); err != nil {
		s.log.Error(err, "desktop notification failed", "task", t.ID)
	}
	return note
}
