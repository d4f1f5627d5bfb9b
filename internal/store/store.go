package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/sandeepkv93/studyplan/internal/model"
	"github.com/sandeepkv93/studyplan/internal/storage"
)

// SlotKey is the fixed persistence key the collection lives under.
const SlotKey = "smartStudyPlannerTasks"

var (
	ErrNotFound     = errors.New("store: task not found")
	ErrNotSequence  = errors.New("store: payload is not a sequence of tasks")
	ErrNotTask      = errors.New("store: element is not a task record")
	ErrDuplicateID  = errors.New("store: duplicate task id")
	ErrInvalidPatch = errors.New("store: patch has no id")
)

// Store owns the task collection. Every mutation writes the full collection
// back to the slot before returning.
type Store struct {
	mu    sync.Mutex
	slot  storage.Slot
	tasks []model.Task
	now   func() time.Time
	log   logr.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logr.Logger) Option {
	return func(s *Store) { s.log = l }
}

func New(slot storage.Slot, opts ...Option) *Store {
	s := &Store{slot: slot, now: time.Now, log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one. Missing or
// malformed data yields an empty collection.
func (s *Store) Load(ctx context.Context) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = s.readSlot(ctx)
	return cloneTasks(s.tasks)
}

// LastSaved reports when the collection was last written, for slots that
// keep write times.
func (s *Store) LastSaved(ctx context.Context) (time.Time, bool) {
	stamped, ok := s.slot.(storage.Stamped)
	if !ok {
		return time.Time{}, false
	}
	at, err := stamped.UpdatedAt(ctx, SlotKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error(err, "read task slot write time")
		}
		return time.Time{}, false
	}
	return at, true
}

func (s *Store) readSlot(ctx context.Context) []model.Task {
	raw, err := s.slot.Read(ctx, SlotKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error(err, "read task slot")
		}
		return []model.Task{}
	}
	tasks, err := Decode(raw)
	if err != nil {
		s.log.Info("discarding malformed task slot", "error", err.Error())
		return []model.Task{}
	}
	if repaired := repairIDs(tasks); repaired > 0 {
		s.log.Info("repaired task ids in slot", "count", repaired)
	}
	return tasks
}

// repairIDs gives every task a unique id in place: missing ids are generated
// and later duplicates of an id are re-keyed. It returns how many changed.
func repairIDs(tasks []model.Task) int {
	seen := make(map[string]bool, len(tasks))
	repaired := 0
	for i := range tasks {
		if tasks[i].ID == "" || seen[tasks[i].ID] {
			tasks[i].ID = model.NewID()
			repaired++
		}
		seen[tasks[i].ID] = true
	}
	return repaired
}

// Save writes tasks as the whole collection.
func (s *Store) Save(ctx context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = cloneTasks(tasks)
	return s.persist(ctx)
}

// Flush writes the current collection without changing it.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	raw, err := json.Marshal(s.tasksOrEmpty())
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.slot.Write(ctx, SlotKey, raw); err != nil {
		return fmt.Errorf("write task slot: %w", err)
	}
	s.log.V(1).Info("tasks saved", "count", len(s.tasks))
	return nil
}

func (s *Store) tasksOrEmpty() []model.Task {
	if s.tasks == nil {
		return []model.Task{}
	}
	return s.tasks
}

// Snapshot returns a copy of the collection in insertion order.
func (s *Store) Snapshot() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// Upsert merges the supplied fields into the task with p.ID, or appends a new
// task built from p when no such task exists. It returns the stored task.
func (s *Store) Upsert(ctx context.Context, p model.Patch) (model.Task, error) {
	if p.ID == "" {
		return model.Task{}, ErrInvalidPatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out model.Task
	if i := s.indexOf(p.ID); i >= 0 {
		out = p.Apply(s.tasks[i]).Normalize()
		s.tasks[i] = out
	} else {
		out = p.Apply(model.Task{ID: p.ID, Priority: model.PriorityMedium, Created: s.now()}).Normalize()
		s.tasks = append(s.tasks, out)
	}
	return out, s.persist(ctx)
}

// Remove deletes the task with id. Removing an unknown id is a no-op and
// reports false.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true, s.persist(ctx)
}

// Toggle flips the completion flag of id.
func (s *Store) Toggle(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return s.tasks[i], s.persist(ctx)
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = []model.Task{}
	return s.persist(ctx)
}

// ReplaceAll decodes raw as a task sequence and swaps it in wholesale. On any
// decode or write error the current collection is left untouched.
func (s *Store) ReplaceAll(ctx context.Context, raw []byte) ([]model.Task, error) {
	tasks, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = model.NewID()
		}
	}
	if err := checkUniqueIDs(tasks); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.tasks
	s.tasks = tasks
	if err := s.persist(ctx); err != nil {
		s.tasks = previous
		return nil, err
	}
	return cloneTasks(tasks), nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func checkUniqueIDs(tasks []model.Task) error {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	copy(out, in)
	return out
}
