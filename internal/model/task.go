package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingID        = errors.New("model: task id is required")
	ErrInvalidPriority  = errors.New("model: invalid task priority")
	ErrNegativeDuration = errors.New("model: task duration must not be negative")
)

const DefaultTitle = "Untitled"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority maps free-form input onto a priority, falling back to medium.
func ParsePriority(raw string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return PriorityMedium
	}
	return p
}

type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Due       DueTime   `json:"due"`
	Duration  int       `json:"duration"`
	Priority  Priority  `json:"priority"`
	Notes     string    `json:"notes"`
	Completed bool      `json:"completed"`
	Created   time.Time `json:"created"`
}

// NewID returns a short opaque task identifier.
func NewID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "t_" + raw[:12]
}

func (t Task) HasDue() bool {
	return !t.Due.IsZero()
}

// Normalize applies the field defaults every stored task carries.
func (t Task) Normalize() Task {
	t.ID = strings.TrimSpace(t.ID)
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		t.Title = DefaultTitle
	}
	t.Subject = strings.TrimSpace(t.Subject)
	t.Notes = strings.TrimSpace(t.Notes)
	if t.Duration < 0 {
		t.Duration = 0
	}
	t.Priority = ParsePriority(string(t.Priority))
	return t
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.Duration < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeDuration, t.Duration)
	}
	return nil
}

// DisplayTitle is the title with a completion marker.
func (t Task) DisplayTitle() string {
	if t.Completed {
		return t.Title + " ✅"
	}
	return t.Title
}

// Patch carries the subset of task fields supplied by an edit. Nil fields are
// left untouched when applied; Created is never patched.
type Patch struct {
	ID        string
	Title     *string
	Subject   *string
	Due       *DueTime
	Duration  *int
	Priority  *Priority
	Notes     *string
	Completed *bool
}

func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Subject != nil {
		t.Subject = *p.Subject
	}
	if p.Due != nil {
		t.Due = *p.Due
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// PatchFrom builds a patch that sets every mutable field of t.
func PatchFrom(t Task) Patch {
	return Patch{
		ID:        t.ID,
		Title:     &t.Title,
		Subject:   &t.Subject,
		Due:       &t.Due,
		Duration:  &t.Duration,
		Priority:  &t.Priority,
		Notes:     &t.Notes,
		Completed: &t.Completed,
	}
}
