package planner

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/studyplan/internal/model"
)

// FormInput holds the raw form field values. ID is empty in create mode.
type FormInput struct {
	ID       string
	Title    string
	Subject  string
	Due      string
	Duration string
	Priority string
	Notes    string
}

// Patch coerces the form into a task patch: strings are trimmed, an invalid
// due date becomes "no due", duration becomes a non-negative whole number of
// minutes and priority falls back to medium.
func (in FormInput) Patch(loc *time.Location) model.Patch {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = model.DefaultTitle
	}
	subject := strings.TrimSpace(in.Subject)
	notes := strings.TrimSpace(in.Notes)
	due, _ := model.ParseDue(in.Due, loc)
	duration := ParseDuration(in.Duration)
	priority := model.ParsePriority(in.Priority)
	return model.Patch{
		ID:       strings.TrimSpace(in.ID),
		Title:    &title,
		Subject:  &subject,
		Due:      &due,
		Duration: &duration,
		Priority: &priority,
		Notes:    &notes,
	}
}

// ParseDuration reads a minute count. Anything unparseable or negative is 0;
// fractions are truncated.
func ParseDuration(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// FormFromTask fills the form for editing t.
func FormFromTask(t model.Task) FormInput {
	in := FormInput{
		ID:       t.ID,
		Title:    t.Title,
		Subject:  t.Subject,
		Priority: string(t.Priority),
		Notes:    t.Notes,
	}
	if t.HasDue() {
		in.Due = t.Due.Local().Format(model.DueLayout)
	}
	if t.Duration > 0 {
		in.Duration = strconv.Itoa(t.Duration)
	}
	return in
}
