package planner

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sandeepkv93/studyplan/internal/model"
)

const icsDefaultMinutes = 30

// ExportICS writes one VEVENT per dated task. Undated tasks have no place on
// a calendar and are skipped.
func (s *Service) ExportICS(w io.Writer) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//studyplan//tasks//EN")

	stamp := s.now().UTC()
	for _, t := range s.store.Snapshot() {
		if !t.HasDue() {
			continue
		}
		addTaskEvent(cal, t, stamp)
	}
	return cal.SerializeTo(w)
}

func addTaskEvent(cal *ical.Calendar, t model.Task, stamp time.Time) {
	minutes := t.Duration
	if minutes <= 0 {
		minutes = icsDefaultMinutes
	}
	start := t.Due.Time
	evt := cal.AddEvent(t.ID)
	evt.SetDtStampTime(stamp)
	evt.SetStartAt(start)
	evt.SetEndAt(start.Add(time.Duration(minutes) * time.Minute))
	evt.SetSummary(t.DisplayTitle())
	if desc := eventDescription(t); desc != "" {
		evt.SetDescription(desc)
	}
	if !t.Created.IsZero() {
		evt.SetCreatedTime(t.Created)
	}
}

func eventDescription(t model.Task) string {
	lines := make([]string, 0, 3)
	if t.Subject != "" {
		lines = append(lines, "Subject: "+t.Subject)
	}
	lines = append(lines, "Priority: "+string(t.Priority))
	if t.Notes != "" {
		lines = append(lines, t.Notes)
	}
	return strings.Join(lines, "\n")
}
