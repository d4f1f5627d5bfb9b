package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DueLayout is the minute-precision local layout due dates are stored in.
const DueLayout = "2006-01-02T15:04"

var dueInputLayouts = []string{
	DueLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// DueTime is an optional due instant held at minute precision, the
// precision it is stored at. The zero value means no due date.
type DueTime struct {
	time.Time
}

// NewDueTime drops anything finer than a minute from t.
func NewDueTime(t time.Time) DueTime {
	if t.IsZero() {
		return DueTime{}
	}
	return DueTime{Time: t.Truncate(time.Minute)}
}

// ParseDue parses user or stored input in loc. Unparseable input yields the
// zero value and false.
func ParseDue(raw string, loc *time.Location) (DueTime, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DueTime{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDueTime(t.In(loc)), true
	}
	for _, layout := range dueInputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return NewDueTime(t), true
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return NewDueTime(t), true
	}
	return DueTime{}, false
}

func (d DueTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Local().Format(DueLayout))
}

// UnmarshalJSON never fails on a bad value: an unparseable due date is treated
// as absent.
func (d *DueTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.Time = time.Time{}
		return nil
	}
	parsed, _ := ParseDue(s, time.Local)
	*d = parsed
	return nil
}

// Pretty formats the due date for display.
func (d DueTime) Pretty() string {
	if d.IsZero() {
		return "No due"
	}
	return d.Local().Format("Mon Jan 2 2006 15:04")
}
