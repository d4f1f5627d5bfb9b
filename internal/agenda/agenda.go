package agenda

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/studyplan/internal/model"
)

var ErrUnknownFilter = errors.New("agenda: unknown filter")

type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterCompleted Filter = "completed"
)

// Filters lists the filter modes in selector order.
var Filters = []Filter{FilterAll, FilterToday, FilterUpcoming, FilterCompleted}

// UpcomingWindow is how far ahead the upcoming filter looks.
const UpcomingWindow = 7 * 24 * time.Hour

const (
	minBarWidth       = 6.0
	defaultBarMinutes = 30
	minutesPerDay     = 24 * 60
)

func ParseFilter(raw string) (Filter, error) {
	v := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if f == v {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, raw)
}

// Next returns the filter after f in selector order, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

type Summary struct {
	Total    int
	Upcoming int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d tasks • %d upcoming", s.Total, s.Upcoming)
}

// Banner names the nearest open dated task, if any.
type Banner struct {
	Task  model.Task
	Found bool
}

func (b Banner) String() string {
	if !b.Found {
		return "No reminders scheduled"
	}
	return fmt.Sprintf("Next: %s • %s", b.Task.Title, b.Task.Due.Pretty())
}

// TimelineRow places one dated task on a 0-100 scale. Left and Width are
// percentages of the row; Progress is 100 for completed tasks.
type TimelineRow struct {
	Task     model.Task
	Left     float64
	Width    float64
	Progress int
}

type Snapshot struct {
	Filter   Filter
	Now      time.Time
	Summary  Summary
	Next     Banner
	Items    []model.Task
	Timeline []TimelineRow
}

// Build derives everything the views display from a store snapshot. The
// summary and banner cover every task; the list and timeline cover the
// filtered set.
func Build(tasks []model.Task, filter Filter, now time.Time) Snapshot {
	items := Apply(tasks, filter, now)
	return Snapshot{
		Filter:   filter,
		Now:      now,
		Summary:  Summarize(tasks, now),
		Next:     NextDue(tasks),
		Items:    items,
		Timeline: Layout(items),
	}
}

// Summarize counts all tasks and the open ones still due in the future.
func Summarize(tasks []model.Task, now time.Time) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if t.HasDue() && !t.Completed && t.Due.After(now) {
			s.Upcoming++
		}
	}
	return s
}

// NextDue picks the open dated task with the earliest due time. Overdue tasks
// qualify; ties go to the earlier task in store order.
func NextDue(tasks []model.Task) Banner {
	var out Banner
	for _, t := range tasks {
		if !t.HasDue() || t.Completed {
			continue
		}
		if !out.Found || t.Due.Before(out.Task.Due.Time) {
			out = Banner{Task: t, Found: true}
		}
	}
	return out
}

func Matches(t model.Task, filter Filter, now time.Time) bool {
	switch filter {
	case FilterToday:
		return t.HasDue() && sameDay(t.Due.In(now.Location()), now)
	case FilterUpcoming:
		return t.HasDue() && !t.Due.Before(now) && !t.Due.After(now.Add(UpcomingWindow))
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Apply filters tasks and sorts them by due time. Undated tasks sort first;
// equal keys keep store order.
func Apply(tasks []model.Task, filter Filter, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, filter, now) {
			out = append(out, t)
		}
	}
	sortByDue(out)
	return out
}

// Layout positions the dated tasks between the earliest and latest due time.
// Bar width is the task's share of a day, at least minBarWidth.
func Layout(tasks []model.Task) []TimelineRow {
	dated := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.HasDue() {
			dated = append(dated, t)
		}
	}
	if len(dated) == 0 {
		return nil
	}
	sortByDue(dated)

	first := dated[0].Due.Time
	span := dated[len(dated)-1].Due.Sub(first)
	if span < time.Millisecond {
		span = time.Millisecond
	}

	rows := make([]TimelineRow, 0, len(dated))
	for _, t := range dated {
		row := TimelineRow{
			Task:  t,
			Left:  float64(t.Due.Sub(first)) / float64(span) * 100,
			Width: barWidth(t.Duration),
		}
		if t.Completed {
			row.Progress = 100
		}
		rows = append(rows, row)
	}
	return rows
}

func barWidth(minutes int) float64 {
	if minutes <= 0 {
		minutes = defaultBarMinutes
	}
	w := float64(minutes) / minutesPerDay * 100
	if w < minBarWidth {
		w = minBarWidth
	}
	if w > 100 {
		w = 100
	}
	return w
}

func sortByDue(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return dueKey(tasks[i]).Before(dueKey(tasks[j]))
	})
}

func dueKey(t model.Task) time.Time {
	if !t.HasDue() {
		return time.Time{}
	}
	return t.Due.Time
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
