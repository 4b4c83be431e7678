// Package view derives what to display from the task collection: the status
// and time-bucket filters, and the escaped display model the front-ends render.
package view

import (
	"fmt"
	"strings"
	"time"

	"todolist/internal/task"
)

type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// TimeFilter selects a time bucket. The zero value means no time filtering.
type TimeFilter string

const (
	TimeNone    TimeFilter = ""
	TimeToday   TimeFilter = TimeFilter(task.CategoryToday)
	TimeWeekly  TimeFilter = TimeFilter(task.CategoryWeekly)
	TimeMonthly TimeFilter = TimeFilter(task.CategoryMonthly)
)

func ParseTimeFilter(s string) (TimeFilter, error) {
	switch tf := TimeFilter(strings.ToLower(strings.TrimSpace(s))); tf {
	case "", "none", "any":
		return TimeNone, nil
	case TimeToday, TimeWeekly, TimeMonthly:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown time filter %q", s)
	}
}

type Query struct {
	Status    Status
	Time      TimeFilter
	WeekStart time.Weekday
}

// Range is the half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

type Windows struct {
	Today Range
	Week  Range
	Month Range
}

func (w Windows) For(tf TimeFilter) (Range, bool) {
	switch tf {
	case TimeToday:
		return w.Today, true
	case TimeWeekly:
		return w.Week, true
	case TimeMonthly:
		return w.Month, true
	}
	return Range{}, false
}

// Bounds computes the calendar buckets containing now, in now's location.
// Day arithmetic goes through time.Date so DST days keep midnight boundaries.
func Bounds(now time.Time, weekStart time.Weekday) Windows {
	loc := now.Location()
	y, m, d := now.Date()

	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	back := (int(today.Weekday()) - int(weekStart) + 7) % 7

	return Windows{
		Today: Range{Start: today, End: time.Date(y, m, d+1, 0, 0, 0, 0, loc)},
		Week: Range{
			Start: time.Date(y, m, d-back, 0, 0, 0, 0, loc),
			End:   time.Date(y, m, d-back+7, 0, 0, 0, 0, loc),
		},
		Month: Range{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, m+1, 1, 0, 0, 0, 0, loc),
		},
	}
}

func matchesStatus(t task.Task, s Status) bool {
	switch s {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

func matchesTime(t task.Task, tf TimeFilter, w Windows) bool {
	if tf == TimeNone {
		return true
	}
	if t.Category != nil {
		return TimeFilter(*t.Category) == tf
	}
	r, ok := w.For(tf)
	if !ok {
		return true
	}
	return r.Contains(t.CreatedAt)
}

// Apply returns the tasks passing both the status and the time stage, in
// collection order. It does not modify tasks.
func Apply(tasks []task.Task, q Query, now time.Time) []task.Task {
	w := Bounds(now, q.WeekStart)

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesStatus(t, q.Status) {
			continue
		}
		if !matchesTime(t, q.Time, w) {
			continue
		}
		out = append(out, t)
	}
	return out
}
