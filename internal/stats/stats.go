// Package stats summarizes a task collection for the stats command and
// GET /api/stats.
package stats

import (
	"math"
	"time"

	"todolist/internal/task"
)

type Stats struct {
	Period         string         `json:"period"`
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Pending        int            `json:"pending"`
	ByCategory     map[string]int `json:"by_category"`
	Uncategorized  int            `json:"uncategorized"`
	CreatedSince   int            `json:"created_since"`
	CreatedPerDay  float64        `json:"created_per_day"`
	CompletionRate float64        `json:"completion_rate"`
}

// Calculate counts tasks by status and category, and the creation rate over
// [since, now]. Tasks created after now are ignored for the rate.
func Calculate(tasks []task.Task, since, now time.Time) Stats {
	s := Stats{
		Period: since.Format("2006-01-02"),
		Total:  len(tasks),
		ByCategory: map[string]int{
			string(task.CategoryToday):   0,
			string(task.CategoryWeekly):  0,
			string(task.CategoryMonthly): 0,
		},
	}

	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
		}
		if t.Category != nil {
			s.ByCategory[string(*t.Category)]++
		} else {
			s.Uncategorized++
		}
		if !t.CreatedAt.Before(since) && !t.CreatedAt.After(now) {
			s.CreatedSince++
		}
	}

	if days := now.Sub(since).Hours() / 24; days > 0 {
		s.CreatedPerDay = round2(float64(s.CreatedSince) / math.Max(days, 1))
	}
	if s.Total > 0 {
		s.CompletionRate = round2(float64(s.Completed) / float64(s.Total))
	}
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
