package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"todolist/internal/task"
)

func cat(c task.Category) *task.Category { return &c }

func TestCalculate(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -7)
	tasks := []task.Task{
		{ID: "a", Text: "a", Completed: true, CreatedAt: now.AddDate(0, 0, -1), Category: cat(task.CategoryToday)},
		{ID: "b", Text: "b", CreatedAt: now.AddDate(0, 0, -2), Category: cat(task.CategoryWeekly)},
		{ID: "c", Text: "c", CreatedAt: now.AddDate(0, 0, -30)},
		{ID: "d", Text: "d", Completed: true, CreatedAt: now.AddDate(0, 0, -3), Category: cat(task.CategoryToday)},
	}

	s := Calculate(tasks, since, now)
	assert.Equal(t, "2026-10-07", s.Period)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, map[string]int{"today": 2, "weekly": 1, "monthly": 0}, s.ByCategory)
	assert.Equal(t, 1, s.Uncategorized)
	assert.Equal(t, 3, s.CreatedSince)
	assert.InDelta(t, 0.43, s.CreatedPerDay, 0.001)
	assert.InDelta(t, 0.5, s.CompletionRate, 0.001)
}

func TestCalculate_Empty(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s := Calculate(nil, now, now)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.CreatedPerDay)
	assert.Zero(t, s.CompletionRate)
}
