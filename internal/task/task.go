package task

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyText = errors.New("task text is empty")
	ErrPersist   = errors.New("persist tasks")
)

// Category is an explicit time bucket chosen when a task is created. When set it
// takes precedence over createdAt for time filtering.
type Category string

const (
	CategoryToday   Category = "today"
	CategoryWeekly  Category = "weekly"
	CategoryMonthly Category = "monthly"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryToday, CategoryWeekly, CategoryMonthly:
		return true
	}
	return false
}

// ParseCategory accepts the three bucket names case-insensitively. An empty
// string yields nil with no error.
func ParseCategory(s string) (*Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return nil, nil
	}
	c := Category(s)
	if !c.Valid() {
		return nil, errors.New("unknown category: " + s)
	}
	return &c, nil
}

type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	Category  *Category `json:"category"`
}

func (t Task) HasCategory() bool {
	return t.Category != nil
}

func newTask(text string, category *Category, now time.Time) Task {
	var cat *Category
	if category != nil {
		c := *category
		cat = &c
	}
	return Task{
		ID:        NewID(),
		Text:      text,
		Completed: false,
		CreatedAt: now,
		Category:  cat,
	}
}

func cloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	copy(out, in)
	return out
}
