package view

import (
	"time"

	"github.com/a-h/templ"

	"todolist/internal/task"
)

// Item is one display row. Text is HTML-escaped and safe to place in markup;
// Plain is the raw text for terminal and document output.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Plain     string    `json:"-"`
	Completed bool      `json:"completed"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func Render(tasks []task.Task) []Item {
	out := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		it := Item{
			ID:        t.ID,
			Text:      Escape(t.Text),
			Plain:     t.Text,
			Completed: t.Completed,
			CreatedAt: t.CreatedAt,
		}
		if t.Category != nil {
			it.Category = string(*t.Category)
		}
		out = append(out, it)
	}
	return out
}

// Escape replaces & < > " and ' with HTML entities.
func Escape(s string) string {
	return templ.EscapeString(s)
}

// Model is the full display state for one render.
type Model struct {
	Items  []Item     `json:"items"`
	Status Status     `json:"status"`
	Time   TimeFilter `json:"time"`
	Total  int        `json:"total"`
}

func Build(tasks []task.Task, q Query, now time.Time) Model {
	status := q.Status
	if status == "" {
		status = StatusAll
	}
	return Model{
		Items:  Render(Apply(tasks, q, now)),
		Status: status,
		Time:   q.Time,
		Total:  len(tasks),
	}
}
