package view

//go:generate templ generate

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"
)

// PageData is everything Page needs to render one request.
type PageData struct {
	Model
	// Notice is a user-facing message such as "Input is empty!".
	Notice string
}

var statusLinks = []struct {
	Status Status
	Label  string
}{
	{StatusAll, "All"},
	{StatusPending, "Pending"},
	{StatusCompleted, "Completed"},
}

var timeLinks = []struct {
	Time  TimeFilter
	Label string
}{
	{TimeToday, "Today"},
	{TimeWeekly, "Weekly"},
	{TimeMonthly, "Monthly"},
}

// FilterQuery encodes a status/time pair as URL query parameters.
func FilterQuery(s Status, tf TimeFilter) string {
	v := url.Values{}
	v.Set("status", string(s))
	if tf != TimeNone {
		v.Set("time", string(tf))
	}
	return v.Encode()
}

func statusHref(m Model, s Status) templ.SafeURL {
	return templ.URL("/?" + FilterQuery(s, m.Time))
}

// timeHref links to a time bucket; the active bucket links back to no bucket.
func timeHref(m Model, tf TimeFilter) templ.SafeURL {
	if m.Time == tf {
		tf = TimeNone
	}
	return templ.URL("/?" + FilterQuery(m.Status, tf))
}

func taskAction(id, verb string) templ.SafeURL {
	return templ.URL("/tasks/" + url.PathEscape(id) + "/" + verb)
}

func countLabel(m Model) string {
	return fmt.Sprintf("%d of %d", len(m.Items), m.Total)
}
