package export

import (
	"strings"
	"time"

	"todolist/internal/view"
)

const icsStampLayout = "20060102T150405Z"

// exportICS writes one VTODO per item so the list can be imported into a
// calendar or task app.
func exportICS(m view.Model, generated time.Time) []byte {
	stamp := generated.UTC().Format(icsStampLayout)
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//todolist//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	for _, it := range m.Items {
		status := "NEEDS-ACTION"
		if it.Completed {
			status = "COMPLETED"
		}
		lines = append(lines,
			"BEGIN:VTODO",
			"UID:"+escapeICSText("task-"+it.ID+"@todolist"),
			"DTSTAMP:"+stamp,
			"CREATED:"+it.CreatedAt.UTC().Format(icsStampLayout),
			"SUMMARY:"+escapeICSText(it.Plain),
			"STATUS:"+status,
		)
		if it.Category != "" {
			lines = append(lines, "CATEGORIES:"+strings.ToUpper(it.Category))
		}
		lines = append(lines, "END:VTODO")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
