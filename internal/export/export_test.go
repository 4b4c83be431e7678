package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/task"
	"todolist/internal/view"
)

var now = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

func model() view.Model {
	weekly := task.CategoryWeekly
	tasks := []task.Task{
		{ID: "a", Text: `say "hi" & <wave>`, CreatedAt: now, Category: &weekly},
		{ID: "b", Text: "done thing", Completed: true, CreatedAt: now},
	}
	return view.Build(tasks, view.Query{}, now)
}

func TestExport_JSON(t *testing.T) {
	b, err := Export(model(), "JSON", now)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 2)
	assert.Equal(t, `say "hi" & <wave>`, got[0]["text"], "exports carry unescaped text")
	assert.Equal(t, "weekly", got[0]["category"])
	assert.Nil(t, got[1]["category"])
	assert.Equal(t, true, got[1]["completed"])
}

func TestExport_CSV(t *testing.T) {
	b, err := Export(model(), "csv", now)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "text", "completed", "created_at", "category"}, rows[0])
	assert.Equal(t, []string{"a", `say "hi" & <wave>`, "false", "2026-10-14T15:00:00Z", "weekly"}, rows[1])
	assert.Equal(t, []string{"b", "done thing", "true", "2026-10-14T15:00:00Z", ""}, rows[2])
}

func TestExport_PDF(t *testing.T) {
	b, err := Export(model(), "pdf", now)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := Export(model(), "xlsx", now)
	assert.Error(t, err)
}

func TestExport_ICS(t *testing.T) {
	b, err := Export(model(), "ics", now)
	require.NoError(t, err)
	out := string(b)

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VTODO"))
	assert.Contains(t, out, "UID:task-a@todolist\r\n")
	assert.Contains(t, out, "DTSTAMP:20261014T150000Z\r\n")
	assert.Contains(t, out, `SUMMARY:say "hi" & <wave>`+"\r\n")
	assert.Contains(t, out, "CATEGORIES:WEEKLY\r\n")
	assert.Contains(t, out, "STATUS:COMPLETED\r\n")
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
}

func TestEscapeICSText(t *testing.T) {
	assert.Equal(t, `a\, b\; c\\d\ne`, escapeICSText("a, b; c\\d\ne"))
}
