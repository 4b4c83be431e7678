package task

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decodeTasks parses a persisted slot value. Records written by older versions
// may be bare strings or objects missing fields; each element is normalized
// into a well-formed Task. A value that is not a JSON array is an error.
func decodeTasks(b []byte, now time.Time) ([]Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	out := make([]Task, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, elem := range raw {
		t, ok := normalizeRecord(elem, now)
		if !ok {
			continue
		}
		if seen[t.ID] {
			t.ID = NewID()
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

func normalizeRecord(elem json.RawMessage, now time.Time) (Task, bool) {
	elem = bytes.TrimSpace(elem)
	if len(elem) == 0 || string(elem) == "null" {
		return Task{}, false
	}

	t := Task{CreatedAt: now}

	var fields map[string]json.RawMessage
	if elem[0] != '{' || json.Unmarshal(elem, &fields) != nil {
		t.ID = NewID()
		t.Text = strings.TrimSpace(stringForm(elem))
		return t, t.Text != ""
	}

	t.ID = idField(fields["id"])
	if t.ID == "" {
		t.ID = NewID()
	}

	t.Text = textField(fields["text"])
	if t.Text == "" {
		t.Text = stringForm(elem)
	}
	t.Text = strings.TrimSpace(t.Text)

	t.Completed = truthy(fields["completed"])

	if ts, ok := timeField(fields["createdAt"], now.Location()); ok {
		t.CreatedAt = ts
	}

	var cat string
	if json.Unmarshal(fields["category"], &cat) == nil {
		if c := Category(cat); c.Valid() {
			t.Category = &c
		}
	}

	return t, t.Text != ""
}

// stringForm is a record's own string rendering: the value of a JSON string,
// otherwise its compact JSON text.
func stringForm(elem json.RawMessage) string {
	var s string
	if json.Unmarshal(elem, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, elem) == nil {
		return buf.String()
	}
	return string(elem)
}

func idField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func textField(raw json.RawMessage) string {
	if len(raw) == 0 || !truthy(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return stringForm(raw)
}

// timeField parses createdAt. Layouts without a zone are read in loc, the
// zone the time buckets are computed in.
func timeField(raw json.RawMessage, loc *time.Location) (time.Time, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// truthy mirrors loose boolean coercion: false, 0, "", null and absent are false;
// every other value is true.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	case "true":
		return true
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return f != 0
	}
	return true
}
