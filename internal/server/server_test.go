package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/app"
	"todolist/internal/clock"
	"todolist/internal/stats"
	"todolist/internal/storage"
	"todolist/internal/task"
	"todolist/internal/view"
)

type testApp struct {
	t     *testing.T
	srv   *Server
	store *task.Store
	slot  *storage.MemorySlot
	clock *clock.Fake
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	slot := storage.NewMemorySlot()
	clk := clock.NewFake(time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC))
	store := task.NewStore(slot, task.WithClock(clk))
	store.Load()

	srv, err := New(Options{Store: store, Clock: clk, WeekStart: time.Sunday})
	require.NoError(t, err)
	return &testApp{t: t, srv: srv, store: store, slot: slot, clock: clk}
}

func (a *testApp) request(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (a *testApp) json(method, path string, payload any) *httptest.ResponseRecorder {
	a.t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(a.t, err)
	}
	return a.request(method, path, body, "application/json")
}

func (a *testApp) form(path string, vals url.Values) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.request(http.MethodPost, path, []byte(vals.Encode()), "application/x-www-form-urlencoded")
}

func (a *testApp) create(text, category string) task.Task {
	a.t.Helper()
	res := a.json(http.MethodPost, "/api/tasks", map[string]any{"text": text, "category": category})
	require.Equal(a.t, http.StatusCreated, res.Code, res.Body.String())
	var created task.Task
	require.NoError(a.t, json.Unmarshal(res.Body.Bytes(), &created))
	return created
}

func errorMessage(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body.Error
}

func document(t *testing.T, res *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestServer_Healthz(t *testing.T) {
	a := newTestApp(t)
	res := a.request(http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, res.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, res.Header().Get("X-Request-ID"))
}

func TestAPI_CreateAndList(t *testing.T) {
	a := newTestApp(t)
	created := a.create("  buy milk  ", "today")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "buy milk", created.Text)
	assert.False(t, created.Completed)
	require.NotNil(t, created.Category)
	assert.Equal(t, task.CategoryToday, *created.Category)

	res := a.request(http.MethodGet, "/api/tasks", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var m view.Model
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &m))
	require.Len(t, m.Items, 1)
	assert.Equal(t, created.ID, m.Items[0].ID)
	assert.Equal(t, view.StatusAll, m.Status)
	assert.Equal(t, 1, m.Total)
}

func TestAPI_CreateRejectsEmptyText(t *testing.T) {
	a := newTestApp(t)
	res := a.json(http.MethodPost, "/api/tasks", map[string]any{"text": "   ", "category": "weekly"})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, app.MsgInputEmpty, errorMessage(t, res))
	assert.Zero(t, a.store.Len())
}

func TestAPI_CreateRejectsBadInput(t *testing.T) {
	a := newTestApp(t)

	res := a.json(http.MethodPost, "/api/tasks", map[string]any{"text": "x", "category": "yearly"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = a.json(http.MethodPost, "/api/tasks", map[string]any{"text": "x", "owner": "me"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = a.request(http.MethodPost, "/api/tasks", []byte("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	assert.Zero(t, a.store.Len())
}

func TestAPI_UpdateTextAndCompletion(t *testing.T) {
	a := newTestApp(t)
	created := a.create("draft", "monthly")

	res := a.json(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{"text": " final ", "completed": true})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	got, ok := a.store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "final", got.Text)
	assert.True(t, got.Completed)
	assert.Equal(t, created.CreatedAt.UTC(), got.CreatedAt.UTC())
}

func TestAPI_UpdateRejectsEmptyTextWithoutChange(t *testing.T) {
	a := newTestApp(t)
	created := a.create("keep me", "today")

	res := a.json(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{"text": "", "completed": true})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, app.MsgTaskEmpty, errorMessage(t, res))

	got, _ := a.store.Get(created.ID)
	assert.Equal(t, "keep me", got.Text)
	assert.False(t, got.Completed)
}

func TestAPI_UpdateFailureLeavesTaskUntouched(t *testing.T) {
	a := newTestApp(t)
	created := a.create("draft", "today")
	a.slot.SetErr = errors.New("quota exceeded")

	res := a.json(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{"text": "final", "completed": true})
	require.Equal(t, http.StatusInternalServerError, res.Code)

	got, _ := a.store.Get(created.ID)
	assert.Equal(t, "draft", got.Text)
	assert.False(t, got.Completed)

	a.slot.SetErr = nil
	reloaded := task.NewStore(a.slot)
	reloaded.Load()
	persisted, ok := reloaded.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "draft", persisted.Text)
	assert.False(t, persisted.Completed)
}

func TestAPI_UnknownIDIsNotFound(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, a.request(http.MethodGet, "/api/tasks/nope", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, a.json(http.MethodPatch, "/api/tasks/nope", map[string]any{"completed": true}).Code)
	assert.Equal(t, http.StatusNotFound, a.request(http.MethodDelete, "/api/tasks/nope", nil, "").Code)
}

func TestAPI_UpdateNeedsAField(t *testing.T) {
	a := newTestApp(t)
	created := a.create("x", "today")
	res := a.json(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAPI_DeleteAndClear(t *testing.T) {
	a := newTestApp(t)
	first := a.create("one", "today")
	a.create("two", "weekly")
	a.create("three", "monthly")

	res := a.request(http.MethodDelete, "/api/tasks/"+first.ID, nil, "")
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, 2, a.store.Len())

	res = a.request(http.MethodDelete, "/api/tasks", nil, "")
	require.Equal(t, http.StatusNoContent, res.Code)
	assert.Zero(t, a.store.Len())
}

func TestAPI_ListFilters(t *testing.T) {
	a := newTestApp(t)
	a.create("daily", "today")
	weekly := a.create("weekly", "weekly")
	a.create("monthly", "monthly")
	require.Equal(t, http.StatusOK, a.json(http.MethodPatch, "/api/tasks/"+weekly.ID, map[string]any{"completed": true}).Code)

	res := a.request(http.MethodGet, "/api/tasks?status=pending", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var m view.Model
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &m))
	assert.Len(t, m.Items, 2)
	assert.Equal(t, 3, m.Total)

	res = a.request(http.MethodGet, "/api/tasks?status=completed&time=weekly", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	m = view.Model{}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &m))
	require.Len(t, m.Items, 1)
	assert.Equal(t, weekly.ID, m.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, a.request(http.MethodGet, "/api/tasks?status=later", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, a.request(http.MethodGet, "/api/tasks?time=yearly", nil, "").Code)
}

func TestAPI_PersistFailureIsServerError(t *testing.T) {
	a := newTestApp(t)
	a.slot.SetErr = errors.New("quota exceeded")

	res := a.json(http.MethodPost, "/api/tasks", map[string]any{"text": "x", "category": "today"})
	require.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Zero(t, a.store.Len())
}

func TestPage_RendersListAndEscapesText(t *testing.T) {
	a := newTestApp(t)
	a.create(`<b>bold</b> & "quoted"`, "today")

	res := a.request(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Header().Get("Content-Type"), "text/html")
	assert.NotContains(t, res.Body.String(), "<b>bold</b>")
	assert.Contains(t, res.Body.String(), "&lt;b&gt;bold&lt;/b&gt; &amp; &#34;quoted&#34;")

	doc := document(t, res)
	assert.Equal(t, 1, doc.Find("ul.task_box li").Length())
	assert.Equal(t, `<b>bold</b> & "quoted"`, doc.Find("ul.task_box li > p").Text())
	assert.Equal(t, "1 of 1", doc.Find("p.count").Text())
	assert.True(t, doc.Find("a#all").HasClass("active"))
}

func TestPage_InvalidFilterFallsBackToDefault(t *testing.T) {
	a := newTestApp(t)
	res := a.request(http.MethodGet, "/?status=bogus", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, document(t, res).Find("a#all").HasClass("active"))
}

func TestForm_AddRedirectsWithFilters(t *testing.T) {
	a := newTestApp(t)
	res := a.form("/tasks", url.Values{
		"text":     {"water plants"},
		"category": {"weekly"},
		"status":   {"pending"},
		"time":     {"weekly"},
	})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/?status=pending&time=weekly", res.Header().Get("Location"))
	assert.Equal(t, 1, a.store.Len())
}

func TestForm_AddEmptyShowsNotice(t *testing.T) {
	a := newTestApp(t)
	res := a.form("/tasks", url.Values{"text": {"  "}, "category": {"today"}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, app.MsgInputEmpty, document(t, res).Find("p.notice").Text())
	assert.Zero(t, a.store.Len())
}

func TestForm_AddRequiresCategory(t *testing.T) {
	a := newTestApp(t)
	res := a.form("/tasks", url.Values{"text": {"x"}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Zero(t, a.store.Len())
}

func TestForm_ToggleEditDelete(t *testing.T) {
	a := newTestApp(t)
	created := a.create("laundry", "today")
	base := "/tasks/" + url.PathEscape(created.ID)

	res := a.form(base+"/toggle", url.Values{"completed": {"true"}, "status": {"all"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	got, _ := a.store.Get(created.ID)
	assert.True(t, got.Completed)

	page := a.request(http.MethodGet, "/", nil, "")
	assert.True(t, document(t, page).Find("ul.task_box li").HasClass("completed"))

	res = a.form(base+"/edit", url.Values{"text": {""}})
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, app.MsgTaskEmpty, document(t, res).Find("p.notice").Text())

	res = a.form(base+"/edit", url.Values{"text": {"fold laundry"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	got, _ = a.store.Get(created.ID)
	assert.Equal(t, "fold laundry", got.Text)

	res = a.form(base+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Zero(t, a.store.Len())
}

func TestForm_ToggleRejectsBadValue(t *testing.T) {
	a := newTestApp(t)
	created := a.create("x", "today")
	res := a.form("/tasks/"+created.ID+"/toggle", url.Values{"completed": {"maybe"}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestForm_Clear(t *testing.T) {
	a := newTestApp(t)
	a.create("a", "today")
	a.create("b", "today")

	res := a.form("/tasks/clear", url.Values{"status": {"completed"}})
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/?status=completed", res.Header().Get("Location"))
	assert.Zero(t, a.store.Len())
}

func TestServer_MetricsAndRouteIndex(t *testing.T) {
	a := newTestApp(t)
	a.create("counted", "today")

	res := a.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "todo_http_requests_total")
	assert.Contains(t, body, `route="POST /api/tasks"`)
	assert.Contains(t, body, "todo_tasks 1")

	res = a.request(http.MethodGet, "/api", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var routes []RouteDoc
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &routes))
	assert.Contains(t, routes, RouteDoc{Method: "DELETE", Pattern: "/api/tasks/{id}", Summary: "delete task"})
}

func TestServer_StaticStylesheet(t *testing.T) {
	a := newTestApp(t)
	res := a.request(http.MethodGet, "/static/css/todo.css", nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestAPI_Stats(t *testing.T) {
	a := newTestApp(t)
	created := a.create("a", "today")
	a.create("b", "weekly")
	require.Equal(t, http.StatusOK, a.json(http.MethodPatch, "/api/tasks/"+created.ID, map[string]any{"completed": true}).Code)

	res := a.request(http.MethodGet, "/api/stats?days=1", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var st stats.Stats
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &st))
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 2, st.CreatedSince)
	assert.Equal(t, 1, st.ByCategory["today"])

	assert.Equal(t, http.StatusBadRequest, a.request(http.MethodGet, "/api/stats?days=0", nil, "").Code)
}
