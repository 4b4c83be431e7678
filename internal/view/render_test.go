package view

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/task"
)

const nasty = `<script>alert("x")</script> & 'y'`

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt; &amp; &#34;q&#34; &#39;s&#39;", Escape(`<b> & "q" 's'`))
	assert.Equal(t, "plain text", Escape("plain text"))
}

func TestRender(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Text: nasty, Completed: true, CreatedAt: now, Category: cat(task.CategoryToday)},
		{ID: "2", Text: "milk", CreatedAt: now},
	}

	items := Render(tasks)
	require.Len(t, items, 2)

	assert.Equal(t, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; &#39;y&#39;", items[0].Text)
	assert.Equal(t, nasty, items[0].Plain)
	assert.True(t, items[0].Completed)
	assert.Equal(t, "today", items[0].Category)

	assert.Equal(t, "milk", items[1].Text)
	assert.Empty(t, items[1].Category)
}

func TestBuild(t *testing.T) {
	m := Build(sampleTasks(), Query{Status: StatusPending, Time: TimeToday}, now)
	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, TimeToday, m.Time)
	assert.Equal(t, 3, m.Total)
	require.Len(t, m.Items, 1)
	assert.Equal(t, "A", m.Items[0].ID)

	assert.Equal(t, StatusAll, Build(nil, Query{}, now).Status)
}

func renderPage(t *testing.T, d PageData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Page(d).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestPage_EscapesTaskText(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Text: nasty, CreatedAt: now},
		{ID: "2", Text: "milk", Completed: true, CreatedAt: now},
	}
	doc := renderPage(t, PageData{Model: Build(tasks, Query{}, now)})

	assert.Equal(t, 0, doc.Find("script").Length())
	lis := doc.Find("ul.task_box li")
	require.Equal(t, 2, lis.Length())

	assert.Equal(t, nasty, lis.Eq(0).Find("p").Text())
	val, _ := lis.Eq(0).Find(`input[name="text"]`).Attr("value")
	assert.Equal(t, nasty, val)

	assert.True(t, lis.Eq(1).HasClass("completed"))
	id, _ := lis.Eq(1).Attr("data-id")
	assert.Equal(t, "2", id)
	next, _ := lis.Eq(1).Find(`input[name="completed"]`).Attr("value")
	assert.Equal(t, "false", next)

	assert.Equal(t, "2 of 2", doc.Find("p.count").Text())
}

func TestPage_FilterLinks(t *testing.T) {
	doc := renderPage(t, PageData{Model: Model{Status: StatusPending, Time: TimeWeekly}})

	assert.True(t, doc.Find("a#pending").HasClass("active"))
	assert.False(t, doc.Find("a#all").HasClass("active"))

	weekly := doc.Find("a#weekly")
	assert.True(t, weekly.HasClass("active"))
	href, _ := weekly.Attr("href")
	assert.Equal(t, "/?status=pending", href, "active time filter link clears it")

	href, _ = doc.Find("a#today").Attr("href")
	assert.Equal(t, "/?status=pending&time=today", href)

	href, _ = doc.Find("a#completed").Attr("href")
	assert.Equal(t, "/?status=completed&time=weekly", href)
}

func TestPage_Notice(t *testing.T) {
	doc := renderPage(t, PageData{Model: Model{Status: StatusAll}, Notice: "Input is empty!"})
	assert.Equal(t, "Input is empty!", doc.Find("p.notice").Text())

	doc = renderPage(t, PageData{Model: Model{Status: StatusAll}})
	assert.Equal(t, 0, doc.Find("p.notice").Length())
}

func TestPage_TaskActionsEscapeID(t *testing.T) {
	tasks := []task.Task{{ID: "a/b c", Text: "milk", CreatedAt: now}}
	doc := renderPage(t, PageData{Model: Build(tasks, Query{}, now)})

	var actions []string
	doc.Find("ul.task_box li form").Each(func(_ int, f *goquery.Selection) {
		action, _ := f.Attr("action")
		actions = append(actions, action)
	})
	assert.Equal(t, []string{
		"/tasks/a%2Fb%20c/toggle",
		"/tasks/a%2Fb%20c/edit",
		"/tasks/a%2Fb%20c/delete",
	}, actions)

	id, _ := doc.Find("ul.task_box li").Attr("data-id")
	assert.Equal(t, "a/b c", id)
}
