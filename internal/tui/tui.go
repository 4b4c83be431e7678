// Package tui is the terminal front-end. It drives an app.Session with
// bubbletea and never touches the task store directly.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todolist/internal/app"
	"todolist/internal/task"
	"todolist/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeCategory
	modeEdit
	modeConfirmClear
)

const helpLine = "a add • space toggle • e edit • d delete • C clear • 1/2/3 status • t/w/m time • q quit"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	categoryTags = map[string]string{
		string(task.CategoryToday):   "[T]",
		string(task.CategoryWeekly):  "[W]",
		string(task.CategoryMonthly): "[M]",
	}
)

type Model struct {
	session *app.Session
	cursor  int
	mode    mode
	input   textinput.Model
	status  string
	editID  string
}

func New(session *app.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "Task text"
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		session: session,
		input:   ti,
		mode:    modeList,
		status:  "Press 'a' to add a task.",
	}
}

// Run blocks until the user quits.
func Run(session *app.Session) error {
	_, err := tea.NewProgram(New(session), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.session.DismissNotice()
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeCategory:
			return m.updateCategoryMode(msg.String())
		case modeEdit:
			return m.updateEditMode(msg)
		case modeConfirmClear:
			return m.updateConfirmClear(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
	}
	return m, nil
}

func (m Model) items() []view.Item {
	return m.session.View().Items
}

func (m Model) selected() (view.Item, bool) {
	items := m.items()
	if len(items) == 0 {
		return view.Item{}, false
	}
	return items[clampCursor(m.cursor, len(items))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.items()))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.items()))
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Add: type the task and press Enter"
	case " ", "x":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.session.Toggle(it.ID, !it.Completed); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.status = "Toggled task"
	case "e":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		p, ok := m.session.RequestEdit(it.ID)
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = p.TaskID
		m.input.SetValue(p.Text)
		m.input.CursorEnd()
		m.input.Focus()
		m.status = "Edit: change the text and press Enter"
	case "d":
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.session.Delete(it.ID); err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.status = "Deleted task"
	case "C":
		if m.session.View().Total == 0 {
			m.status = "No tasks"
			return m, nil
		}
		m.mode = modeConfirmClear
		m.status = "Clear all tasks? y/n"
	case "1":
		m.session.SetStatus(view.StatusAll)
	case "2":
		m.session.SetStatus(view.StatusPending)
	case "3":
		m.session.SetStatus(view.StatusCompleted)
	case "t":
		m.session.ToggleTime(view.TimeToday)
	case "w":
		m.session.ToggleTime(view.TimeWeekly)
	case "m":
		m.session.ToggleTime(view.TimeMonthly)
	}
	m.cursor = clampCursor(m.cursor, len(m.items()))
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput("Cancelled")
		return m, nil
	case "enter":
		p := m.session.RequestAdd(m.input.Value())
		m.leaveInput("")
		if p.Kind == app.PromptCategory {
			m.mode = modeCategory
			m.status = "Category: t today • w weekly • m monthly • esc cancel"
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateCategoryMode(key string) (tea.Model, tea.Cmd) {
	var c task.Category
	switch key {
	case "t":
		c = task.CategoryToday
	case "w":
		c = task.CategoryWeekly
	case "m":
		c = task.CategoryMonthly
	case "esc":
		m.session.CancelCategory()
		m.mode = modeList
		m.status = "Cancelled"
		return m, nil
	default:
		return m, nil
	}

	if err := m.session.ChooseCategory(c); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.mode = modeList
	m.status = "Added task"
	return m, nil
}

func (m Model) updateEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.CancelEdit()
		m.leaveInput("Cancelled")
		return m, nil
	case "enter":
		_, err := m.session.SubmitEdit(m.editID, m.input.Value())
		m.leaveInput("Saved")
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
		} else if m.session.Pending().Kind == app.PromptNotice {
			m.status = ""
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmClear(key string) (tea.Model, tea.Cmd) {
	m.mode = modeList
	if key != "y" {
		m.status = "Cancelled"
		return m, nil
	}
	if err := m.session.ClearAll(); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.cursor = 0
	m.status = "Cleared all tasks"
	return m, nil
}

func (m *Model) leaveInput(status string) {
	m.input.SetValue("")
	m.input.Blur()
	m.mode = modeList
	m.editID = ""
	m.status = status
}

func (m Model) View() string {
	var b strings.Builder
	v := m.session.View()

	b.WriteString(titleStyle.Render("To-Do List"))
	b.WriteString("\n")
	b.WriteString(filterLine(v))
	b.WriteString("\n\n")

	if len(v.Items) == 0 {
		b.WriteString(dimStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	cursor := clampCursor(m.cursor, len(v.Items))
	for i, it := range v.Items {
		prefix := "  "
		if i == cursor && m.mode == modeList {
			prefix = cursorStyle.Render("> ")
		}
		check := "[ ]"
		text := it.Plain
		if it.Completed {
			check = "[x]"
			text = doneStyle.Render(text)
		}
		tag := categoryTags[it.Category]
		if tag == "" {
			tag = "   "
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, check, dimStyle.Render(tag), text)
	}
	fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("%d of %d", len(v.Items), v.Total)))

	if m.mode == modeAdd || m.mode == modeEdit {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if p := m.session.Pending(); p.Kind == app.PromptNotice {
		b.WriteString(noticeStyle.Render(p.Message))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(helpLine))
	return b.String()
}

func filterLine(v view.Model) string {
	parts := make([]string, 0, 6)
	for _, s := range []view.Status{view.StatusAll, view.StatusPending, view.StatusCompleted} {
		parts = append(parts, mark(string(s), v.Status == s))
	}
	parts = append(parts, "|")
	for _, tf := range []view.TimeFilter{view.TimeToday, view.TimeWeekly, view.TimeMonthly} {
		parts = append(parts, mark(string(tf), v.Time == tf))
	}
	return strings.Join(parts, " ")
}

func mark(label string, active bool) string {
	if active {
		return activeStyle.Render(label)
	}
	return dimStyle.Render(label)
}

func clampCursor(c, n int) int {
	if n == 0 || c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
