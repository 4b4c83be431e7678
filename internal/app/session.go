// Package app holds the state one front-end session works against: the task
// store, the active filters, and at most one outstanding prompt. Front-ends
// turn user input into Session events and redraw from View after each one.
//
// Interactive steps that need an answer from the user (choosing a category
// before a task is created, supplying new text for an edit) are modeled as a
// Prompt returned by a Request* event and answered by a later event, so no
// front-end has to block inside the core.
package app

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"todolist/internal/clock"
	"todolist/internal/logging"
	"todolist/internal/task"
	"todolist/internal/view"
)

const (
	MsgInputEmpty = "Input is empty!"
	MsgTaskEmpty  = "Task cannot be empty"
)

var ErrNoPrompt = errors.New("no matching prompt is pending")

type PromptKind string

const (
	PromptNone     PromptKind = ""
	PromptCategory PromptKind = "category"
	PromptEdit     PromptKind = "edit"
	PromptNotice   PromptKind = "notice"
)

type Prompt struct {
	Kind PromptKind `json:"kind"`
	// Message is shown to the user for notices.
	Message string `json:"message,omitempty"`
	// TaskID is the task being edited.
	TaskID string `json:"taskId,omitempty"`
	// Text is the text awaiting a category, or the current text of the task
	// being edited.
	Text string `json:"text,omitempty"`
}

type Session struct {
	store   *task.Store
	clock   clock.Clock
	log     logrus.FieldLogger
	query   view.Query
	pending Prompt
}

type Option func(*Session)

func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithQuery(q view.Query) Option {
	return func(s *Session) { s.query = q }
}

func NewSession(store *task.Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		clock: clock.Real{},
		log:   logging.Discard(),
		query: view.Query{Status: view.StatusAll},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Pending() Prompt { return s.pending }

func (s *Session) Query() view.Query { return s.query }

// View renders the current filters against the current collection.
func (s *Session) View() view.Model {
	return view.Build(s.store.Tasks(), s.query, s.clock.Now())
}

func (s *Session) notice(msg string) Prompt {
	s.pending = Prompt{Kind: PromptNotice, Message: msg}
	return s.pending
}

// DismissNotice clears a pending notice. Other prompts are left alone.
func (s *Session) DismissNotice() {
	if s.pending.Kind == PromptNotice {
		s.pending = Prompt{}
	}
}

// RequestAdd starts the add flow. Empty input yields a notice; otherwise the
// trimmed text is held until ChooseCategory or CancelCategory.
func (s *Session) RequestAdd(text string) Prompt {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.notice(MsgInputEmpty)
	}
	s.pending = Prompt{Kind: PromptCategory, Text: text}
	return s.pending
}

// ChooseCategory creates the held task with category c.
func (s *Session) ChooseCategory(c task.Category) error {
	if s.pending.Kind != PromptCategory {
		return ErrNoPrompt
	}
	if !c.Valid() {
		return errors.New("unknown category: " + string(c))
	}
	held := s.pending
	s.pending = Prompt{}

	if _, err := s.store.Add(held.Text, &c); err != nil {
		// keep the typed text so the user can pick again once storage recovers
		s.pending = held
		s.log.WithError(err).Warn("add task failed")
		return err
	}
	return nil
}

// CancelCategory drops the held text without creating anything.
func (s *Session) CancelCategory() {
	if s.pending.Kind == PromptCategory {
		s.pending = Prompt{}
	}
}

// RequestEdit opens an edit prompt carrying the task's current text. It
// reports false for unknown ids.
func (s *Session) RequestEdit(id string) (Prompt, bool) {
	t, ok := s.store.Get(id)
	if !ok {
		return Prompt{}, false
	}
	s.pending = Prompt{Kind: PromptEdit, TaskID: id, Text: t.Text}
	return s.pending, true
}

// SubmitEdit answers an edit prompt. Empty text leaves the task unchanged
// and returns a notice.
func (s *Session) SubmitEdit(id, text string) (Prompt, error) {
	if s.pending.Kind == PromptEdit && s.pending.TaskID == id {
		s.pending = Prompt{}
	}
	if strings.TrimSpace(text) == "" {
		return s.notice(MsgTaskEmpty), nil
	}
	if err := s.store.Edit(id, text); err != nil {
		s.log.WithError(err).WithField("task_id", id).Warn("edit task failed")
		return Prompt{}, err
	}
	return Prompt{}, nil
}

func (s *Session) CancelEdit() {
	if s.pending.Kind == PromptEdit {
		s.pending = Prompt{}
	}
}

func (s *Session) Toggle(id string, completed bool) error {
	return s.store.Toggle(id, completed)
}

func (s *Session) Delete(id string) error {
	return s.store.Remove(id)
}

func (s *Session) ClearAll() error {
	return s.store.ClearAll()
}

func (s *Session) SetStatus(st view.Status) {
	s.query.Status = st
}

// ToggleTime activates tf, or clears the time filter when tf is already active.
func (s *Session) ToggleTime(tf view.TimeFilter) {
	if s.query.Time == tf {
		s.query.Time = view.TimeNone
		return
	}
	s.query.Time = tf
}
