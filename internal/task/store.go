package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"todolist/internal/clock"
	"todolist/internal/logging"
	"todolist/internal/storage"
)

const DefaultKey = "todo_tasks"

// Store owns the ordered task collection and mirrors it into a storage slot.
// Every mutating call persists before it returns; if the write fails the
// mutation is rolled back so memory and storage never disagree.
//
// Store is not safe for concurrent use. Callers serialize events.
type Store struct {
	slot  storage.Slot
	key   string
	clock clock.Clock
	log   logrus.FieldLogger

	tasks []Task
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func NewStore(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:  slot,
		key:   DefaultKey,
		clock: clock.Real{},
		log:   logging.Discard(),
		tasks: []Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one. Missing or
// unreadable storage is treated as a first run and yields an empty list.
func (s *Store) Load() []Task {
	s.tasks = s.read()
	return s.Tasks()
}

func (s *Store) read() []Task {
	b, ok, err := s.slot.Get(s.key)
	if err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("read task slot failed, starting empty")
		return []Task{}
	}
	if !ok {
		return []Task{}
	}
	tasks, err := decodeTasks(b, s.clock.Now())
	if err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("task slot is corrupt, starting empty")
		return []Task{}
	}
	return tasks
}

// Persist writes the full collection to the slot.
func (s *Store) Persist() error {
	b, err := json.Marshal(s.tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.slot.Set(s.key, b); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) commit(prev []Task) error {
	if err := s.Persist(); err != nil {
		s.tasks = prev
		s.log.WithError(err).Error("task mutation rolled back")
		return err
	}
	return nil
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	return cloneTasks(s.tasks)
}

func (s *Store) Len() int {
	return len(s.tasks)
}

func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new pending task. category may be nil.
func (s *Store) Add(text string, category *Category) ([]Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.Tasks(), ErrEmptyText
	}

	prev := cloneTasks(s.tasks)
	t := newTask(text, category, s.clock.Now())
	for s.index(t.ID) >= 0 {
		t.ID = NewID()
	}
	s.tasks = append(s.tasks, t)
	if err := s.commit(prev); err != nil {
		return s.Tasks(), err
	}

	s.log.WithField("task_id", t.ID).Debug("task added")
	return s.Tasks(), nil
}

// Toggle sets the completion state. Unknown ids are ignored.
func (s *Store) Toggle(id string, completed bool) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}

	prev := cloneTasks(s.tasks)
	s.tasks[i].Completed = completed
	if err := s.commit(prev); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"task_id": id, "completed": completed}).Debug("task toggled")
	return nil
}

// Edit replaces the text of a task. Unknown ids are ignored; empty text is
// rejected before any lookup.
func (s *Store) Edit(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	i := s.index(id)
	if i < 0 {
		return nil
	}

	prev := cloneTasks(s.tasks)
	s.tasks[i].Text = text
	if err := s.commit(prev); err != nil {
		return err
	}

	s.log.WithField("task_id", id).Debug("task edited")
	return nil
}

// Update applies a text change and a completion change in one write. Nil
// arguments leave the field alone. Empty text is rejected before anything
// changes, and a failed write leaves both fields as they were.
func (s *Store) Update(id string, text *string, completed *bool) error {
	var newText string
	if text != nil {
		newText = strings.TrimSpace(*text)
		if newText == "" {
			return ErrEmptyText
		}
	}
	i := s.index(id)
	if i < 0 || (text == nil && completed == nil) {
		return nil
	}

	prev := cloneTasks(s.tasks)
	if text != nil {
		s.tasks[i].Text = newText
	}
	if completed != nil {
		s.tasks[i].Completed = *completed
	}
	if err := s.commit(prev); err != nil {
		return err
	}

	s.log.WithField("task_id", id).Debug("task updated")
	return nil
}

// Remove deletes a task. Unknown ids are ignored.
func (s *Store) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}

	prev := cloneTasks(s.tasks)
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	if err := s.commit(prev); err != nil {
		return err
	}

	s.log.WithField("task_id", id).Debug("task removed")
	return nil
}

// ClearAll empties the collection. An already empty collection is left alone
// and nothing is written.
func (s *Store) ClearAll() error {
	if len(s.tasks) == 0 {
		return nil
	}

	prev := s.tasks
	s.tasks = []Task{}
	if err := s.commit(prev); err != nil {
		return err
	}

	s.log.WithField("count", len(prev)).Debug("tasks cleared")
	return nil
}
