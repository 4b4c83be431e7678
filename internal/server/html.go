package server

import (
	"errors"
	"net/http"
	"strconv"

	"todolist/internal/app"
	"todolist/internal/task"
	"todolist/internal/view"
)

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, code int, q view.Query, notice string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	data := view.PageData{Model: s.model(q), Notice: notice}
	if err := view.Page(data).Render(r.Context(), w); err != nil {
		s.reqLog(r).WithError(err).Warn("render page failed")
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	q, err := s.queryFrom(r.URL.Query())
	if err != nil {
		q = view.Query{Status: s.defaultStatus}
	}
	s.renderPage(w, r, http.StatusOK, q, "")
}

// back redirects to the list with the filters the form was posted from.
func (s *Server) back(w http.ResponseWriter, r *http.Request, q view.Query) {
	http.Redirect(w, r, "/?"+view.FilterQuery(q.Status, q.Time), http.StatusSeeOther)
}

// formQuery parses the form and the filters it carries.
func (s *Server) formQuery(w http.ResponseWriter, r *http.Request) (view.Query, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return view.Query{}, false
	}
	q, err := s.queryFrom(r.PostForm)
	if err != nil {
		q = view.Query{Status: s.defaultStatus}
	}
	return q, true
}

// formFail renders the page with a notice for user errors and a generic
// message for storage failures.
func (s *Server) formFail(w http.ResponseWriter, r *http.Request, q view.Query, err error, emptyMsg string) {
	if errors.Is(err, task.ErrEmptyText) {
		s.renderPage(w, r, http.StatusBadRequest, q, emptyMsg)
		return
	}
	s.reqLog(r).WithError(err).Error("task store failed")
	s.renderPage(w, r, http.StatusInternalServerError, q, "Could not save tasks")
}

func (s *Server) formAdd(w http.ResponseWriter, r *http.Request) {
	q, ok := s.formQuery(w, r)
	if !ok {
		return
	}
	cat, err := task.ParseCategory(r.PostForm.Get("category"))
	if err != nil || cat == nil {
		s.renderPage(w, r, http.StatusBadRequest, q, "Choose today, weekly or monthly")
		return
	}
	if _, err := s.store.Add(r.PostForm.Get("text"), cat); err != nil {
		s.formFail(w, r, q, err, app.MsgInputEmpty)
		return
	}
	s.back(w, r, q)
}

func (s *Server) formToggle(w http.ResponseWriter, r *http.Request) {
	q, ok := s.formQuery(w, r)
	if !ok {
		return
	}
	completed, err := strconv.ParseBool(r.PostForm.Get("completed"))
	if err != nil {
		http.Error(w, "completed must be true or false", http.StatusBadRequest)
		return
	}
	if err := s.store.Toggle(r.PathValue("id"), completed); err != nil {
		s.formFail(w, r, q, err, "")
		return
	}
	s.back(w, r, q)
}

func (s *Server) formEdit(w http.ResponseWriter, r *http.Request) {
	q, ok := s.formQuery(w, r)
	if !ok {
		return
	}
	if err := s.store.Edit(r.PathValue("id"), r.PostForm.Get("text")); err != nil {
		s.formFail(w, r, q, err, app.MsgTaskEmpty)
		return
	}
	s.back(w, r, q)
}

func (s *Server) formDelete(w http.ResponseWriter, r *http.Request) {
	q, ok := s.formQuery(w, r)
	if !ok {
		return
	}
	if err := s.store.Remove(r.PathValue("id")); err != nil {
		s.formFail(w, r, q, err, "")
		return
	}
	s.back(w, r, q)
}

func (s *Server) formClear(w http.ResponseWriter, r *http.Request) {
	q, ok := s.formQuery(w, r)
	if !ok {
		return
	}
	if err := s.store.ClearAll(); err != nil {
		s.formFail(w, r, q, err, "")
		return
	}
	s.back(w, r, q)
}
