package server

import (
	"net/http"
	"strconv"

	"todolist/internal/app"
	"todolist/internal/stats"
	"todolist/internal/task"
)

type createRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type updateRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	q, err := s.queryFrom(r.URL.Query())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.model(q))
}

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	cat, err := task.ParseCategory(req.Category)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.store.Add(req.Text, cat)
	if err != nil {
		s.storeErr(w, r, err, app.MsgInputEmpty)
		return
	}
	created := list[len(list)-1]
	s.reqLog(r).WithField("task_id", created.ID).Info("task created")
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) apiGet(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// apiUpdate applies text and completion changes in a single write, so a
// rejected or failed update leaves the task untouched.
func (s *Server) apiUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}

	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Text == nil && req.Completed == nil {
		writeErr(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := s.store.Update(id, req.Text, req.Completed); err != nil {
		s.storeErr(w, r, err, app.MsgTaskEmpty)
		return
	}

	t, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}
	if err := s.store.Remove(id); err != nil {
		s.storeErr(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearAll(); err != nil {
		s.storeErr(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErr(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	now := s.clock.Now()
	writeJSON(w, http.StatusOK, stats.Calculate(s.store.Tasks(), now.AddDate(0, 0, -days), now))
}
