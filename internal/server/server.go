// Package server is the local web front-end: an HTML page that works without
// JavaScript, a JSON API over the same store, health and metrics endpoints.
// Requests are handled one at a time; the task store is never touched by two
// goroutines at once.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"todolist/internal/clock"
	"todolist/internal/httpmw"
	"todolist/internal/logging"
	"todolist/internal/task"
	"todolist/internal/view"
	staticfiles "todolist/static"
)

type Options struct {
	Store         *task.Store
	Clock         clock.Clock
	WeekStart     time.Weekday
	DefaultStatus view.Status
	Logger        logrus.FieldLogger
	// Registry receives the server's collectors. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
}

type Server struct {
	mu            sync.Mutex
	store         *task.Store
	clock         clock.Clock
	weekStart     time.Weekday
	defaultStatus view.Status
	log           logrus.FieldLogger
	handler       http.Handler
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = view.StatusAll
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		store:         opts.Store,
		clock:         opts.Clock,
		weekStart:     opts.WeekStart,
		defaultStatus: opts.DefaultStatus,
		log:           opts.Logger,
	}

	metrics := httpmw.NewMetrics(opts.Registry)
	opts.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "todo_tasks",
		Help: "Tasks currently in the collection.",
	}, func() float64 {
		s.mu.Lock()
		defer s.mu.Unlock()
		return float64(s.store.Len())
	}))

	mux := http.NewServeMux()
	rt := &routeTable{mux: mux}
	rt.handle("GET /static/", "stylesheet", "", http.StripPrefix("/static/", http.FileServer(http.FS(staticfiles.EmbeddedFS()))))
	rt.handle("GET /metrics", "prometheus metrics", "", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	rt.handle("GET /healthz", "liveness", "", http.HandlerFunc(s.healthz))

	rt.handle("GET /{$}", "task list page", "", s.serialized(s.page))
	rt.handle("POST /tasks", "add from form", "", s.serialized(s.formAdd))
	rt.handle("POST /tasks/clear", "clear all from form", "", s.serialized(s.formClear))
	rt.handle("POST /tasks/{id}/toggle", "toggle from form", "", s.serialized(s.formToggle))
	rt.handle("POST /tasks/{id}/edit", "edit from form", "", s.serialized(s.formEdit))
	rt.handle("POST /tasks/{id}/delete", "delete from form", "", s.serialized(s.formDelete))

	rt.handle("GET /api/tasks", "filtered list", "", s.serialized(s.apiList))
	rt.handle("POST /api/tasks", "create task", `{"text":"buy milk","category":"today"}`, s.serialized(s.apiCreate))
	rt.handle("DELETE /api/tasks", "clear all", "", s.serialized(s.apiClear))
	rt.handle("GET /api/stats", "counts and creation rate, ?days=7", "", s.serialized(s.apiStats))
	rt.handle("GET /api/tasks/{id}", "get task", "", s.serialized(s.apiGet))
	rt.handle("PATCH /api/tasks/{id}", "edit or toggle", `{"text":"buy oat milk","completed":true}`, s.serialized(s.apiUpdate))
	rt.handle("DELETE /api/tasks/{id}", "delete task", "", s.serialized(s.apiDelete))

	routes := rt.list()
	rt.handle("GET /api", "route index", "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, routes)
	}))

	s.handler = httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(s.log),
		httpmw.WithAccessLog(s.log),
		metrics.Middleware,
	)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) serialized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "todolist",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) reqLog(r *http.Request) logrus.FieldLogger {
	return logging.WithRequestID(s.log, httpmw.RequestIDFromContext(r.Context()))
}

func (s *Server) model(q view.Query) view.Model {
	q.WeekStart = s.weekStart
	return view.Build(s.store.Tasks(), q, s.clock.Now())
}

// queryFrom reads status and time from the URL query or form values.
// Invalid values are reported so the JSON API can reject them.
func (s *Server) queryFrom(vals url.Values) (view.Query, error) {
	q := view.Query{Status: s.defaultStatus}
	if raw := vals.Get("status"); raw != "" {
		st, err := view.ParseStatus(raw)
		if err != nil {
			return q, err
		}
		q.Status = st
	}
	tf, err := view.ParseTimeFilter(vals.Get("time"))
	if err != nil {
		return q, err
	}
	q.Time = tf
	return q, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// storeErr maps store failures onto HTTP statuses. Empty text is a client
// error carrying the user-facing message; anything else is a server error.
func (s *Server) storeErr(w http.ResponseWriter, r *http.Request, err error, emptyMsg string) {
	if errors.Is(err, task.ErrEmptyText) {
		writeErr(w, http.StatusBadRequest, emptyMsg)
		return
	}
	s.reqLog(r).WithError(err).Error("task store failed")
	writeErr(w, http.StatusInternalServerError, "could not save tasks")
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
