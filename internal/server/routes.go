package server

import (
	"net/http"
	"strings"
)

// RouteDoc describes one registered endpoint for GET /api.
type RouteDoc struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Summary string `json:"summary,omitempty"`
	Example string `json:"example_body,omitempty"`
}

type routeTable struct {
	mux    *http.ServeMux
	routes []RouteDoc
}

// handle registers h under "METHOD /pattern" and records its doc entry.
func (rt *routeTable) handle(methodAndPattern, summary, example string, h http.Handler) {
	method, pattern, ok := strings.Cut(methodAndPattern, " ")
	if !ok {
		method, pattern = "", methodAndPattern
	}
	rt.routes = append(rt.routes, RouteDoc{Method: method, Pattern: pattern, Summary: summary, Example: example})
	rt.mux.Handle(methodAndPattern, h)
}

func (rt *routeTable) list() []RouteDoc {
	out := make([]RouteDoc, len(rt.routes))
	copy(out, rt.routes)
	return out
}
