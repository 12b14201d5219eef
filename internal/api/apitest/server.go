// Package apitest provides a fake metrics backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// DefaultMetrics is a well-formed metrics body.
const DefaultMetrics = `{
  "timestamp": "2024-05-01T12:00:00.123456Z",
  "host": "web-01",
  "cpu": {"percent": 12.5},
  "memory": {"percent": 40.2, "used": 3435973837, "total": 8589934592},
  "disk": {"percent": 71.0, "used": 76235669504, "total": 107374182400},
  "uptime_seconds": 93784
}`

// DefaultProcesses is a well-formed process list body.
const DefaultProcesses = `{
  "ok": true,
  "rows": [
    {"name": "postgres", "count": 3, "cpu": 4.5, "mem": 12.1, "rss": 524288000,
     "children": [{"pid": 101, "name": "postgres", "rss": 262144000}, {"pid": 102, "name": "postgres: writer", "rss": 131072000}]},
    {"name": "nginx", "count": 2, "cpu": 1.2, "mem": 0.8, "rss": 20971520,
     "children": [{"pid": 201, "name": "nginx", "rss": 10485760}]},
    {"name": "sshd", "count": 1, "cpu": 0, "mem": 0.1, "rss": 4194304}
  ]
}`

type response struct {
	status int
	body   string
}

// Server is an httptest server speaking the sysdash backend API.
// Responses can be swapped at any time; requests are recorded.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	metrics    response
	processes  response
	terminate  response
	queries    []string
	terminated []int
	requestIDs []string
	sessionIDs []string
}

// New starts a fake backend that serves the default bodies.
// It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		metrics:   response{http.StatusOK, DefaultMetrics},
		processes: response{http.StatusOK, DefaultProcesses},
		terminate: response{http.StatusOK, `{"ok": true}`},
	}

	r := mux.NewRouter()
	r.Use(s.recordHeaders)
	r.HandleFunc("/api/metrics", s.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/processes", s.handleProcesses).Methods(http.MethodGet)
	r.HandleFunc("/api/process/{pid:[0-9]+}/terminate", s.handleTerminate).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetMetrics changes the metrics response.
func (s *Server) SetMetrics(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = response{status, body}
}

// SetProcesses changes the process list response.
func (s *Server) SetProcesses(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes = response{status, body}
}

// SetTerminate changes the terminate response.
func (s *Server) SetTerminate(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminate = response{status, body}
}

// Queries returns the q values seen by the process endpoint, in order.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Terminated returns the pids seen by the terminate endpoint, in order.
func (s *Server) Terminated() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.terminated...)
}

// RequestIDs returns the X-Request-ID header of every request.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

// SessionIDs returns the X-Session-ID header of every request.
func (s *Server) SessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sessionIDs...)
}

func (s *Server) recordHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, r.Header.Get("X-Request-ID"))
		s.sessionIDs = append(s.sessionIDs, r.Header.Get("X-Session-ID"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := s.metrics
	s.mu.Unlock()
	write(w, resp)
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.Query().Get("q"))
	resp := s.processes
	s.mu.Unlock()
	write(w, resp)
}

func (s *Server) handleTerminate(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "bad pid", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.terminated = append(s.terminated, pid)
	resp := s.terminate
	s.mu.Unlock()
	write(w, resp)
}

func write(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

// Rows encodes process groups into an ok:true body.
func Rows(rows any) string {
	data, err := json.Marshal(map[string]any{"ok": true, "rows": rows})
	if err != nil {
		panic(err)
	}
	return string(data)
}
