package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// TodoistFixture is the data served by a fake Todoist API.
type TodoistFixture struct {
	Projects []map[string]any
	Sections map[string][]map[string]any
	Tasks    []map[string]any
}

// TodoistServer is an httptest server that mimics the three REST collections.
type TodoistServer struct {
	*httptest.Server

	mu       sync.Mutex
	fixture  TodoistFixture
	calls    map[string]int
	statuses map[string][]int
}

// NewTodoistServer starts a fake API and registers cleanup.
func NewTodoistServer(t testing.TB, fixture TodoistFixture) *TodoistServer {
	t.Helper()

	s := &TodoistServer{
		fixture:  fixture,
		calls:    make(map[string]int),
		statuses: make(map[string][]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// FailNext queues HTTP statuses returned by the next requests to path
// ("/projects", "/sections", or "/tasks") before normal responses resume.
func (s *TodoistServer) FailNext(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = append(s.statuses[path], statuses...)
}

// Calls returns how many requests reached path.
func (s *TodoistServer) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *TodoistServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	path := r.URL.Path
	s.calls[path]++
	if queued := s.statuses[path]; len(queued) > 0 {
		s.statuses[path] = queued[1:]
		s.mu.Unlock()
		w.WriteHeader(queued[0])
		return
	}
	var body any
	switch path {
	case "/projects":
		body = nonNil(s.fixture.Projects)
	case "/sections":
		body = nonNil(s.fixture.Sections[r.URL.Query().Get("project_id")])
	case "/tasks":
		body = nonNil(s.fixture.Tasks)
	default:
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func nonNil(items []map[string]any) []map[string]any {
	if items == nil {
		return []map[string]any{}
	}
	return items
}
