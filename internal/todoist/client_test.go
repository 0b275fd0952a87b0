package todoist_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"todoink/internal/config"
	"todoink/internal/services"
	"todoink/internal/todoist"
)

const testToken = "b269282c44f23c58d5076eaba1290c3aa4e35c14"

func newTestClient(t *testing.T, srv *httptest.Server) *todoist.Client {
	t.Helper()
	client, err := todoist.New("Bearer "+testToken, todoist.Endpoints{
		Projects: srv.URL + "/projects",
		Sections: func(id todoist.ID) string { return srv.URL + "/sections?project_id=" + id.String() },
		Tasks:    srv.URL + "/tasks",
	},
		todoist.WithHTTPClient(srv.Client()),
		todoist.WithRateLimit(0),
		todoist.WithRetryBackoff(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestListTasksSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id")
		}
		if r.Method != http.MethodGet || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": "11", "content": "Buy milk", "project_id": "1", "section_id": "7"}, {"id": 12, "content": "Call mom", "project_id": 2}]`)
	}))
	defer srv.Close()

	tasks, err := newTestClient(t, srv).ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Content != "Buy milk" || tasks[1].ID != "12" || tasks[1].ProjectID != "2" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestListTasksEmptyCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	tasks, err := newTestClient(t, srv).ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestFailureClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		marker    error
		wantCalls int32
	}{
		{"unauthorized", http.StatusUnauthorized, `Forbidden`, services.ErrAuth, 1},
		{"forbidden", http.StatusForbidden, `{"error": "invalid token"}`, services.ErrAuth, 1},
		{"server error retried once", http.StatusServiceUnavailable, `busy`, services.ErrNetwork, 2},
		{"rate limited retried once", http.StatusTooManyRequests, `slow down`, services.ErrNetwork, 2},
		{"not found", http.StatusNotFound, `no such endpoint`, services.ErrParse, 1},
		{"malformed body", http.StatusOK, `{"results": [{"id": "1"`, services.ErrParse, 1},
		{"html body", http.StatusOK, `<html></html>`, services.ErrParse, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).ListProjects(context.Background())
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, got)
			}
		})
	}
}

func TestAuthErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": "invalid token"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ListTasks(context.Background())
	var apiErr *todoist.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "invalid token" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestNetworkFailureRecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"id": "1", "name": "Inbox"}]`)
	}))
	defer srv.Close()

	projects, err := newTestClient(t, srv).ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || calls.Load() != 2 {
		t.Fatalf("unexpected result %+v after %d calls", projects, calls.Load())
	}
}

func TestUnreachableHostIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := newTestClient(t, srv)
	srv.Close()

	_, err := client.ListTasks(context.Background())
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestRequestTimeoutIsRetriedNetworkError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := todoist.New(testToken, todoist.Endpoints{
		Projects: srv.URL + "/projects",
		Sections: func(id todoist.ID) string { return srv.URL + "/sections?project_id=" + id.String() },
		Tasks:    srv.URL + "/tasks",
	},
		todoist.WithHTTPClient(srv.Client()),
		todoist.WithTimeout(50*time.Millisecond),
		todoist.WithRateLimit(0),
		todoist.WithRetryBackoff(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	_, err = client.ListTasks(ctx)
	if !errors.Is(err, services.ErrNetwork) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected network timeout, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("caller context must stay live")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}
}

func TestCursorPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{"results": [{"id": "1", "content": "a"}], "next_cursor": "page2"}`)
		case "page2":
			fmt.Fprint(w, `{"results": [{"id": "2", "content": "b"}], "next_cursor": null}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()

	tasks, err := newTestClient(t, srv).ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || tasks[1].Content != "b" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestNewRequiresToken(t *testing.T) {
	_, err := todoist.New("Bearer ", todoist.Endpoints{
		Projects: "http://x/projects",
		Sections: func(todoist.ID) string { return "http://x/sections" },
		Tasks:    "http://x/tasks",
	})
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestNewFromSettingsExpandsSectionsTemplate(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	settings := config.Settings{
		APIToken:       testToken,
		ProjectsURL:    srv.URL + "/projects",
		SectionsURL:    srv.URL + "/sections?project_id=",
		TasksURL:       srv.URL + "/tasks",
		RequestTimeout: 5 * time.Second,
		RateLimit:      100,
	}
	client, err := todoist.NewFromSettings(settings, nil)
	if err != nil {
		t.Fatalf("NewFromSettings: %v", err)
	}
	if _, err := client.ListSections(context.Background(), "2203306141"); err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if !strings.Contains(gotQuery, "project_id=2203306141") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}
