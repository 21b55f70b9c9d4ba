package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Fixtures maps a request to the body served for it. A key is either a bare
// path ("/exams") or a path with its encoded query ("/api?property=x"), the
// latter taking precedence.
type Fixtures map[string]string

// FixtureServer serves canned html and json bodies and counts the requests it
// received per path.
type FixtureServer struct {
	*httptest.Server

	mutex    sync.Mutex
	fixtures Fixtures
	hits     map[string]int
}

func NewFixtureServer(t testing.TB, fixtures Fixtures) *FixtureServer {
	s := &FixtureServer{
		fixtures: fixtures,
		hits:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *FixtureServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	s.hits[r.URL.Path]++
	body, ok := s.fixtures[r.URL.Path+"?"+r.URL.RawQuery]
	if !ok {
		body, ok = s.fixtures[r.URL.Path]
	}
	s.mutex.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		w.Header().Set("content-type", "application/json")
	} else {
		w.Header().Set("content-type", "text/html; charset=utf-8")
	}
	w.Write([]byte(body))
}

// Set replaces or adds a fixture while the server is running.
func (s *FixtureServer) Set(key, body string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.fixtures[key] = body
}

// Hits returns how many requests were made to `path`.
func (s *FixtureServer) Hits(path string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.hits[path]
}
