package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
)

// SoundServer serves fake audio clips and records every request it receives
type SoundServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	missing  map[string]bool
}

// NewSoundServer starts a server answering every GET with MP3Bytes of the
// requested file name. Names passed in missing get a 404.
func NewSoundServer(t *testing.T, missing ...string) *SoundServer {
	t.Helper()

	s := &SoundServer{missing: make(map[string]bool)}
	for _, name := range missing {
		s.missing[name] = true
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// EscapedPath keeps %20 so names match the cached file names
		name := path.Base(r.URL.EscapedPath())

		s.mu.Lock()
		s.requests = append(s.requests, name)
		s.mu.Unlock()

		if s.missing[name] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(MP3Bytes(name))
	}))
	t.Cleanup(s.Close)

	return s
}

// URL returns the address of a clip on this server
func (s *SoundServer) URL(name string) string {
	return s.Server.URL + "/audio/" + strings.TrimPrefix(name, "/")
}

// Requests returns the file names requested so far
func (s *SoundServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]string, len(s.requests))
	copy(result, s.requests)
	return result
}

// MockFetcher resolves sound URLs without touching the network
type MockFetcher struct {
	Errors map[string]error
	Calls  []string
}

// Fetch records the call and returns the last URL path segment
func (m *MockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.Calls = append(m.Calls, url)

	if err, ok := m.Errors[url]; ok {
		return "", err
	}

	url = strings.ReplaceAll(url, " ", "%20")
	return path.Base(url), nil
}

// MockTranslator returns canned translations
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	Calls        []string
}

// Translate mocks a translation provider
func (m *MockTranslator) Translate(ctx context.Context, phrase string) (string, error) {
	m.Calls = append(m.Calls, phrase)

	if err, ok := m.Errors[phrase]; ok {
		return "", err
	}
	return m.Translations[phrase], nil
}

// Name returns the provider name
func (m *MockTranslator) Name() string {
	return "mock"
}
