// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/plsync/plsync/internal/models"
	"github.com/plsync/plsync/internal/shared"
)

// MockSource is a test double for [services.Source] serving canned
// playlist exports.
type MockSource struct {
	SourceName string
	Exports    map[string]*models.PlaylistExport
	AuthErr    error
	ExportErr  error
}

func (m *MockSource) Name() string {
	if m.SourceName == "" {
		return "mock"
	}
	return m.SourceName
}

func (m *MockSource) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthErr
}

func (m *MockSource) ExportPlaylist(ctx context.Context, ref string) (*models.PlaylistExport, error) {
	if m.ExportErr != nil {
		return nil, m.ExportErr
	}
	if export, ok := m.Exports[ref]; ok {
		return export, nil
	}
	return nil, shared.ErrPlaylistNotFound
}

// MockAcquirer is a test double for [downloader.Acquirer] that records
// calls and fails for titles listed in Failures.
type MockAcquirer struct {
	mu       sync.Mutex
	calls    []string
	Failures map[string]error
}

func (m *MockAcquirer) Acquire(ctx context.Context, title, artist, destDir string) error {
	m.mu.Lock()
	m.calls = append(m.calls, title)
	m.mu.Unlock()

	if err, ok := m.Failures[title]; ok {
		return err
	}
	return nil
}

// Calls returns a copy of the acquired titles in call order.
func (m *MockAcquirer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
