package tinyServer

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const testDate = "Tue, 02 Jan 2024 03:04:05 GMT"

func testNow() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func ExpectEqual(t *testing.T, expect, actual string) {
	t.Helper()
	if expect != actual {
		t.Errorf("Got %q, want %q", actual, expect)
	}
}

type mockAddr struct {
	str string
}

func (m mockAddr) Network() string { return "tcp" }
func (m mockAddr) String() string  { return m.str }

// mockConn reads the request from in and records everything written to out.
type mockConn struct {
	in     *strings.Reader
	out    bytes.Buffer
	closed int
}

func newMockConn(request string) *mockConn {
	return &mockConn{in: strings.NewReader(request)}
}

func (m *mockConn) Read(b []byte) (int, error)  { return m.in.Read(b) }
func (m *mockConn) Write(b []byte) (int, error) { return m.out.Write(b) }

func (m *mockConn) Close() error {
	m.closed++
	return nil
}

func (m *mockConn) LocalAddr() net.Addr                { return mockAddr{"(server)"} }
func (m *mockConn) RemoteAddr() net.Addr               { return mockAddr{"(client)"} }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

// writeFiles lays out files (slash separated names) under a fresh root.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestServer(t *testing.T, files map[string]string) *HTTPServer {
	t.Helper()
	return NewHTTPServer(Config{
		Root:   writeFiles(t, files),
		Logger: zerolog.Nop(),
		Now:    testNow,
	})
}

// serve runs a single exchange over a mock connection.
func serve(t *testing.T, s *HTTPServer, request string) *mockConn {
	t.Helper()
	conn := newMockConn(request)
	s.ServeConn(conn)
	if conn.closed != 1 {
		t.Errorf("connection closed %d times, want 1", conn.closed)
	}
	return conn
}
