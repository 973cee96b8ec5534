package webserver

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func startTestServer(t *testing.T, dir string) *Server {
	t.Helper()

	server := NewServer(Config{
		Enabled:   true,
		Address:   "127.0.0.1",
		Port:      0,
		Directory: dir,
	})
	if err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() { server.Stop() })

	return server
}

// TestServer_Health verifies the health endpoint shape.
func TestServer_Health(t *testing.T) {
	server := startTestServer(t, t.TempDir())

	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

// TestServer_ServesExports verifies that artifacts in the export directory
// are downloadable under /exports.
func TestServer_ServesExports(t *testing.T) {
	dir := t.TempDir()
	content := `[{"generated_at":"2024-06-15T10:00:00.000000+00:00","qty":3}]`
	if err := os.WriteFile(filepath.Join(dir, "orders_20240615T100000.000000Z.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}

	server := startTestServer(t, dir)

	resp, err := http.Get("http://" + server.Addr() + "/exports/orders_20240615T100000.000000Z.json")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(got) != content {
		t.Errorf("unexpected body: %s", got)
	}
}

// TestServer_MissingExport verifies a 404 for an unknown artifact.
func TestServer_MissingExport(t *testing.T) {
	server := startTestServer(t, t.TempDir())

	resp, err := http.Get("http://" + server.Addr() + "/exports/missing.json")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
