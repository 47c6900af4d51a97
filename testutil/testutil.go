// Package testutil provides common testing helpers: stdout capture, temporary
// directories and npm package fixtures (package.json manifests and tarballs).
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jongio/npmkit/fileutil"
)

// CaptureOutput captures stdout during function execution.
// The original stdout is always restored, even if the function returns an error.
func CaptureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	os.Stdout = w

	// Buffered to avoid goroutine leak
	outCh := make(chan string, 1)
	go func() {
		var output strings.Builder
		buf := make([]byte, 1024)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				output.Write(buf[:n])
			}
			if readErr != nil {
				break
			}
		}
		outCh <- output.String()
	}()

	fnErr := fn()

	if err := w.Close(); err != nil {
		t.Logf("Failed to close pipe writer: %v", err)
	}
	os.Stdout = origStdout

	return <-outCh, fnErr
}

// TempDir creates a temporary directory for testing with automatic cleanup.
// Symbolic links in the returned path are resolved so that it compares equal
// to canonicalized paths (macOS places temp dirs behind /var -> /private/var).
func TempDir(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "npmkit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Failed to clean up temp directory %s: %v", tmpDir, err)
		}
	})

	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}
	return tmpDir
}

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// Manifest is the subset of package.json written by WritePackageJSON.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// WritePackageJSON writes a package.json for m into dir (created if missing)
// and returns dir.
func WritePackageJSON(t *testing.T, dir string, m Manifest) string {
	t.Helper()

	if err := fileutil.EnsureDir(dir); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, "package.json"), m); err != nil {
		t.Fatalf("Failed to write package.json: %v", err)
	}
	return dir
}
