package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileServer(t *testing.T) *FileServer {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>game</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "css"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "css", "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatalf("write css: %v", err)
	}
	return NewFileServer(root)
}

func serveFile(fs *FileServer, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	fs.ServeHTTP(rec, req)
	return rec
}

func TestFileServerServesFiles(t *testing.T) {
	fs := newTestFileServer(t)

	rec := serveFile(fs, http.MethodGet, "/index.html")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html" {
		t.Errorf("content type %q", ct)
	}
	if rec.Body.String() != "<html>game</html>" {
		t.Errorf("body %q", rec.Body.String())
	}

	rec = serveFile(fs, http.MethodGet, "/css/style.css")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/css" {
		t.Errorf("css: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestFileServerDirectoryIndex(t *testing.T) {
	fs := newTestFileServer(t)

	rec := serveFile(fs, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.String() != "<html>game</html>" {
		t.Errorf("directory request must serve index.html, got %q", rec.Body.String())
	}
}

func TestFileServerDecodesEscapedPaths(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "hello world.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileServer(root)

	rec := serveFile(fs, http.MethodGet, "/hello%20world.txt")
	if rec.Code != http.StatusOK || rec.Body.String() != "hi" {
		t.Errorf("status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestFileServerMissingFile(t *testing.T) {
	fs := newTestFileServer(t)

	rec := serveFile(fs, http.MethodGet, "/nothing.png")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.String() != "We are sorry, the file you requested cannot be found." {
		t.Errorf("body %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("content type %q", ct)
	}
}

func TestFileServerBlocksEscapes(t *testing.T) {
	fs := newTestFileServer(t)

	rec := serveFile(fs, http.MethodGet, "/%2e%2e/secret.txt")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.String() != "The file you requested is outside server scope." {
		t.Errorf("body %q", rec.Body.String())
	}
}

func TestFileServerRejectsWrongMethod(t *testing.T) {
	fs := newTestFileServer(t)

	rec := serveFile(fs, http.MethodPost, "/index.html")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Errorf("Allow %q", allow)
	}
	if rec.Body.String() != "Invalid method" {
		t.Errorf("body %q", rec.Body.String())
	}
}

func TestFileServerHead(t *testing.T) {
	fs := newTestFileServer(t)

	rec := serveFile(fs, http.MethodHead, "/index.html")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD must not carry a body, got %q", rec.Body.String())
	}
	if cl := rec.Header().Get("Content-Length"); cl != "17" {
		t.Errorf("Content-Length %q, want 17", cl)
	}
}

func TestFileServerDefaultContentType(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "data.bin"), []byte{0, 1, 2}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileServer(root)

	rec := serveFile(fs, http.MethodGet, "/data.bin")
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("content type %q", ct)
	}
}
