package handler

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileServer serves the frontend files under a single root directory.
// Requests for a directory fall through to its index.html.
type FileServer struct {
	root string
}

func NewFileServer(root string) *FileServer {
	return &FileServer{root: filepath.Clean(root)}
}

var mimeTypes = map[string]string{
	".htm":  "text/html",
	".html": "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".js":   "text/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpe":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".ico":  "image/vnd.microsoft.icon",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".svgz": "image/svg+xml",
	".mp3":  "audio/mpeg",
}

func contentTypeByExt(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}

func (f *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		respondPlain(w, http.StatusMethodNotAllowed, "Invalid method")
		return
	}

	decoded, err := url.PathUnescape(r.URL.Path)
	if err != nil {
		respondPlain(w, http.StatusBadRequest, "The file you requested is outside server scope.")
		return
	}

	target := filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(decoded, "/")))
	if target != f.root && !strings.HasPrefix(target, f.root+string(filepath.Separator)) {
		respondPlain(w, http.StatusBadRequest, "The file you requested is outside server scope.")
		return
	}

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if err != nil || !info.Mode().IsRegular() {
		respondPlain(w, http.StatusNotFound, "We are sorry, the file you requested cannot be found.")
		return
	}

	file, err := os.Open(target)
	if err != nil {
		respondPlain(w, http.StatusNotFound, "We are sorry, the file you requested cannot be found.")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentTypeByExt(target))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	io.Copy(w, file)
}

func respondPlain(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	io.WriteString(w, message)
}
