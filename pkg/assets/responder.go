package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// IndexFile is served for "/" and for paths ending in "/".
const IndexFile = "index.html"

// mimeTypes is the allowlist of servable file types.
var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
}

// MimeType returns the content type for name and whether it may be served.
func MimeType(name string) (string, bool) {
	t, ok := mimeTypes[strings.ToLower(path.Ext(name))]
	return t, ok
}

// Responder serves assets from a Source.
type Responder struct {
	source Source
	logger *slog.Logger
	maxAge time.Duration
}

// NewResponder creates a Responder. A nil logger uses slog.Default.
func NewResponder(source Source, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		source: source,
		logger: logger.With("component", "assets"),
	}
}

// WithMaxAge sets the Cache-Control max-age for assets that are not
// fingerprinted. Zero sends no Cache-Control header for them.
func (rs *Responder) WithMaxAge(d time.Duration) *Responder {
	rs.maxAge = d
	return rs
}

// ServeHTTP implements http.Handler.
func (rs *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	name, ok := relPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	contentType, ok := MimeType(name)
	if !ok {
		rs.logger.Warn("unsupported asset type", "path", name)
		http.Error(w, "Not Implemented", http.StatusNotImplemented)
		return
	}

	content, modTime, err := rs.source.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rs.logger.Debug("asset not found", "path", name)
			http.NotFound(w, r)
			return
		}
		rs.logger.Error("asset open failed", "path", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", contentType)
	rs.applyCacheHeaders(w, name)
	http.ServeContent(w, r, name, modTime, content)
}

// relPath returns a sanitized relative path for a request path. It rejects
// traversal and absolute-path tricks so a request cannot escape the source.
func relPath(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += IndexFile
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// A leading "/" after trimming indicates an absolute-path attempt
	// (e.g. "//etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so traversal attempts are not
	// cleaned into a different valid path.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." || seg == "" {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// applyCacheHeaders applies cache control headers for name.
func (rs *Responder) applyCacheHeaders(w http.ResponseWriter, name string) {
	switch {
	case isFingerprinted(name):
		// Fingerprinted files are immutable - cache for 1 year
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case rs.maxAge > 0:
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, must-revalidate", int(rs.maxAge.Seconds())))
	}
}

// isFingerprinted checks if a file path appears to be fingerprinted.
// Fingerprinted files have a hash in their name, e.g., "app.a1b2c3d4.css"
func isFingerprinted(name string) bool {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 3 {
		return false
	}

	// Hashes are 8+ hex characters before the extension
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
