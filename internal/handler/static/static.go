// Package static serves files from a directory tree mounted under a URL
// prefix, plus the single-page application's entry file at the site root.
//
// All file access goes through an os.Root, so a request can never read a file
// outside the configured directory, whether it tries ".." segments or a
// symlink that points elsewhere.
package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/playperu/echochat/internal/httpjson"
)

const DefaultIndexFile = "index.html"

// IndexNotFoundResponse is returned at the root path when no entry file exists.
type IndexNotFoundResponse struct {
	Message string `json:"message"`
}

const indexNotFound = "Index not found"

type Handler struct {
	root      *os.Root
	indexFile string
	logger    *slog.Logger
}

// New opens dir for serving. indexFile names the entry file served at the site
// root; empty means DefaultIndexFile.
func New(dir, indexFile string, logger *slog.Logger) (*Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %q: not a directory", dir)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening static dir %q: %w", dir, err)
	}

	if indexFile == "" {
		indexFile = DefaultIndexFile
	}
	return &Handler{root: root, indexFile: indexFile, logger: logger}, nil
}

func (h *Handler) Close() error { return h.root.Close() }

// Routes serves GET/HEAD /<rel> from the directory. Mount it under the static
// prefix; chi strips the prefix from the wildcard.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.serveAsset)
	r.Head("/*", h.serveAsset)
	return r
}

// Index serves the entry file at the site root, or a JSON notice when it is
// absent. Absence is an expected state, so the status is always 200.
func (h *Handler) Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, info, err := h.open(h.indexFile)
		if err != nil {
			h.logger.Debug("index file unavailable", "file", h.indexFile, "error", err)
			httpjson.Write(w, http.StatusOK, IndexNotFoundResponse{Message: indexNotFound})
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}

// Fallback is the root handler used when no static directory is available.
func Fallback() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, http.StatusOK, IndexNotFoundResponse{Message: indexNotFound})
	}
}

// Check reports whether the directory is still readable.
func (h *Handler) Check(_ context.Context) error {
	if _, err := h.root.Stat("."); err != nil {
		return fmt.Errorf("stat static dir: %w", err)
	}
	return nil
}

func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(rel)
		if err != nil {
			h.notFound(w, &NotFoundError{Path: rel, Err: err})
			return
		}
		rel = unescaped
	}

	f, info, err := h.open(rel)
	if err != nil {
		h.notFound(w, err)
		return
	}
	defer f.Close()

	ctype, err := contentType(f, info.Name())
	if err != nil {
		h.logger.Error("detecting content type", "path", rel, "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", ctype)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) notFound(w http.ResponseWriter, err error) {
	h.logger.Debug("static asset not found", "error", err)
	httpjson.Error(w, http.StatusNotFound, "not found")
}

// open resolves rel inside the root. Anything other than a regular file that
// stays inside the root is reported as *NotFoundError.
func (h *Handler) open(rel string) (*os.File, fs.FileInfo, error) {
	name, ok := cleanRel(rel)
	if !ok {
		return nil, nil, &NotFoundError{Path: rel, Err: errOutsideRoot}
	}

	f, err := h.root.Open(name)
	if err != nil {
		return nil, nil, &NotFoundError{Path: rel, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, &NotFoundError{Path: rel, Err: err}
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, &NotFoundError{Path: rel, Err: errNotRegular}
	}
	return f, info, nil
}

// cleanRel normalizes a slash-separated request path into a root-relative
// name. It fails when the path climbs above the root.
func cleanRel(rel string) (string, bool) {
	if strings.ContainsRune(rel, 0) || strings.Contains(rel, `\`) {
		return "", false
	}
	name := path.Clean(strings.TrimPrefix(rel, "/"))
	if name == ".." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
		return "", false
	}
	return name, true
}

// contentType infers the type from the extension, falling back to sniffing
// the leading bytes. f is rewound before returning.
func contentType(f io.ReadSeeker, name string) (string, error) {
	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		return ctype, nil
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("sniffing %s: %w", name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding %s: %w", name, err)
	}
	return mt.String(), nil
}

var (
	errOutsideRoot = errors.New("path escapes static root")
	errNotRegular  = errors.New("not a regular file")
)
