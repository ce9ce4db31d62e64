// Package ingest receives raw snapshot uploads over HTTP and hands them to
// the processing pipeline. Uploads arrive from a capture script running in
// the player's request path, so the handler is strict about the metadata it
// requires and lenient about everything else.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzip"

	"github.com/htrskmiku/solabot/internal/config"
)

// maxBodySize caps one upload. Real snapshots sit well under a megabyte.
const maxBodySize = 32 << 20

// API type labels baked into raw file names.
const (
	APITypeMysekai = "mysekai"
	APITypeSuite   = "suite"
)

var (
	userIDPattern  = regexp.MustCompile(`/user/(\d+)`)
	mysekaiPattern = regexp.MustCompile(`/mysekai(\?|$)`)
)

// Job points the pipeline at one stored raw snapshot.
type Job struct {
	Region  string
	APIType string
	UserID  int64
	Path    string
}

// Server is the upload ingress. It stores raw bodies under the configured
// raw directory and queues a Job per accepted upload.
type Server struct {
	cfg  config.Server
	jobs chan Job
}

// NewServer creates the ingress with a buffered job queue.
func NewServer(cfg config.Server) *Server {
	return &Server{
		cfg:  cfg,
		jobs: make(chan Job, 128),
	}
}

// Jobs is the queue consumed by the pipeline worker.
func (s *Server) Jobs() <-chan Job { return s.jobs }

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/upload", s.handleUpload)
	r.Get("/upload.js", s.handleScript)
	return r
}

// Run serves until ctx is cancelled, then drains with a short shutdown
// grace period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("upload ingress listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down ingress: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ingress listener: %w", err)
		}
		return nil
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	originalURL := r.Header.Get("X-Original-Url")
	if originalURL == "" {
		http.Error(w, "missing X-Original-Url header", http.StatusBadRequest)
		return
	}

	apiType, ok := ClassifyAPI(originalURL)
	if !ok {
		http.Error(w, "unrecognized API path", http.StatusBadRequest)
		return
	}
	userID, ok := ExtractUserID(originalURL)
	if !ok {
		http.Error(w, "no user id in API path", http.StatusBadRequest)
		return
	}
	region, ok := s.regionFor(originalURL)
	if !ok {
		http.Error(w, "unknown game server domain", http.StatusBadRequest)
		return
	}

	body, err := readBody(r)
	if err != nil {
		slog.Warn("upload body rejected", "err", err, "url", originalURL)
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.cfg.RawDir, fmt.Sprintf("%s_%s_%d.bin", region, apiType, userID))
	if err := os.MkdirAll(s.cfg.RawDir, 0o755); err != nil {
		slog.Error("raw dir unavailable", "dir", s.cfg.RawDir, "err", err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		slog.Error("raw snapshot write failed", "path", path, "err", err)
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}

	slog.Info("snapshot stored",
		"region", region,
		"api", apiType,
		"user", userID,
		"bytes", len(body),
	)

	job := Job{Region: region, APIType: apiType, UserID: userID, Path: path}
	select {
	case s.jobs <- job:
	default:
		slog.Warn("job queue full, snapshot stored but not queued", "path", path)
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	fmt.Fprintf(w, captureScript, s.cfg.PublicURL)
}

// captureScript runs inside an intercepting proxy and forwards interesting
// responses to this service, preserving the original request URL.
const captureScript = `// Snapshot forwarder. Load into your intercepting proxy.
(function () {
  var endpoint = %q + "/upload";
  function forward(originalUrl, body) {
    if (!/\/user\/\d+\/(mysekai|suite)/.test(originalUrl)) return;
    fetch(endpoint, {
      method: "POST",
      headers: { "X-Original-Url": originalUrl },
      body: body,
    }).catch(function () {});
  }
  if (typeof module !== "undefined") module.exports = forward;
  if (typeof globalThis !== "undefined") globalThis.__snapshotForward = forward;
})();
`

// ClassifyAPI maps an upstream API URL to the stored snapshot type.
func ClassifyAPI(originalURL string) (string, bool) {
	switch {
	case mysekaiPattern.MatchString(originalURL):
		return APITypeMysekai, true
	case strings.Contains(originalURL, "/suite/"):
		return APITypeSuite, true
	default:
		return "", false
	}
}

// ExtractUserID pulls the numeric player id out of an upstream API URL.
func ExtractUserID(originalURL string) (int64, bool) {
	m := userIDPattern.FindStringSubmatch(originalURL)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// regionFor maps the upstream host to a region code. Exact hostnames match
// first, then suffixes, so one entry can cover a sharded domain family.
func (s *Server) regionFor(originalURL string) (string, bool) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return "", false
	}
	host := u.Hostname()
	if host == "" {
		return "", false
	}

	if region, ok := s.cfg.GameServerDomains[host]; ok {
		return region, true
	}
	for domain, region := range s.cfg.GameServerDomains {
		if strings.HasSuffix(host, domain) {
			return region, true
		}
	}
	return "", false
}

func readBody(r *http.Request) ([]byte, error) {
	var reader io.Reader = http.MaxBytesReader(nil, r.Body, maxBodySize)

	if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("opening gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}
