package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/nao1215/aptscout/internal/fetch"
	"github.com/nao1215/aptscout/internal/model"
	"github.com/nao1215/aptscout/internal/price"
)

const shutdownTimeout = 5 * time.Second

// Entry is one element of the /data response.
type Entry struct {
	Ad  json.RawMessage `json:"ad"`
	GPT any             `json:"gpt"`
}

// Server serves the viewer API.
type Server struct {
	adsDir     string
	summaryDir string
	staticDir  string
	fetcher    fetch.Fetcher
	logger     *slog.Logger
	router     *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStaticDir serves the files in dir for every other path.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// New returns a Server reading records from adsDir and summaries from
// summaryDir. fetcher renders pages for /fetch-html; a nil fetcher disables
// that endpoint.
func New(adsDir, summaryDir string, fetcher fetch.Fetcher, opts ...Option) *Server {
	s := &Server{
		adsDir:     adsDir,
		summaryDir: summaryDir,
		fetcher:    fetcher,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.HandleFunc("/data", s.handleData).Methods(http.MethodGet)
	r.HandleFunc("/fetch-html", s.handleFetchHTML).Methods(http.MethodGet)
	if s.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
	s.router = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("viewer api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

// Entries joins every record in the ads directory with its summary.
// Records without a summary get model.FallbackSummary. Unreadable files
// are logged and skipped.
func (s *Server) Entries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.adsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ads directory: %w", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, price.SummarySuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		adPath := filepath.Join(s.adsDir, name)
		ad, err := readJSON(adPath)
		if err != nil {
			s.logger.Error("failed to read ad", "path", adPath, "error", err)
			continue
		}

		var gpt any = model.FallbackSummary()
		gptPath := filepath.Join(s.summaryDir, strings.TrimSuffix(name, ".json")+price.SummarySuffix)
		summary, err := readJSON(gptPath)
		switch {
		case err == nil:
			gpt = summary
		case errors.Is(err, fs.ErrNotExist):
		default:
			s.logger.Warn("failed to read summary, using fallback", "path", gptPath, "error", err)
		}
		entries = append(entries, Entry{Ad: ad, GPT: gpt})
	}
	return entries, nil
}

func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.Entries()
	if err != nil {
		s.logger.Error("failed to build data", "error", err)
		http.Error(w, "failed to read listings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		s.logger.Error("failed to write data", "error", err)
	}
}

func (s *Server) handleFetchHTML(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	if s.fetcher == nil {
		http.Error(w, "page fetching is disabled", http.StatusServiceUnavailable)
		return
	}

	s.logger.Info("fetching url", "url", target)
	body, err := s.fetcher.Fetch(r.Context(), target)
	if err != nil {
		s.logger.Error("failed to fetch url", "url", target, "error", err)
		http.Error(w, "error fetching the URL", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write page", "url", target, "error", err)
	}
}

func readJSON(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: invalid json", path)
	}
	return json.RawMessage(data), nil
}
