package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"newsradar/internal/store"
	"newsradar/pkg/fetch"
)

// Fetcher triggers an on-demand fetch cycle.
type Fetcher interface {
	Run(ctx context.Context) (fetch.Result, error)
}

// Server provides the read-only query API and the manual fetch trigger.
type Server struct {
	store   store.Store
	fetcher Fetcher
	port    int
	log     *slog.Logger
}

// New creates a new HTTP server.
func New(st store.Store, fetcher Fetcher, port int, log *slog.Logger) *Server {
	if port == 0 {
		port = 8080
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		store:   st,
		fetcher: fetcher,
		port:    port,
		log:     log,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/api/news", s.handleList)
	r.Get("/api/news/{id}", s.handleGet)
	r.Post("/api/fetch-news", s.handleFetch)

	return r
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOpts{Limit: 100}

	if raw := r.URL.Query().Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "skip must be >= 0"})
			return
		}
		opts.Skip = skip
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "limit must be in [1, 1000]"})
			return
		}
		opts.Limit = limit
	}
	opts.Source = r.URL.Query().Get("source")

	items, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.log.Error("list news failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	if items == nil {
		items = []store.NewsItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid news id"})
		return
	}

	item, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "News item not found"})
		return
	}
	if err != nil {
		s.log.Error("get news failed", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	s.log.Info("manual news fetch triggered")

	res, err := s.fetcher.Run(r.Context())
	if err != nil {
		s.log.Error("manual fetch failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"saved":      res.Saved,
		"duplicates": res.Duplicates,
		"message":    fmt.Sprintf("Fetched news: %d new items, %d duplicates", res.Saved, res.Duplicates),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
