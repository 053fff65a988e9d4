// Package server exposes the running gesture loop over HTTP: health, status,
// the event journal, an MJPEG preview and a websocket feed of frame results.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultEventLimit is how many events /api/events returns without ?limit.
const DefaultEventLimit = 50

// Controller is the part of the gesture loop the server reads and toggles.
// *app.App satisfies it.
type Controller interface {
	Latest() app.FrameResult
	IsEnabled() bool
	SetEnabled(enabled bool)
	VolumeRange() control.VolumeRange
}

// Config holds the server configuration. Nil components disable their routes.
type Config struct {
	Controller Controller
	Events     *store.EventRepository
	Frames     FrameSource
	Hub        *Hub
}

// Server represents the HTTP server for the gesture loop.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)

	s.router.Get("/api/health", s.handleHealth)

	if s.config.Controller != nil {
		s.router.Get("/api/status", s.handleStatus)
		s.router.Put("/api/enabled", s.handleSetEnabled)
	}

	if s.config.Events != nil {
		s.router.Get("/api/events", s.handleEvents)
		s.router.Get("/api/events/{id}", s.handleEvent)
	}

	if s.config.Frames != nil {
		s.router.Get("/api/stream", NewStreamHandler(s.config.Frames).ServeHTTP)
	}

	if s.config.Hub != nil {
		s.router.Get("/api/live", s.config.Hub.ServeHTTP)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Enabled     bool                `json:"enabled"`
	VolumeRange control.VolumeRange `json:"volume_range"`
	Latest      app.FrameResult     `json:"latest"`
	Counts      map[string]int      `json:"counts,omitempty"`
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Enabled:     s.config.Controller.IsEnabled(),
		VolumeRange: s.config.Controller.VolumeRange(),
		Latest:      s.config.Controller.Latest(),
	}

	if s.config.Events != nil {
		counts, err := s.config.Events.CountByLabel(r.Context())
		if err != nil {
			log.Printf("Error counting events: %v", err)
		} else {
			resp.Counts = counts
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleSetEnabled handles PUT requests to /api/enabled.
func (s *Server) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, `body must be {"enabled": true|false}`)
		return
	}

	s.config.Controller.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.config.Controller.IsEnabled()})
}

// handleEvents handles GET requests to /api/events?limit=N.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := s.config.Events.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// handleEvent handles GET requests to /api/events/{id}.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.config.Events.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("Status server listening on %s", ln.Addr())
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	// Requests inherit ctx so open streams end with the server.
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
