// Package httpapi exposes widget trees over HTTP: tree lifecycle, render
// and event dispatch endpoints, plus an SSE stream of page updates.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines the interface for the widget tree core.
type Engine interface {
	Render(ctx context.Context, w *domain.Widget, opts domain.RenderOptions) (*domain.PageUpdate, error)
	Invoke(ctx context.Context, w *domain.Widget, state string) (*domain.PageUpdate, error)
	DispatchEvent(ctx context.Context, root *domain.Widget, addr *domain.EventAddress) (*domain.PageUpdate, error)
}

// Server routes HTTP requests onto the engine through the session manager.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Seeds    map[string]session.SeedFunc
	Streams  *StreamManager
	Version  string

	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// NewHandler creates the HTTP handler. seeds maps tree kind names (the
// "kind" field of POST /trees) to functions that build the initial tree.
func NewHandler(engine Engine, sessions *session.Manager, seeds map[string]session.SeedFunc, opts ...Option) http.Handler {
	server := &Server{
		Engine:   engine,
		Sessions: sessions,
		Seeds:    seeds,
		Streams:  NewStreamManager(),
		Version:  "dev",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/trees", func(r chi.Router) {
		r.Post("/", server.CreateTree)
		r.Get("/", server.ListTrees)
		r.Route("/{treeID}", func(r chi.Router) {
			r.Get("/", server.GetTree)
			r.Delete("/", server.DeleteTree)
			r.Post("/render", server.RenderWidget)
			r.Post("/events", server.DispatchEvent)
			r.Get("/stream", server.StreamUpdates)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateTreeRequest seeds a new tree from a registered seed.
type CreateTreeRequest struct {
	Kind   string `json:"kind"`
	TreeID string `json:"tree_id,omitempty"`
}

// CreateTreeResponse reports the tree id and the initial render.
type CreateTreeResponse struct {
	TreeID string             `json:"tree_id"`
	Update *domain.PageUpdate `json:"update"`
}

// CreateTree handles POST /trees.
func (s *Server) CreateTree(w http.ResponseWriter, r *http.Request) {
	var body CreateTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateTree: Invalid request body", "error", err)
		return
	}

	seed, ok := s.Seeds[body.Kind]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tree kind: %s", body.Kind), http.StatusNotFound)
		return
	}

	treeID := body.TreeID
	if treeID == "" {
		treeID = uuid.NewString()
	}

	var update *domain.PageUpdate
	err := s.Sessions.UpdateOrStart(r.Context(), treeID, seed, func(ctx context.Context, root *domain.Widget) error {
		var err error
		update, err = s.Engine.Render(ctx, root, domain.RenderOptions{})
		return err
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Create error: %v", err), http.StatusInternalServerError)
		s.logger.Error("CreateTree failed", "tree_id", treeID, "error", err)
		return
	}

	writeJSON(w, s.logger, CreateTreeResponse{TreeID: treeID, Update: update})
}

// RenderRequest selects a widget and render options for a one-off render.
type RenderRequest struct {
	WidgetID string         `json:"widget_id,omitempty"`
	View     string         `json:"view,omitempty"`
	Layout   string         `json:"layout,omitempty"`
	Locals   map[string]any `json:"locals,omitempty"`
	Update   bool           `json:"update,omitempty"`
}

// RenderWidget handles POST /trees/{treeID}/render.
func (s *Server) RenderWidget(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")

	var body RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("RenderWidget: Invalid request body", "error", err)
		return
	}

	var update *domain.PageUpdate
	err := s.Sessions.Update(r.Context(), treeID, func(ctx context.Context, root *domain.Widget) error {
		target := root
		if body.WidgetID != "" {
			target = root.Find(body.WidgetID)
			if target == nil {
				return fmt.Errorf("widget %s: %w", body.WidgetID, domain.ErrWidgetNotFound)
			}
		}
		var err error
		update, err = s.Engine.Render(ctx, target, domain.RenderOptions{
			View:         body.View,
			Layout:       body.Layout,
			Locals:       body.Locals,
			ReplaceInner: body.Update,
		})
		return err
	})
	if err != nil {
		s.writeEngineError(w, treeID, "Render", err)
		return
	}

	s.Streams.Broadcast(treeID, update)
	writeJSON(w, s.logger, update)
}

// EventRequest addresses an event at a widget in the tree.
type EventRequest struct {
	Source string         `json:"source"`
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// DispatchEvent handles POST /trees/{treeID}/events.
func (s *Server) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")

	var body EventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("DispatchEvent: Invalid request body", "error", err)
		return
	}
	if body.Type == "" {
		http.Error(w, "Event type is required", http.StatusBadRequest)
		return
	}

	addr := &domain.EventAddress{
		Source: body.Source,
		Type:   body.Type,
		Params: body.Params,
	}

	var update *domain.PageUpdate
	err := s.Sessions.Update(r.Context(), treeID, func(ctx context.Context, root *domain.Widget) error {
		var err error
		update, err = s.Engine.DispatchEvent(ctx, root, addr)
		return err
	})
	if err != nil {
		s.writeEngineError(w, treeID, "Event", err)
		return
	}

	s.Streams.Broadcast(treeID, update)
	writeJSON(w, s.logger, update)
}

// GetTree handles GET /trees/{treeID}: the frozen snapshot.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")

	root, err := s.Sessions.Store().Load(r.Context(), treeID)
	if err != nil {
		if errors.Is(err, domain.ErrTreeNotFound) {
			http.Error(w, "Tree not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("GetTree failed", "tree_id", treeID, "error", err)
		return
	}

	writeJSON(w, s.logger, root)
}

// DeleteTree handles DELETE /trees/{treeID}.
func (s *Server) DeleteTree(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")

	if err := s.Sessions.Delete(r.Context(), treeID); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.logger.Error("DeleteTree failed", "tree_id", treeID, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTrees handles GET /trees.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("ListTrees failed", "error", err)
		return
	}
	writeJSON(w, s.logger, map[string][]string{"trees": ids})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{
		"app":     "arbor-http",
		"version": s.Version,
	})
}

func (s *Server) writeEngineError(w http.ResponseWriter, treeID, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrTreeNotFound):
		http.Error(w, "Tree not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrWidgetNotFound):
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusNotFound)
	case errors.Is(err, domain.ErrUnhandledEvent):
		http.Error(w, fmt.Sprintf("%s unhandled: %v", op, err), http.StatusNotFound)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "tree_id", treeID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
