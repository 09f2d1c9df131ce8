// Package mcp exposes widget trees as an MCP server: render and event
// tools plus a tree snapshot resource, over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// UpdateResponse is the unified structured output of the render and event
// tools across adapters.
type UpdateResponse struct {
	TreeID string             `json:"tree_id" jsonschema_description:"The id of the tree the update applies to"`
	Update *domain.PageUpdate `json:"update" jsonschema_description:"The typed page update produced by the engine"`
}

// Engine defines the interface required by the MCP server to drive trees.
type Engine interface {
	Render(ctx context.Context, w *domain.Widget, opts domain.RenderOptions) (*domain.PageUpdate, error)
	DispatchEvent(ctx context.Context, root *domain.Widget, addr *domain.EventAddress) (*domain.PageUpdate, error)
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	seeds     map[string]session.SeedFunc
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. seeds maps tree kind names
// to initial tree builders, as in the HTTP adapter.
func NewServer(engine Engine, sessions *session.Manager, seeds map[string]session.SeedFunc, version string) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		seeds:     seeds,
		mcpServer: server.NewMCPServer("arbor-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: render_widget
	renderTool := mcp.NewTool("render_widget",
		mcp.WithDescription("Render a widget of a tree. Creates the tree from its kind when it does not exist yet."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("The id of the tree to render")),
		mcp.WithString("kind", mcp.Description("Tree kind for seeding a new tree (optional for existing trees)")),
		mcp.WithString("widget_id", mcp.Description("The id of the widget to render (defaults to the root)")),
		mcp.WithString("view", mcp.Description("Override the view name (optional)")),
		mcp.WithOutputSchema[UpdateResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRenderWidget))

	// TOOL: trigger_event
	eventTool := mcp.NewTool("trigger_event",
		mcp.WithDescription("Dispatch an event to its originating widget and render the resulting update."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("The id of the tree")),
		mcp.WithString("source", mcp.Required(), mcp.Description("The id of the widget the event originates from")),
		mcp.WithString("type", mcp.Required(), mcp.Description("The event type")),
		mcp.WithString("params", mcp.Description("JSON object of event parameters (optional)")),
		mcp.WithOutputSchema[UpdateResponse](),
	)
	s.mcpServer.AddTool(eventTool, mcp.NewStructuredToolHandler(s.handleTriggerEvent))

	// TOOL: inspect_tree
	s.mcpServer.AddTool(mcp.NewTool("inspect_tree",
		mcp.WithDescription("Get the frozen snapshot of a tree for introspection."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("The id of the tree")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		treeID, err := request.RequireString("tree_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		root, err := s.sessions.Store().Load(ctx, treeID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(root)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: list_trees
	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the ids of all stored trees."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleRenderWidget(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (UpdateResponse, error) {
	treeID, _ := args["tree_id"].(string)
	if treeID == "" {
		return UpdateResponse{}, fmt.Errorf("tree_id is required")
	}
	widgetID, _ := args["widget_id"].(string)
	view, _ := args["view"].(string)

	render := func(ctx context.Context, root *domain.Widget) (*domain.PageUpdate, error) {
		target := root
		if widgetID != "" {
			target = root.Find(widgetID)
			if target == nil {
				return nil, fmt.Errorf("widget %s: %w", widgetID, domain.ErrWidgetNotFound)
			}
		}
		return s.engine.Render(ctx, target, domain.RenderOptions{View: view})
	}

	var update *domain.PageUpdate
	var err error
	if kindName, _ := args["kind"].(string); kindName != "" {
		seed, ok := s.seeds[kindName]
		if !ok {
			return UpdateResponse{}, fmt.Errorf("unknown tree kind: %s", kindName)
		}
		err = s.sessions.UpdateOrStart(ctx, treeID, seed, func(ctx context.Context, root *domain.Widget) error {
			update, err = render(ctx, root)
			return err
		})
	} else {
		err = s.sessions.Update(ctx, treeID, func(ctx context.Context, root *domain.Widget) error {
			update, err = render(ctx, root)
			return err
		})
	}
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("render failed: %w", err)
	}

	return UpdateResponse{TreeID: treeID, Update: update}, nil
}

func (s *Server) handleTriggerEvent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (UpdateResponse, error) {
	treeID, _ := args["tree_id"].(string)
	source, _ := args["source"].(string)
	eventType, _ := args["type"].(string)
	if treeID == "" || eventType == "" {
		return UpdateResponse{}, fmt.Errorf("tree_id and type are required")
	}

	addr := &domain.EventAddress{Source: source, Type: eventType}
	if paramsStr, ok := args["params"].(string); ok && paramsStr != "" {
		if err := json.Unmarshal([]byte(paramsStr), &addr.Params); err != nil {
			return UpdateResponse{}, fmt.Errorf("invalid params JSON: %w", err)
		}
	}

	var update *domain.PageUpdate
	err := s.sessions.Update(ctx, treeID, func(ctx context.Context, root *domain.Widget) error {
		var err error
		update, err = s.engine.DispatchEvent(ctx, root, addr)
		return err
	})
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("event failed: %w", err)
	}

	return UpdateResponse{TreeID: treeID, Update: update}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://trees
	s.mcpServer.AddResource(mcp.NewResource("arbor://trees", "Stored Widget Trees",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list trees: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://trees",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
