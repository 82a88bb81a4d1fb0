package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/aretw0/todomvc/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ResourceURI is the markdown view of the list.
const ResourceURI = "todomvc://todos"

// ListResponse is the structured result of every tool.
type ListResponse struct {
	Filter    domain.Filter `json:"filter" jsonschema_description:"The active view filter"`
	Todos     domain.Todos  `json:"todos" jsonschema_description:"Tasks visible under the filter"`
	Active    int           `json:"active" jsonschema_description:"Number of tasks not completed"`
	Completed int           `json:"completed" jsonschema_description:"Number of completed tasks"`
	Changed   bool          `json:"changed" jsonschema_description:"Whether the call modified the list"`
}

// Engine is the application surface required by the MCP server.
type Engine interface {
	ports.Engine
	Navigate(ctx context.Context, fragment string) (*ports.Snapshot, error)
	Update(ctx context.Context, id, title string) (*ports.Snapshot, error)
}

// Server wraps the list engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

type listArgs struct {
	Filter string `json:"filter"`
}

type titleArgs struct {
	Title string `json:"title"`
}

type idArgs struct {
	ID string `json:"id"`
}

type updateArgs struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type toggleAllArgs struct {
	Completed *bool `json:"completed"`
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: server.NewMCPServer("todomvc-mcp", strings.TrimSpace(todomvc.Version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
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
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("List the tasks. Passing a filter also switches the view to it."),
		mcp.WithString("filter", mcp.Description("all, active or completed"), mcp.Enum("all", "active", "completed")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("add_todo",
		mcp.WithDescription("Add a task at the end of the list. Blank titles are ignored."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdd))

	s.mcpServer.AddTool(mcp.NewTool("toggle_todo",
		mcp.WithDescription("Flip the completion of a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggle))

	s.mcpServer.AddTool(mcp.NewTool("update_todo",
		mcp.WithDescription("Rename a task. A blank title deletes it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdate))

	s.mcpServer.AddTool(mcp.NewTool("remove_todo",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task ID")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemove))

	s.mcpServer.AddTool(mcp.NewTool("toggle_all",
		mcp.WithDescription("Mark every task completed, or every task active when completed is false."),
		mcp.WithBoolean("completed", mcp.Description("Target completion (default true)")),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggleAll))

	s.mcpServer.AddTool(mcp.NewTool("clear_completed",
		mcp.WithDescription("Delete every completed task."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleClearCompleted))
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest, args listArgs) (ListResponse, error) {
	if args.Filter == "" {
		snap, err := s.engine.Current(ctx)
		if err != nil {
			return ListResponse{}, fmt.Errorf("list failed: %w", err)
		}
		return respond(snap), nil
	}
	if _, ok := domain.ParseFilter(args.Filter); !ok {
		return ListResponse{}, fmt.Errorf("unknown filter %q", args.Filter)
	}
	snap, err := s.engine.Navigate(ctx, "/"+args.Filter)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	return respond(snap), nil
}

func (s *Server) handleAdd(ctx context.Context, _ mcp.CallToolRequest, args titleArgs) (ListResponse, error) {
	return s.dispatch(ctx, domain.Event{Type: domain.EventCreate, Title: args.Title, Key: domain.KeyEnter})
}

func (s *Server) handleToggle(ctx context.Context, _ mcp.CallToolRequest, args idArgs) (ListResponse, error) {
	return s.dispatch(ctx, domain.Event{Type: domain.EventToggle, ID: args.ID})
}

func (s *Server) handleUpdate(ctx context.Context, _ mcp.CallToolRequest, args updateArgs) (ListResponse, error) {
	snap, err := s.engine.Update(ctx, args.ID, args.Title)
	if err != nil {
		s.logger.Warn("MCP update failed", "id", args.ID, "error", err)
		return ListResponse{}, fmt.Errorf("update failed: %w", err)
	}
	if snap.Outcome.Miss {
		return ListResponse{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, args.ID)
	}
	if edit := snap.Outcome.Edit; edit != domain.EditCommitted && edit != domain.EditDeleted {
		return ListResponse{}, fmt.Errorf("update of %s was not committed (%q)", args.ID, edit)
	}
	return respond(snap), nil
}

func (s *Server) handleRemove(ctx context.Context, _ mcp.CallToolRequest, args idArgs) (ListResponse, error) {
	return s.dispatch(ctx, domain.Event{Type: domain.EventDestroy, ID: args.ID})
}

func (s *Server) handleToggleAll(ctx context.Context, _ mcp.CallToolRequest, args toggleAllArgs) (ListResponse, error) {
	checked := true
	if args.Completed != nil {
		checked = *args.Completed
	}
	return s.dispatch(ctx, domain.Event{Type: domain.EventToggleAll, Checked: checked})
}

func (s *Server) handleClearCompleted(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (ListResponse, error) {
	return s.dispatch(ctx, domain.Event{Type: domain.EventClearCompleted})
}

// dispatch applies an event. Events aimed at unknown tasks are reported as errors
// so the caller learns the ID was wrong.
func (s *Server) dispatch(ctx context.Context, event domain.Event) (ListResponse, error) {
	snap, err := s.engine.Dispatch(ctx, event)
	if err != nil {
		s.logger.Warn("MCP dispatch failed", "type", event.Type, "error", err)
		return ListResponse{}, fmt.Errorf("%s failed: %w", event.Type, err)
	}
	if snap.Outcome.Miss {
		return ListResponse{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, event.ID)
	}
	return respond(snap), nil
}

func respond(snap *ports.Snapshot) ListResponse {
	todos := snap.State.Todos.Filtered(snap.State.Filter)
	if todos == nil {
		todos = domain.Todos{}
	}
	return ListResponse{
		Filter:    snap.State.Filter.Normalize(),
		Todos:     todos,
		Active:    snap.View.Active,
		Completed: snap.View.Completed,
		Changed:   snap.Outcome.Mutated,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ResourceURI, "Todo list",
		mcp.WithResourceDescription("The whole list as a markdown checklist"),
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snap, err := s.engine.Current(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read list: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ResourceURI,
				MIMEType: "text/markdown",
				Text:     render.Markdown(snap.State),
			},
		}, nil
	})
}
