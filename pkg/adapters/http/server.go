package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/internal/runtime"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

// Engine is the application surface served over HTTP.
type Engine interface {
	ports.Engine
	Navigate(ctx context.Context, fragment string) (*ports.Snapshot, error)
	Page(snap *ports.Snapshot) (string, error)
	Namespace() string
}

// Server serves the HTML pages, the JSON API and the diff stream.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics mounts /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) {
		o.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(o.logger),
		logger:  o.logger,
	}

	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawOpenAPI)
	})
	if o.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/todos", server.ListTodos)
		r.Post("/dispatch", server.Dispatch)
		r.Get("/events", server.SubscribeEvents)
	})

	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/"+string(domain.FilterAll), http.StatusSeeOther)
	})
	r.Get("/{filter:(all|active|completed)}", server.GetPage)

	r.Post("/todos", server.CreateTodo)
	r.Post("/todos/{id}/toggle", server.ToggleTodo)
	r.Post("/todos/{id}/destroy", server.DestroyTodo)
	r.Post("/todos/{id}/edit", server.EditTodo)
	r.Post("/toggle-all", server.ToggleAll)
	r.Post("/clear-completed", server.ClearCompleted)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- HTML --

// GetPage handles GET /{filter}. An edit query parameter opens that row for editing.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Navigate(r.Context(), "/"+chi.URLParam(r, "filter"))
	if err != nil {
		s.fail(w, "Navigate", err)
		return
	}

	if id := r.URL.Query().Get("edit"); id != "" {
		snap, err = s.dispatch(r.Context(), domain.Event{Type: domain.EventEditStart, ID: id})
		if err != nil {
			s.fail(w, "Edit start", err)
			return
		}
	}

	page, err := s.Engine.Page(snap)
	if err != nil {
		s.fail(w, "Page render", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, page)
}

// CreateTodo handles POST /todos, the equivalent of pressing Enter in the new-todo field.
func (s *Server) CreateTodo(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	s.submit(w, r, domain.Event{Type: domain.EventCreate, Title: r.PostForm.Get("title"), Key: domain.KeyEnter})
}

// ToggleTodo handles the POST /todos/{id}/toggle request.
func (s *Server) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, domain.Event{Type: domain.EventToggle, ID: chi.URLParam(r, "id")})
}

// DestroyTodo handles the POST /todos/{id}/destroy request.
func (s *Server) DestroyTodo(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, domain.Event{Type: domain.EventDestroy, ID: chi.URLParam(r, "id")})
}

// EditTodo handles POST /todos/{id}/edit. The action field selects how editing ends:
// enter commits, escape aborts, blur commits unless already aborted.
func (s *Server) EditTodo(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	event := domain.Event{ID: chi.URLParam(r, "id"), Title: r.PostForm.Get("title")}
	switch action := r.PostForm.Get("action"); action {
	case "", "enter":
		event.Type, event.Key = domain.EventEditKey, domain.KeyEnter
	case "escape":
		event.Type, event.Key = domain.EventEditKey, domain.KeyEscape
	case "blur":
		event.Type = domain.EventEditBlur
	default:
		http.Error(w, fmt.Sprintf("unknown edit action %q", action), http.StatusBadRequest)
		return
	}
	s.submit(w, r, event)
}

// ToggleAll handles the POST /toggle-all request.
func (s *Server) ToggleAll(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	checked, err := strconv.ParseBool(r.PostForm.Get("checked"))
	if err != nil {
		http.Error(w, "checked must be a boolean", http.StatusBadRequest)
		return
	}
	s.submit(w, r, domain.Event{Type: domain.EventToggleAll, Checked: checked})
}

// ClearCompleted handles the POST /clear-completed request.
func (s *Server) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, domain.Event{Type: domain.EventClearCompleted})
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		s.logger.Warn("Invalid form body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

// submit dispatches a form event and redirects back to the active filter.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, event domain.Event) {
	snap, err := s.dispatch(r.Context(), event)
	if err != nil {
		s.fail(w, string(event.Type), err)
		return
	}
	http.Redirect(w, r, "/"+string(snap.State.Filter.Normalize()), http.StatusSeeOther)
}

// -- JSON API --

// TodoList is the response of GET /api/todos.
type TodoList struct {
	Filter    domain.Filter `json:"filter"`
	Todos     domain.Todos  `json:"todos"`
	Total     int           `json:"total"`
	Active    int           `json:"active"`
	Completed int           `json:"completed"`
}

// ListTodos handles GET /api/todos. The filter parameter defaults to the current view filter.
func (s *Server) ListTodos(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Current(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}

	filter := snap.State.Filter.Normalize()
	if raw := r.URL.Query().Get("filter"); raw != "" {
		parsed, ok := domain.ParseFilter(raw)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown filter %q", raw), http.StatusBadRequest)
			return
		}
		filter = parsed
	}

	todos := snap.State.Todos.Filtered(filter)
	if todos == nil {
		todos = domain.Todos{}
	}
	writeJSON(w, s.logger, TodoList{
		Filter:    filter,
		Todos:     todos,
		Total:     len(snap.State.Todos),
		Active:    len(snap.State.Todos.Active()),
		Completed: len(snap.State.Todos.Completed()),
	})
}

// Dispatch handles POST /api/dispatch with a JSON event.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Dispatch: Invalid request body", "error", err)
		return
	}
	if err := validateBody("Event", body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid event: %v", err), http.StatusBadRequest)
		s.logger.Warn("Dispatch: Event rejected", "error", err)
		return
	}

	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := s.dispatch(r.Context(), event)
	if err != nil {
		s.fail(w, "Dispatch", err)
		return
	}
	writeJSON(w, s.logger, snap)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI document", "error", err)
	}

	writeJSON(w, s.logger, map[string]string{
		"app":         "todomvc-http",
		"version":     strings.TrimSpace(todomvc.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles GET /api/events (SSE). Each message is a list diff.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	namespace := s.Engine.Namespace()
	s.logger.Info("SSE: Subscribing to list updates", "namespace", namespace)

	ch, cancel := s.Streams.Subscribe(namespace)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "namespace", namespace)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// watched reports whether the diff in msg touches any of the fields.
func watched(msg string, fields []string) bool {
	var diff domain.TodosDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "added":
			if len(diff.Added) > 0 {
				return true
			}
		case "changed":
			if len(diff.Changed) > 0 {
				return true
			}
		case "removed":
			if len(diff.Removed) > 0 {
				return true
			}
		case "filter":
			if diff.Filter != nil {
				return true
			}
		}
	}
	return false
}

// -- Helpers --

// dispatch applies an event and broadcasts its diff to subscribers.
func (s *Server) dispatch(ctx context.Context, event domain.Event) (*ports.Snapshot, error) {
	snap, err := s.Engine.Dispatch(ctx, event)
	if err != nil {
		return nil, err
	}
	if snap.Diff != nil {
		if bytes, err := json.Marshal(snap.Diff); err == nil {
			s.Streams.Broadcast(snap.Namespace, string(bytes))
		}
	}
	return snap, nil
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if isRejected(err) {
		http.Error(w, fmt.Sprintf("%s rejected: %v", op, err), http.StatusBadRequest)
		s.logger.Warn(op+": Input rejected", "error", err)
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.logger.Error(op+" failed", "error", err)
}

func isRejected(err error) bool {
	return errors.Is(err, runtime.ErrTitleTooLarge) ||
		errors.Is(err, runtime.ErrInvalidUTF8) ||
		errors.Is(err, domain.ErrUnknownEvent)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
