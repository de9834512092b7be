package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

// maxBodySize caps request bodies; inputs are short binary strings.
const maxBodySize = 1 << 20

// Server exposes a session.Manager over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	spec    *openapi3.T
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager that is also registered as the
// manager's change listener.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h (usually promhttp.Handler) on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the router. It fails when the embedded API document is invalid.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}

	s := &Server{Sessions: sessions, spec: spec, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/machines", s.ListMachines)
	r.Get("/machines/*", s.GetMachine)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/step", s.StepSession)
			r.Post("/run", s.RunSession)
			r.Post("/undo", s.UndoSession)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "turing-http",
		"version":     strings.TrimSpace(turing.Version),
		"api_version": apiVersion,
	})
}

// ListMachines handles GET /machines.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.Sessions.Machines(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]MachineView, 0, len(names))
	for _, name := range names {
		def, err := s.Sessions.Definition(r.Context(), name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		views = append(views, machineView(def, false))
	}
	s.writeJSON(w, http.StatusOK, views)
}

// GetMachine handles GET /machines/{name}.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	def, err := s.Sessions.Definition(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, machineView(def, true))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if !s.decodeBody(w, r, "/sessions", &body, true) {
		return
	}

	sess, err := s.Sessions.Start(r.Context(), body.ID, body.Machine, body.Input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StepSession handles POST /sessions/{id}/step.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Step(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sess)
}

// RunSession handles POST /sessions/{id}/run.
func (s *Server) RunSession(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if !s.decodeBody(w, r, "/sessions/{id}/run", &body, false) {
		return
	}

	sess, err := s.Sessions.Run(r.Context(), chi.URLParam(r, "id"), body.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sess)
}

// UndoSession handles POST /sessions/{id}/undo.
func (s *Server) UndoSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, sess)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			watch = append(watch, strings.TrimSpace(field))
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 {
				var diff domain.StateDiff
				if err := json.Unmarshal([]byte(msg), &diff); err == nil && !watchFilter(watch, &diff) {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// decodeBody reads, validates against the API document and decodes the
// request body. It writes the error response itself and reports success.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, path string, dst any, required bool) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeStatus(w, http.StatusBadRequest, "failed to read body")
		return false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		if required {
			s.writeStatus(w, http.StatusBadRequest, "request body is required")
			return false
		}
		return true
	}
	if err := validateBody(s.spec, path, r.Method, data); err != nil {
		s.logger.Warn("Invalid request body", "path", path, "err", err)
		s.writeStatus(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.writeStatus(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, sess *domain.Session) {
	def, err := s.Sessions.Definition(r.Context(), sess.Machine)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, status, sessionView(sess, def.Halt()))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrMachineNotFound):
		s.writeStatus(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNoHistory):
		s.writeStatus(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeStatus(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "err", err)
		s.writeStatus(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeStatus(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
