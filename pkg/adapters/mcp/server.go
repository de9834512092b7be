package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/schema"
	"github.com/aretw0/turing/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// machinesURI is the resource listing every machine definition.
const machinesURI = "turing://machines"

// SessionResult is the JSON payload returned by session tools.
type SessionResult struct {
	ID         string              `json:"id"`
	Machine    string              `json:"machine"`
	Tape       string              `json:"tape"`
	Head       int                 `json:"head"`
	State      domain.ControlState `json:"state"`
	StepCount  int                 `json:"step_count"`
	Outcome    domain.Outcome      `json:"outcome,omitempty"`
	Terminal   bool                `json:"terminal"`
	HistoryLen int                 `json:"history_len"`
}

// Server exposes a session.Manager as an MCP server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("turing-mcp", strings.TrimSpace(turing.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_machines",
		mcp.WithDescription("List the machines sessions can be started on."),
	), s.handleListMachines)

	s.mcpServer.AddTool(mcp.NewTool("describe_machine",
		mcp.WithDescription("Return a machine definition as YAML: start and halt states plus the transition table."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Machine name")),
	), s.handleDescribeMachine)

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start (or reset) a session. Characters other than 0 and 1 in the input are dropped."),
		mcp.WithString("machine", mcp.Required(), mcp.Description("Machine name")),
		mcp.WithString("input", mcp.Description("Initial tape, e.g. 1011")),
		mcp.WithString("session_id", mcp.Description("Session ID (generated when omitted)")),
	), s.handleStartSession)

	s.mcpServer.AddTool(mcp.NewTool("step",
		mcp.WithDescription("Apply one transition to a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleStep)

	s.mcpServer.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Step a session until it halts, rejects or the step limit is reached."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of steps (server maximum when omitted)")),
	), s.handleRun)

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the current configuration of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleGetSession)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(machinesURI, "Machine Definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.sessions.Machines(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list machines: %w", err)
		}
		files := make([]schema.File, 0, len(names))
		for _, name := range names {
			def, err := s.sessions.Definition(ctx, name)
			if err != nil {
				return nil, err
			}
			files = append(files, schema.FromDefinition(def))
		}
		data, err := json.Marshal(files)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      machinesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleListMachines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.sessions.Machines(ctx)
	if err != nil {
		return toolError("list machines", err), nil
	}
	return jsonResult(names)
}

func (s *Server) handleDescribeMachine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	def, err := s.sessions.Definition(ctx, name)
	if err != nil {
		return toolError("describe machine", err), nil
	}
	data, err := schema.Marshal(def)
	if err != nil {
		return toolError("describe machine", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	machine, err := request.RequireString("machine")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.sessions.Start(ctx,
		request.GetString("session_id", ""),
		machine,
		request.GetString("input", ""),
	)
	if err != nil {
		return toolError("start session", err), nil
	}
	return s.sessionResult(ctx, sess)
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.sessions.Step(ctx, id)
	if err != nil {
		return toolError("step", err), nil
	}
	return s.sessionResult(ctx, sess)
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}
	sess, err := s.sessions.Run(ctx, id, limit)
	if err != nil {
		return toolError("run", err), nil
	}
	return s.sessionResult(ctx, sess)
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return toolError("get session", err), nil
	}
	return s.sessionResult(ctx, sess)
}

func (s *Server) sessionResult(ctx context.Context, sess *domain.Session) (*mcp.CallToolResult, error) {
	def, err := s.sessions.Definition(ctx, sess.Machine)
	if err != nil {
		return toolError("resolve machine", err), nil
	}
	return jsonResult(SessionResult{
		ID:         sess.ID,
		Machine:    sess.Machine,
		Tape:       sess.State.Tape.String(),
		Head:       sess.State.Head,
		State:      sess.State.State,
		StepCount:  sess.State.StepCount,
		Outcome:    sess.Outcome,
		Terminal:   sess.Terminal(def.Halt()),
		HistoryLen: len(sess.History),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError reports domain failures as tool results so the model can react.
func toolError(op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrMachineNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("%s: not found: %v", op, err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
	}
}
