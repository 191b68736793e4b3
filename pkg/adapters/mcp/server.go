// Package mcp exposes a World to AI agents as Model Context Protocol tools.
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

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/world"
	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	machineURI = "automata://machine"
	mermaidURI = "automata://machine/mermaid"
)

// Server wraps a World and exposes it as an MCP Server.
type Server struct {
	world     *world.World
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger discards.
func NewServer(w *world.World, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		world:     w,
		logger:    logger,
		mcpServer: server.NewMCPServer("automata-mcp", strings.TrimSpace(automata.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is cancelled.
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

	serverErrors := make(chan error, 1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_machine",
		mcp.WithDescription("Get the state machine as a document: sensors, actuators, states and transitions in priority order."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.world.Snapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_world",
		mcp.WithDescription("Get the run state: current state, sensor and actuator vectors, domain status."),
		mcp.WithOutputSchema[world.View](),
	), mcp.NewStructuredToolHandler(s.handleGetWorld))

	s.mcpServer.AddTool(mcp.NewTool("set_sensor",
		mcp.WithDescription("Set one sensor value for the next tick."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Sensor index, starting at 0")),
		mcp.WithString("value", mcp.Required(), mcp.Description("'0' or '1'"), mcp.Enum("0", "1")),
		mcp.WithOutputSchema[world.View](),
	), mcp.NewStructuredToolHandler(s.handleSetSensor))

	s.mcpServer.AddTool(mcp.NewTool("step_world",
		mcp.WithDescription("Advance the world. Without elapsed_ms exactly one tick runs; with it, a running world consumes that much time in whole time steps."),
		mcp.WithNumber("elapsed_ms", mcp.Description("Elapsed milliseconds (optional)")),
		mcp.WithOutputSchema[world.View](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("control_world",
		mcp.WithDescription("Start, pause, stop or reset the world."),
		mcp.WithString("action", mcp.Required(), mcp.Enum("start", "pause", "stop", "reset")),
		mcp.WithOutputSchema[world.View](),
	), mcp.NewStructuredToolHandler(s.handleControl))
}

func (s *Server) handleGetWorld(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (world.View, error) {
	return s.world.View(), nil
}

func (s *Server) handleSetSensor(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (world.View, error) {
	index, ok := args["index"].(float64)
	if !ok || index != float64(int(index)) {
		return world.View{}, errors.New("index must be an integer")
	}
	raw, _ := args["value"].(string)
	b, err := domain.ParseBit(raw)
	if err != nil {
		return world.View{}, err
	}
	if err := s.world.SetSensorValue(int(index), b); err != nil {
		return world.View{}, err
	}
	return s.world.View(), nil
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (world.View, error) {
	ms, ok := args["elapsed_ms"].(float64)
	if !ok {
		s.world.StepOnce()
		return s.world.View(), nil
	}
	if ms < 0 {
		return world.View{}, fmt.Errorf("elapsed_ms must not be negative, got %v", ms)
	}
	s.world.Step(time.Duration(ms * float64(time.Millisecond)))
	return s.world.View(), nil
}

func (s *Server) handleControl(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (world.View, error) {
	action, _ := args["action"].(string)
	switch action {
	case "start":
		s.world.Start()
	case "pause":
		s.world.Pause()
	case "stop":
		s.world.Stop()
	case "reset":
		s.world.Reset()
	default:
		return world.View{}, fmt.Errorf("unknown action %q", action)
	}
	s.logger.Debug("MCP world control", "action", action)
	return s.world.View(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(machineURI, "State Machine Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.world.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode machine: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      machineURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "State Machine Diagram",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      mermaidURI,
				MIMEType: "text/plain",
				Text:     s.mermaid(),
			},
		}, nil
	})
}

func (s *Server) mermaid() string {
	fired := s.world.LastTick().Fired
	var out string
	s.world.Edit(func(m *domain.StateMachine) {
		out = graph.GenerateMermaid(m, graph.OverlayFor(m, fired))
	})
	return out
}
