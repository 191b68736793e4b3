// Package http exposes a World over a small JSON API routed with chi.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/aretw0/automata/pkg/world"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxDocumentSize bounds PUT /machine bodies.
const maxDocumentSize = 1 << 20

// Server serves one world.
type Server struct {
	World   *world.World
	Streams *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts GET /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for w. It subscribes to the world's
// changed events for the lifetime of the process.
func NewHandler(w *world.World, opts ...Option) http.Handler {
	server := &Server{
		World:   w,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	w.AddListener(domain.EventChanged, func(domain.Event) {
		server.Streams.Notify()
	})

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/events", server.SubscribeEvents)

	r.Route("/machine", func(r chi.Router) {
		r.Get("/", server.GetMachine)
		r.Put("/", server.PutMachine)
		r.Get("/mermaid", server.GetMermaid)
	})

	r.Route("/world", func(r chi.Router) {
		r.Get("/", server.GetWorld)
		r.Post("/step", server.Step)
		r.Post("/{action}", server.Control)
		r.Put("/sensors/{index}", server.PutSensor)
	})

	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
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
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "automata-http",
		"version": strings.TrimSpace(automata.Version),
	})
}

// GetMachine handles GET /machine: the machine as a document.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.World.Snapshot())
}

// PutMachine handles PUT /machine: replace the graph with a JSON or YAML document.
func (s *Server) PutMachine(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	format := schema.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = schema.FormatYAML
	}
	doc, err := schema.Unmarshal(data, format)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid document: %v", err), http.StatusBadRequest)
		s.logger.Warn("PutMachine: decode failed", "err", err)
		return
	}
	if _, err := s.World.Load(doc); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		s.logger.Warn("PutMachine: load failed", "err", err)
		return
	}
	s.logger.Info("machine replaced", "name", doc.Name, "states", len(doc.States))
	s.writeJSON(w, http.StatusOK, s.World.View())
}

// GetMermaid handles GET /machine/mermaid with the run overlay.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	fired := s.World.LastTick().Fired
	var out string
	s.World.Edit(func(m *domain.StateMachine) {
		out = graph.GenerateMermaid(m, graph.OverlayFor(m, fired))
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, out)
}

// GetWorld handles GET /world.
func (s *Server) GetWorld(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.World.View())
}

// Control handles POST /world/{start,pause,stop,reset}.
func (s *Server) Control(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	switch action {
	case "start":
		s.World.Start()
	case "pause":
		s.World.Pause()
	case "stop":
		s.World.Stop()
	case "reset":
		s.World.Reset()
	default:
		http.Error(w, fmt.Sprintf("Unknown action %q", action), http.StatusNotFound)
		return
	}
	s.logger.Debug("world control", "action", action)
	s.writeJSON(w, http.StatusOK, s.World.View())
}

// Step handles POST /world/step. With ?elapsed= (a duration, bare numbers
// are milliseconds) the elapsed time is fed to the scheduler, which only
// ticks a running world; without it exactly one tick runs.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("elapsed")
	if raw == "" {
		s.World.StepOnce()
		s.writeJSON(w, http.StatusOK, s.World.View())
		return
	}
	elapsed, err := parseElapsed(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid elapsed: %v", err), http.StatusBadRequest)
		return
	}
	s.World.Step(elapsed)
	s.writeJSON(w, http.StatusOK, s.World.View())
}

// sensorRequest is the PUT /world/sensors/{index} body.
type sensorRequest struct {
	Value string `json:"value"`
}

// PutSensor handles PUT /world/sensors/{index} with {"value": "0"|"1"}.
func (s *Server) PutSensor(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "Invalid sensor index", http.StatusBadRequest)
		return
	}
	var body sensorRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	b, err := domain.ParseBit(body.Value)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.World.SetSensorValue(index, b); err != nil {
		if errors.Is(err, domain.ErrIndexOutOfRange) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.World.View())
}

// SubscribeEvents handles GET /events (SSE). Each world change is sent as a
// view; changes that arrive faster than the client reads are coalesced.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(s.World.View())
			if err != nil {
				s.logger.Error("SSE: encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: changed\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	body := map[string]any{"error": err.Error()}
	if list := schema.ValidationErrors(err); len(list) > 0 {
		details := make([]string, len(list))
		for i, e := range list {
			details[i] = e.Error()
		}
		body["details"] = details
	}
	s.writeJSON(w, status, body)
}

func parseElapsed(raw string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative duration %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
