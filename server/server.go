// Package server implements the interactive form surface: an embedded
// single-page UI plus a JSON API that triggers one optimization per
// request. Requests are independent; the server holds no per-session
// state.
package server

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/grompt/canvas"
	"github.com/c360studio/grompt/llm"
	"github.com/c360studio/grompt/optimizer"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

//go:embed assets
var assets embed.FS

// Server serves the form UI and the optimize API.
type Server struct {
	optimizer *optimizer.Optimizer
	provider  string
	logger    *slog.Logger

	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// New creates a Server backed by the given optimizer. provider is the
// configured completion provider name, used for the credential
// precondition check.
func New(opt *optimizer.Optimizer, provider string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	s := &Server{
		optimizer: opt,
		provider:  provider,
		logger:    logger,
		registry:  registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grompt_optimize_requests_total",
			Help: "Optimization requests by outcome.",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grompt_optimize_duration_seconds",
			Help:    "End-to-end optimization request duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(s.requestsTotal, s.requestDuration)

	return s
}

// RegisterHandlers registers all handlers on the given mux:
//
//	GET  /            embedded form UI
//	POST /api/optimize
//	GET  /healthz
//	GET  /metrics
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		// embed guarantees the subdirectory exists
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(sub)))
	mux.HandleFunc("/api/optimize", s.handleOptimize)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// CanvasForm carries the eight canvas fields as entered in the advanced
// tab. Steps and references arrive as newline-separated text and are
// split into ordered lists server-side.
type CanvasForm struct {
	Persona      string `json:"persona"`
	Audience     string `json:"audience"`
	Task         string `json:"task"`
	Steps        string `json:"steps"`
	Context      string `json:"context"`
	References   string `json:"references"`
	OutputFormat string `json:"output_format"`
	Tonality     string `json:"tonality"`
}

// OptimizeRequest is the request body for POST /api/optimize.
// A present canvas takes precedence over the prompt.
type OptimizeRequest struct {
	Prompt      string      `json:"prompt"`
	Canvas      *CanvasForm `json:"canvas,omitempty"`
	Model       string      `json:"model,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// OptimizeResponse is the success body for POST /api/optimize.
type OptimizeResponse struct {
	Optimized string `json:"optimized"`
}

// errorResponse is rendered inline by the UI.
type errorResponse struct {
	Error string `json:"error"`
}

// ----------------------------------------------------------------------------
// POST /api/optimize
// ----------------------------------------------------------------------------

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var req OptimizeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.requestsTotal.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Prompt) == "" && req.Canvas == nil {
		s.requestsTotal.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "enter a prompt or fill in the canvas"})
		return
	}

	// Credential precondition: surfaced before any call is attempted.
	if envName, ok := llm.CheckCredential(s.provider); !ok {
		s.requestsTotal.WithLabelValues("no_credential").Inc()
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: envName + " is not set"})
		return
	}

	var c *canvas.Canvas
	if req.Canvas != nil {
		c = &canvas.Canvas{
			Persona:      req.Canvas.Persona,
			Audience:     req.Canvas.Audience,
			Task:         req.Canvas.Task,
			Steps:        canvas.SplitLines(req.Canvas.Steps),
			Context:      req.Canvas.Context,
			References:   canvas.SplitLines(req.Canvas.References),
			OutputFormat: req.Canvas.OutputFormat,
			Tonality:     req.Canvas.Tonality,
		}
	}

	result, err := s.optimizer.Optimize(r.Context(), optimizer.Request{
		Prompt:      req.Prompt,
		Canvas:      c,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	s.requestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.requestsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Optimization failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	s.requestsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, OptimizeResponse{Optimized: result})
}

// ----------------------------------------------------------------------------
// GET /healthz
// ----------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
