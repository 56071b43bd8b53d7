package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"lanmap/internal/repository"
	"lanmap/internal/service"
)

// Handler wires the HTTP API to the degradation controller.
type Handler struct {
	ctrl    *service.Controller
	repo    repository.Store
	sse     http.Handler
	metrics http.Handler
	log     *logrus.Logger
}

// New creates the API handler. repo and metrics may be nil.
func New(ctrl *service.Controller, repo repository.Store, sse, metrics http.Handler, log *logrus.Logger) *Handler {
	return &Handler{
		ctrl:    ctrl,
		repo:    repo,
		sse:     sse,
		metrics: metrics,
		log:     log,
	}
}

// Routes builds the router with the standard middleware stack.
func (h *Handler) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/topology", h.GetTopology)
		r.Get("/devices", h.ListDevices)
		r.Get("/devices/{mac}", h.GetDevice)
		r.Post("/refresh", h.Refresh)
		r.Get("/passes", h.ListPasses)
		r.Get("/export/topology", h.ExportTopology)
	})

	if h.sse != nil {
		r.Handle("/events", h.sse)
	}
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}
	r.Get("/healthz", h.Healthz)

	return r
}

// requestLogger logs one line per request with the structured fields the
// rest of the engine uses.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"request":  middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

// ErrorResponse is the JSON error body. SourceTier is set on topology
// errors so presentation layers can show degraded state explicitly.
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	SourceTier string `json:"source_tier,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, resp ErrorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.WithError(err).Warn("failed to encode error response")
	}
}
