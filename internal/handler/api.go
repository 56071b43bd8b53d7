package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lanmap/internal/codec"
	"lanmap/internal/domain"
	"lanmap/internal/service"
)

// topologyResponse is the dashboard-facing graph shape.
type topologyResponse struct {
	Nodes    []domain.Node    `json:"nodes"`
	Edges    []domain.Link    `json:"edges"`
	Metadata topologyMetadata `json:"metadata"`
}

type topologyMetadata struct {
	SourceTier  domain.Tier `json:"source_tier"`
	OriginTier  domain.Tier `json:"origin_tier,omitempty"`
	Cached      bool        `json:"cached,omitempty"`
	DeviceCount int         `json:"device_count"`
	LinkCount   int         `json:"link_count"`
	GeneratedAt time.Time   `json:"generated_at"`
	PassID      string      `json:"pass_id"`
}

func graphMetadata(g *domain.Graph) topologyMetadata {
	return topologyMetadata{
		SourceTier:  g.Tier,
		OriginTier:  g.OriginTier,
		Cached:      g.Cached,
		DeviceCount: g.DeviceCount(),
		LinkCount:   g.LinkCount(),
		GeneratedAt: g.GeneratedAt,
		PassID:      g.PassID,
	}
}

// GetTopology returns the current topology graph. Unavailability is an
// explicit 503 carrying the tier marker, never an empty success.
func (h *Handler) GetTopology(w http.ResponseWriter, r *http.Request) {
	graph, err := h.ctrl.Current()
	if err != nil {
		h.writeUnavailable(w, err)
		return
	}

	h.writeJSON(w, topologyResponse{
		Nodes:    graph.Nodes,
		Edges:    graph.Links,
		Metadata: graphMetadata(graph),
	}, http.StatusOK)
}

// ListDevices returns the reconciled devices of the current graph.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	graph, err := h.ctrl.Current()
	if err != nil {
		h.writeUnavailable(w, err)
		return
	}

	devices := make([]domain.Device, 0, len(graph.Nodes))
	for i := range graph.Nodes {
		if graph.Nodes[i].Device != nil {
			devices = append(devices, *graph.Nodes[i].Device)
		}
	}
	h.writeJSON(w, map[string]any{
		"devices":  devices,
		"metadata": graphMetadata(graph),
	}, http.StatusOK)
}

// GetDevice returns one reconciled device by MAC, in any accepted textual
// form.
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	mac, err := domain.NormalizeMAC(chi.URLParam(r, "mac"))
	if err != nil {
		h.writeError(w, ErrorResponse{Error: "invalid mac", Details: err.Error()}, http.StatusBadRequest)
		return
	}

	graph, err := h.ctrl.Current()
	if err != nil {
		h.writeUnavailable(w, err)
		return
	}

	for i := range graph.Nodes {
		d := graph.Nodes[i].Device
		if d != nil && d.MAC == mac {
			h.writeJSON(w, d, http.StatusOK)
			return
		}
	}
	h.writeError(w, ErrorResponse{Error: "device not found", Details: mac.String()}, http.StatusNotFound)
}

// Refresh triggers a reconciliation pass out of schedule.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	graph, err := h.ctrl.RunPass(r.Context())
	if err != nil {
		h.writeUnavailable(w, err)
		return
	}
	h.writeJSON(w, graphMetadata(graph), http.StatusOK)
}

// ListPasses returns the recent pass history.
func (h *Handler) ListPasses(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		h.writeJSON(w, map[string]any{"passes": []any{}}, http.StatusOK)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	passes, err := h.repo.ListPasses(r.Context(), limit)
	if err != nil {
		h.writeError(w, ErrorResponse{Error: "failed to list passes", Details: err.Error()}, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]any{"passes": passes}, http.StatusOK)
}

// ExportTopology streams the current graph in the requested format.
func (h *Handler) ExportTopology(w http.ResponseWriter, r *http.Request) {
	graph, err := h.ctrl.Current()
	if err != nil {
		h.writeUnavailable(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	exp := codec.ForFormat(format)
	if exp == nil {
		h.writeError(w, ErrorResponse{Error: "unsupported format", Details: format}, http.StatusBadRequest)
		return
	}

	switch exp.Format() {
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	if err := exp.Export(graph, w); err != nil {
		h.log.WithError(err).Warn("export failed")
	}
}

// Healthz reports liveness and the current tier.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if graph, err := h.ctrl.Current(); err == nil {
		status["source_tier"] = graph.Tier
	} else {
		status["source_tier"] = domain.TierUnavailable
	}
	h.writeJSON(w, status, http.StatusOK)
}

func (h *Handler) writeUnavailable(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrNoSources) {
		status = http.StatusServiceUnavailable
	}
	h.writeError(w, ErrorResponse{
		Error:      "no topology available",
		Details:    err.Error(),
		SourceTier: string(domain.TierUnavailable),
	}, status)
}
