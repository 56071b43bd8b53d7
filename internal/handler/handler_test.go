package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanmap/internal/adapter"
	"lanmap/internal/domain"
	"lanmap/internal/service"
)

type stubAdapter struct {
	tag     domain.SourceTag
	records []domain.PartialRecord
	err     error
}

func (s *stubAdapter) Tag() domain.SourceTag { return s.tag }

func (s *stubAdapter) Fetch(ctx context.Context) ([]domain.PartialRecord, error) {
	return s.records, s.err
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func age(v int) *int { return &v }

// newTestHandler builds a handler around a controller with one realtime
// stub. runPass controls whether a pass has completed before the request.
func newTestHandler(t *testing.T, runPass bool) *Handler {
	t.Helper()
	log := testLogger()

	registry := adapter.NewRegistry(log)
	require.NoError(t, registry.Register(&stubAdapter{
		tag: domain.SourceRealtime,
		records: []domain.PartialRecord{
			{MAC: "aa:bb:cc:dd:ee:01", IP: "10.0.0.5", Hostname: "cam-lobby",
				LastSeenSeconds: age(10), Source: domain.SourceRealtime},
		},
	}))

	ctrl := service.NewController(service.ControllerConfig{
		Interval: time.Minute,
		Deadline: 10 * time.Second,
	}, registry, service.NewReconciler(0, nil), nil, nil, service.NewEventBus(), clockwork.NewFakeClock(), log)

	if runPass {
		_, err := ctrl.RunPass(context.Background())
		require.NoError(t, err)
	}

	return New(ctrl, nil, nil, nil, log)
}

func doRequest(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.Routes(nil).ServeHTTP(rec, req)
	return rec
}

func TestGetTopology(t *testing.T) {
	h := newTestHandler(t, true)
	rec := doRequest(t, h, http.MethodGet, "/api/topology")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Nodes    []domain.Node `json:"nodes"`
		Edges    []domain.Link `json:"edges"`
		Metadata struct {
			SourceTier  string `json:"source_tier"`
			DeviceCount int    `json:"device_count"`
			PassID      string `json:"pass_id"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "TIER_REALTIME", resp.Metadata.SourceTier)
	assert.Equal(t, 1, resp.Metadata.DeviceCount)
	assert.NotEmpty(t, resp.Metadata.PassID)
	require.Len(t, resp.Nodes, 1)
}

func TestGetTopologyUnavailable(t *testing.T) {
	h := newTestHandler(t, false)
	rec := doRequest(t, h, http.MethodGet, "/api/topology")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.TierUnavailable), resp.SourceTier)
}

func TestListDevices(t *testing.T) {
	h := newTestHandler(t, true)
	rec := doRequest(t, h, http.MethodGet, "/api/devices")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Devices []domain.Device `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Devices, 1)
	assert.Equal(t, domain.MAC("aa:bb:cc:dd:ee:01"), resp.Devices[0].MAC)
	assert.Equal(t, domain.LivenessActive, resp.Devices[0].Liveness)
}

func TestGetDevice(t *testing.T) {
	h := newTestHandler(t, true)

	t.Run("any accepted mac form resolves", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/devices/AA-BB-CC-DD-EE-01")
		require.Equal(t, http.StatusOK, rec.Code)

		var d domain.Device
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
		assert.Equal(t, domain.MAC("aa:bb:cc:dd:ee:01"), d.MAC)
		assert.Equal(t, "cam-lobby", d.Hostname)
	})

	t.Run("unknown device", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/devices/aa-bb-cc-dd-ee-99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid mac", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/devices/garbage")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefresh(t *testing.T) {
	h := newTestHandler(t, false)
	rec := doRequest(t, h, http.MethodPost, "/api/refresh")

	require.Equal(t, http.StatusOK, rec.Code)

	var meta struct {
		SourceTier string `json:"source_tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "TIER_REALTIME", meta.SourceTier)

	// The triggered pass is now the current graph.
	rec = doRequest(t, h, http.MethodGet, "/api/topology")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPassesWithoutRepo(t *testing.T) {
	h := newTestHandler(t, true)
	rec := doRequest(t, h, http.MethodGet, "/api/passes")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"passes":[]}`, rec.Body.String())
}

func TestExportTopology(t *testing.T) {
	h := newTestHandler(t, true)

	t.Run("json", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/export/topology?format=json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.True(t, json.Valid(rec.Body.Bytes()))
	})

	t.Run("yaml", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/export/topology?format=yaml")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "tier: TIER_REALTIME")
	})

	t.Run("unsupported format", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/export/topology?format=xml")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		h := newTestHandler(t, true)
		rec := doRequest(t, h, http.MethodGet, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "TIER_REALTIME")
	})

	t.Run("degraded is still alive", func(t *testing.T) {
		h := newTestHandler(t, false)
		rec := doRequest(t, h, http.MethodGet, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "TIER_UNAVAILABLE")
	})
}

func TestUnknownRouteIs404(t *testing.T) {
	h := newTestHandler(t, true)
	rec := doRequest(t, h, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "panic"))
}
