package codec

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanmap/internal/domain"
)

func exportGraph() *domain.Graph {
	return &domain.Graph{
		Nodes: []domain.Node{
			{ID: "switch:sw-a", Kind: domain.NodeKindSwitch, Label: "Closet A"},
			{ID: "device:aa:bb:cc:dd:ee:01", Kind: domain.NodeKindDevice, Label: "cam",
				Device: &domain.Device{MAC: "aa:bb:cc:dd:ee:01", IP: "10.0.0.5",
					Liveness: domain.LivenessActive, Confidence: 2}},
		},
		Links: []domain.Link{
			{ID: "port:sw-a:gi1/0/1:aa:bb:cc:dd:ee:01", FromID: "switch:sw-a",
				ToID: "device:aa:bb:cc:dd:ee:01", Kind: domain.LinkKindPort, Port: "gi1/0/1"},
		},
		Tier:        domain.TierRealtime,
		PassID:      "pass-1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestForFormat(t *testing.T) {
	assert.Equal(t, "json", ForFormat("json").Format())
	assert.Equal(t, "json", ForFormat("").Format(), "json is the default")
	assert.Equal(t, "yaml", ForFormat("yaml").Format())
	assert.Equal(t, "yaml", ForFormat("yml").Format())
	assert.Nil(t, ForFormat("xml"))
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(exportGraph(), &buf))

	var decoded domain.Graph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, domain.TierRealtime, decoded.Tier)
	assert.Len(t, decoded.Nodes, 2)
	assert.Len(t, decoded.Links, 1)
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec().Export(exportGraph(), &buf))

	out := buf.String()
	assert.Contains(t, out, "tier: TIER_REALTIME")
	assert.Contains(t, out, "pass_id: pass-1")
	assert.Contains(t, out, "mac: aa:bb:cc:dd:ee:01")
	assert.Contains(t, out, "liveness: active")
	assert.Contains(t, out, "port: gi1/0/1")
}
