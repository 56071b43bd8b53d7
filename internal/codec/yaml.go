package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"lanmap/internal/domain"
)

// YAMLCodec handles YAML export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlGraph flattens the graph for export; devices keep their JSON shape
// inside node entries, tiers and timestamps live on the top level.
type yamlGraph struct {
	Tier        string     `yaml:"tier"`
	OriginTier  string     `yaml:"origin_tier,omitempty"`
	Cached      bool       `yaml:"cached,omitempty"`
	PassID      string     `yaml:"pass_id"`
	GeneratedAt string     `yaml:"generated_at"`
	Nodes       []yamlNode `yaml:"nodes"`
	Links       []yamlLink `yaml:"links"`
}

type yamlNode struct {
	ID         string `yaml:"id"`
	Kind       string `yaml:"kind"`
	Label      string `yaml:"label"`
	MAC        string `yaml:"mac,omitempty"`
	IP         string `yaml:"ip,omitempty"`
	Hostname   string `yaml:"hostname,omitempty"`
	Liveness   string `yaml:"liveness,omitempty"`
	Confidence int    `yaml:"confidence,omitempty"`
	Unattached bool   `yaml:"unattached,omitempty"`
}

type yamlLink struct {
	ID     string `yaml:"id"`
	FromID string `yaml:"from_id"`
	ToID   string `yaml:"to_id"`
	Kind   string `yaml:"kind"`
	Port   string `yaml:"port,omitempty"`
}

// Export writes the graph as YAML
func (c *YAMLCodec) Export(g *domain.Graph, w io.Writer) error {
	yg := yamlGraph{
		Tier:        string(g.Tier),
		OriginTier:  string(g.OriginTier),
		Cached:      g.Cached,
		PassID:      g.PassID,
		GeneratedAt: g.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Nodes:       make([]yamlNode, 0, len(g.Nodes)),
		Links:       make([]yamlLink, 0, len(g.Links)),
	}

	for _, node := range g.Nodes {
		yn := yamlNode{
			ID:         node.ID,
			Kind:       string(node.Kind),
			Label:      node.Label,
			Unattached: node.Unattached,
		}
		if node.Device != nil {
			yn.MAC = node.Device.MAC.String()
			yn.IP = node.Device.IP
			yn.Hostname = node.Device.Hostname
			yn.Liveness = string(node.Device.Liveness)
			yn.Confidence = node.Device.Confidence
		}
		yg.Nodes = append(yg.Nodes, yn)
	}

	for _, link := range g.Links {
		yg.Links = append(yg.Links, yamlLink{
			ID:     link.ID,
			FromID: link.FromID,
			ToID:   link.ToID,
			Kind:   string(link.Kind),
			Port:   link.Port,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yg); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
