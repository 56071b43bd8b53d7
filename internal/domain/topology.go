package domain

import (
	"fmt"
	"time"
)

// Tier names the priority level of source data a reconciliation pass used.
type Tier string

const (
	// TierRealtime - live detection succeeded, liveness is trustworthy
	TierRealtime Tier = "TIER_REALTIME"
	// TierConfigOnly - no live detection; placement from port configuration,
	// liveness unknown
	TierConfigOnly Tier = "TIER_CONFIG_ONLY"
	// TierStaticOnly - only the operator inventory responded; device list
	// without port placement
	TierStaticOnly Tier = "TIER_STATIC_ONLY"
	// TierCached - last successfully built graph, served within its TTL
	TierCached Tier = "TIER_CACHED"
	// TierUnavailable - nothing responded and no cache exists
	TierUnavailable Tier = "TIER_UNAVAILABLE"
)

// LinkStatus is the administrative/operational state of a switch port
type LinkStatus string

const (
	LinkStatusUp       LinkStatus = "up"
	LinkStatusDown     LinkStatus = "down"
	LinkStatusDisabled LinkStatus = "disabled"
)

// PortDescriptor describes one physical port on a switch as reported by the
// port-configuration source.
type PortDescriptor struct {
	Name       string     `json:"name"`
	LinkStatus LinkStatus `json:"link_status"`
	SpeedMbps  int        `json:"speed_mbps,omitempty"`
	PoEEnabled bool       `json:"poe_enabled,omitempty"`
	VLAN       int        `json:"vlan,omitempty"`
}

// SwitchDescriptor describes a switch, its ports, and its uplinks to
// gateways. Descriptors come from the port-configuration source only.
type SwitchDescriptor struct {
	ID      string           `json:"id"`
	Name    string           `json:"name,omitempty"`
	Ports   []PortDescriptor `json:"ports"`
	Uplinks []string         `json:"uplinks,omitempty"` // gateway IDs
}

// GatewayDescriptor describes an upstream gateway/router known to the
// operator configuration.
type GatewayDescriptor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	IP   string `json:"ip,omitempty"`
}

// PortAssignment is a port with the reconciled devices attached to it.
type PortAssignment struct {
	SwitchID   string     `json:"switch_id"`
	PortName   string     `json:"port_name"`
	LinkStatus LinkStatus `json:"link_status"`
	SpeedMbps  int        `json:"speed_mbps,omitempty"`
	PoEEnabled bool       `json:"poe_enabled,omitempty"`
	Devices    []Device   `json:"devices"`
}

// NodeKind distinguishes the entity classes in the topology graph
type NodeKind string

const (
	NodeKindSwitch  NodeKind = "switch"
	NodeKindGateway NodeKind = "gateway"
	NodeKindDevice  NodeKind = "device"
)

// Node is a vertex in the topology graph.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Label string   `json:"label"`

	// Device is set for device nodes only.
	Device *Device `json:"device,omitempty"`

	// Unattached marks a device that resolved to no switch port. Such
	// devices are kept in the graph, never silently dropped.
	Unattached bool `json:"unattached,omitempty"`
}

// LinkKind distinguishes edge classes in the topology graph
type LinkKind string

const (
	// LinkKindPort - (switch, port) -> device
	LinkKindPort LinkKind = "port"
	// LinkKindUplink - switch -> gateway
	LinkKindUplink LinkKind = "uplink"
)

// Link is an edge in the topology graph.
type Link struct {
	ID     string   `json:"id"`
	FromID string   `json:"from_id"`
	ToID   string   `json:"to_id"`
	Kind   LinkKind `json:"kind"`
	Port   string   `json:"port,omitempty"`
}

// Graph is one reconciliation pass's view of the network. It is recomputed
// each pass and may be cached with a TTL, but is never an input to merging.
type Graph struct {
	Nodes []Node           `json:"nodes"`
	Links []Link           `json:"links"`
	Ports []PortAssignment `json:"ports,omitempty"`

	Tier        Tier      `json:"tier"`
	PassID      string    `json:"pass_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Cached is true when the graph was served from the last-good cache.
	// OriginTier then records the tier the graph was originally built from;
	// GeneratedAt keeps the original build time, never the serve time.
	Cached     bool `json:"cached,omitempty"`
	OriginTier Tier `json:"origin_tier,omitempty"`
}

// DeviceCount returns the number of device nodes in the graph.
func (g *Graph) DeviceCount() int {
	n := 0
	for i := range g.Nodes {
		if g.Nodes[i].Kind == NodeKindDevice {
			n++
		}
	}
	return n
}

// LinkCount returns the number of edges in the graph.
func (g *Graph) LinkCount() int {
	return len(g.Links)
}

// NodeID builds the canonical graph identifier for an entity.
func NodeID(kind NodeKind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}
