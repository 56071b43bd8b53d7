package service

import (
	"fmt"

	"lanmap/internal/domain"
)

// BuildGraph attaches reconciled devices to the switch/port/gateway
// structure and produces the topology graph. Devices lacking a resolvable
// port become unattached nodes rather than being dropped; links exist only
// for relations actually present in the input, never synthesized.
//
// The caller stamps tier, pass ID, and generation time.
func BuildGraph(devices []domain.Device, switches []domain.SwitchDescriptor, gateways []domain.GatewayDescriptor) *domain.Graph {
	g := &domain.Graph{
		Nodes: make([]domain.Node, 0, len(devices)+len(switches)+len(gateways)),
		Links: make([]domain.Link, 0, len(devices)),
	}

	gatewayIDs := make(map[string]struct{}, len(gateways))
	for _, gw := range gateways {
		gatewayIDs[gw.ID] = struct{}{}
		label := gw.Name
		if label == "" {
			label = gw.ID
		}
		g.Nodes = append(g.Nodes, domain.Node{
			ID:    domain.NodeID(domain.NodeKindGateway, gw.ID),
			Kind:  domain.NodeKindGateway,
			Label: label,
		})
	}

	// One assignment per configured port, present even when no device
	// resolved to it. Port counts in the output mirror the descriptors.
	ports := make(map[string]*domain.PortAssignment)
	for _, sw := range switches {
		label := sw.Name
		if label == "" {
			label = sw.ID
		}
		g.Nodes = append(g.Nodes, domain.Node{
			ID:    domain.NodeID(domain.NodeKindSwitch, sw.ID),
			Kind:  domain.NodeKindSwitch,
			Label: label,
		})

		for _, p := range sw.Ports {
			pa := &domain.PortAssignment{
				SwitchID:   sw.ID,
				PortName:   p.Name,
				LinkStatus: p.LinkStatus,
				SpeedMbps:  p.SpeedMbps,
				PoEEnabled: p.PoEEnabled,
			}
			ports[portKey(sw.ID, p.Name)] = pa
		}

		for _, uplink := range sw.Uplinks {
			if _, ok := gatewayIDs[uplink]; !ok {
				continue
			}
			g.Links = append(g.Links, domain.Link{
				ID:     fmt.Sprintf("uplink:%s:%s", sw.ID, uplink),
				FromID: domain.NodeID(domain.NodeKindSwitch, sw.ID),
				ToID:   domain.NodeID(domain.NodeKindGateway, uplink),
				Kind:   domain.LinkKindUplink,
			})
		}
	}

	for i := range devices {
		d := devices[i]
		nodeID := domain.NodeID(domain.NodeKindDevice, d.MAC.String())
		label := d.Hostname
		if label == "" {
			label = d.MAC.String()
		}

		pa, placed := ports[portKey(d.SwitchID, d.Port)]
		if placed && d.HasPlacement() {
			pa.Devices = append(pa.Devices, d)
			g.Links = append(g.Links, domain.Link{
				ID:     fmt.Sprintf("port:%s:%s:%s", d.SwitchID, d.Port, d.MAC),
				FromID: domain.NodeID(domain.NodeKindSwitch, d.SwitchID),
				ToID:   nodeID,
				Kind:   domain.LinkKindPort,
				Port:   d.Port,
			})
		}

		g.Nodes = append(g.Nodes, domain.Node{
			ID:         nodeID,
			Kind:       domain.NodeKindDevice,
			Label:      label,
			Device:     &d,
			Unattached: !placed || !d.HasPlacement(),
		})
	}

	g.Ports = make([]domain.PortAssignment, 0, len(ports))
	for _, sw := range switches {
		for _, p := range sw.Ports {
			g.Ports = append(g.Ports, *ports[portKey(sw.ID, p.Name)])
		}
	}

	return g
}

func portKey(switchID, port string) string {
	return switchID + "\x00" + port
}
