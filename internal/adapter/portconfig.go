package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
)

// PortConfig queries the switch/port-configuration collaborator. It is the
// authoritative source for port, VLAN, and switch placement, and the only
// source of switch descriptors, but carries no liveness signal.
type PortConfig struct {
	c     *client
	clock clockwork.Clock
	log   *logrus.Entry

	mu       sync.RWMutex
	switches []domain.SwitchDescriptor
}

// NewPortConfig creates the port-configuration adapter.
func NewPortConfig(baseURL string, timeout time.Duration, retries int, clock clockwork.Clock, log *logrus.Logger) *PortConfig {
	return &PortConfig{
		c:     newClient(domain.SourcePortConfig, baseURL, timeout, retries, log),
		clock: clock,
		log:   log.WithField("source", domain.SourcePortConfig),
	}
}

// Tag returns the source identifier.
func (a *PortConfig) Tag() domain.SourceTag {
	return domain.SourcePortConfig
}

type portConfigPort struct {
	Name       string   `json:"name"`
	LinkStatus string   `json:"link_status"`
	SpeedMbps  int      `json:"speed_mbps"`
	PoEEnabled bool     `json:"poe_enabled"`
	VLAN       int      `json:"vlan"`
	MACs       []string `json:"macs"`
}

type portConfigSwitch struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Uplinks []string         `json:"uplinks"`
	Ports   []portConfigPort `json:"ports"`
}

// Fetch returns one record per (port, MAC) the configuration knows about,
// and refreshes the switch descriptors exposed via Switches.
func (a *PortConfig) Fetch(ctx context.Context) ([]domain.PartialRecord, error) {
	var payload struct {
		Switches []json.RawMessage `json:"switches"`
	}
	if err := a.c.getJSON(ctx, "/switches", &payload); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	var records []domain.PartialRecord
	switches := make([]domain.SwitchDescriptor, 0, len(payload.Switches))

	for _, raw := range payload.Switches {
		var sw portConfigSwitch
		if err := json.Unmarshal(raw, &sw); err != nil {
			a.log.WithError(err).Warn("skipping malformed switch entry")
			continue
		}
		if sw.ID == "" {
			a.log.Warn("skipping switch entry without id")
			continue
		}

		desc := domain.SwitchDescriptor{
			ID:      sw.ID,
			Name:    sw.Name,
			Uplinks: sw.Uplinks,
			Ports:   make([]domain.PortDescriptor, 0, len(sw.Ports)),
		}
		for _, p := range sw.Ports {
			desc.Ports = append(desc.Ports, domain.PortDescriptor{
				Name:       p.Name,
				LinkStatus: normalizeLinkStatus(p.LinkStatus),
				SpeedMbps:  p.SpeedMbps,
				PoEEnabled: p.PoEEnabled,
				VLAN:       p.VLAN,
			})
			for _, rawMAC := range p.MACs {
				mac, err := domain.NormalizeMAC(rawMAC)
				if err != nil {
					a.log.WithError(err).WithFields(logrus.Fields{
						"switch": sw.ID,
						"port":   p.Name,
					}).Warn("skipping port entry with invalid mac")
					continue
				}
				records = append(records, domain.PartialRecord{
					MAC:       mac,
					Port:      p.Name,
					SwitchID:  sw.ID,
					VLAN:      p.VLAN,
					Source:    domain.SourcePortConfig,
					FetchedAt: now,
					Raw:       raw,
				})
			}
		}
		switches = append(switches, desc)
	}

	a.mu.Lock()
	a.switches = switches
	a.mu.Unlock()

	return records, nil
}

// Switches returns the switch descriptors from the most recent successful
// fetch. The returned slice must not be mutated.
func (a *PortConfig) Switches() []domain.SwitchDescriptor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.switches
}

func normalizeLinkStatus(s string) domain.LinkStatus {
	switch domain.LinkStatus(s) {
	case domain.LinkStatusUp, domain.LinkStatusDown, domain.LinkStatusDisabled:
		return domain.LinkStatus(s)
	default:
		return domain.LinkStatusDown
	}
}
