package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
)

// ARP queries the ARP-table collaborator for ip<->mac pairs. It corroborates
// the lease table but never outranks it.
type ARP struct {
	c     *client
	clock clockwork.Clock
	log   *logrus.Entry
}

// NewARP creates the ARP-table adapter.
func NewARP(baseURL string, timeout time.Duration, retries int, clock clockwork.Clock, log *logrus.Logger) *ARP {
	return &ARP{
		c:     newClient(domain.SourceARP, baseURL, timeout, retries, log),
		clock: clock,
		log:   log.WithField("source", domain.SourceARP),
	}
}

// Tag returns the source identifier.
func (a *ARP) Tag() domain.SourceTag {
	return domain.SourceARP
}

type arpEntry struct {
	MAC string `json:"mac"`
	IP  string `json:"ip"`
}

// Fetch returns one record per ARP entry.
func (a *ARP) Fetch(ctx context.Context) ([]domain.PartialRecord, error) {
	var payload struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := a.c.getJSON(ctx, "/arp", &payload); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	records := make([]domain.PartialRecord, 0, len(payload.Entries))
	for _, raw := range payload.Entries {
		var e arpEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			a.log.WithError(err).Warn("skipping malformed arp entry")
			continue
		}
		mac, err := domain.NormalizeMAC(e.MAC)
		if err != nil {
			a.log.WithError(err).Warn("skipping arp entry with invalid mac")
			continue
		}
		records = append(records, domain.PartialRecord{
			MAC:       mac,
			IP:        e.IP,
			Source:    domain.SourceARP,
			FetchedAt: now,
			Raw:       raw,
		})
	}
	return records, nil
}
