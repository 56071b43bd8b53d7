package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
)

// Lease queries the DHCP lease-table collaborator, the authoritative source
// for device addresses and hostnames.
type Lease struct {
	c     *client
	clock clockwork.Clock
	log   *logrus.Entry
}

// NewLease creates the lease-table adapter.
func NewLease(baseURL string, timeout time.Duration, retries int, clock clockwork.Clock, log *logrus.Logger) *Lease {
	return &Lease{
		c:     newClient(domain.SourceLease, baseURL, timeout, retries, log),
		clock: clock,
		log:   log.WithField("source", domain.SourceLease),
	}
}

// Tag returns the source identifier.
func (a *Lease) Tag() domain.SourceTag {
	return domain.SourceLease
}

type leaseEntry struct {
	MAC      string `json:"mac"`
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
}

// Fetch returns one record per active lease.
func (a *Lease) Fetch(ctx context.Context) ([]domain.PartialRecord, error) {
	var payload struct {
		Leases []json.RawMessage `json:"leases"`
	}
	if err := a.c.getJSON(ctx, "/leases", &payload); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	records := make([]domain.PartialRecord, 0, len(payload.Leases))
	for _, raw := range payload.Leases {
		var l leaseEntry
		if err := json.Unmarshal(raw, &l); err != nil {
			a.log.WithError(err).Warn("skipping malformed lease entry")
			continue
		}
		mac, err := domain.NormalizeMAC(l.MAC)
		if err != nil {
			a.log.WithError(err).Warn("skipping lease with invalid mac")
			continue
		}
		records = append(records, domain.PartialRecord{
			MAC:       mac,
			IP:        l.IP,
			Hostname:  l.Hostname,
			Source:    domain.SourceLease,
			FetchedAt: now,
			Raw:       raw,
		})
	}
	return records, nil
}
