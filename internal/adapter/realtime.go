package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"lanmap/internal/domain"
)

// Realtime queries the live per-port device-detection collaborator. Its
// records are the only ones carrying a last-seen age, which makes this
// source the primary liveness signal.
type Realtime struct {
	c     *client
	clock clockwork.Clock
	log   *logrus.Entry
}

// NewRealtime creates the realtime detection adapter.
func NewRealtime(baseURL string, timeout time.Duration, retries int, clock clockwork.Clock, log *logrus.Logger) *Realtime {
	return &Realtime{
		c:     newClient(domain.SourceRealtime, baseURL, timeout, retries, log),
		clock: clock,
		log:   log.WithField("source", domain.SourceRealtime),
	}
}

// Tag returns the source identifier.
func (a *Realtime) Tag() domain.SourceTag {
	return domain.SourceRealtime
}

type realtimeDevice struct {
	MAC             string `json:"mac"`
	IP              string `json:"ip"`
	Hostname        string `json:"hostname"`
	Port            string `json:"port"`
	SwitchID        string `json:"switch_id"`
	VLAN            int    `json:"vlan"`
	LastSeenSeconds *int   `json:"last_seen_seconds"`
}

// Fetch returns one record per device currently known to the detection
// collaborator. Individually malformed entries are skipped and logged, never
// fatal for the fetch.
func (a *Realtime) Fetch(ctx context.Context) ([]domain.PartialRecord, error) {
	var payload struct {
		Devices []json.RawMessage `json:"devices"`
	}
	if err := a.c.getJSON(ctx, "/devices", &payload); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	records := make([]domain.PartialRecord, 0, len(payload.Devices))
	for _, raw := range payload.Devices {
		var d realtimeDevice
		if err := json.Unmarshal(raw, &d); err != nil {
			a.log.WithError(err).Warn("skipping malformed device entry")
			continue
		}
		mac, err := domain.NormalizeMAC(d.MAC)
		if err != nil {
			a.log.WithError(err).Warn("skipping device with invalid mac")
			continue
		}
		records = append(records, domain.PartialRecord{
			MAC:             mac,
			IP:              d.IP,
			Hostname:        d.Hostname,
			Port:            d.Port,
			SwitchID:        d.SwitchID,
			VLAN:            d.VLAN,
			LastSeenSeconds: d.LastSeenSeconds,
			Source:          domain.SourceRealtime,
			FetchedAt:       now,
			Raw:             raw,
		})
	}
	return records, nil
}
