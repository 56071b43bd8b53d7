package service

import (
	"sort"
	"time"

	"lanmap/internal/domain"
)

// DefaultActivityThresholdSeconds is the last-seen age below which a device
// counts as active.
const DefaultActivityThresholdSeconds = 300

// Per-field source priority. Higher wins; ties go to the most recently
// fetched record. Sources absent from a map never contribute that field.
var (
	// ip and hostname: lease table is authoritative, ARP corroborates,
	// realtime detection may carry addresses, static inventory is last.
	addrPriority = map[domain.SourceTag]int{
		domain.SourceLease:    4,
		domain.SourceARP:      3,
		domain.SourceRealtime: 2,
		domain.SourceStatic:   1,
	}

	// port, vlan, switch placement: configuration outranks live detection.
	placementPriority = map[domain.SourceTag]int{
		domain.SourcePortConfig: 2,
		domain.SourceRealtime:   1,
	}
)

// Reconciler merges partial records into one device per normalized MAC.
// It is stateless: Reconcile is a pure function over its input snapshot.
type Reconciler struct {
	activityThreshold int
	vendors           domain.OUITable
}

// NewReconciler creates a reconciler. thresholdSeconds <= 0 selects the
// default activity threshold.
func NewReconciler(thresholdSeconds int, vendors domain.OUITable) *Reconciler {
	if thresholdSeconds <= 0 {
		thresholdSeconds = DefaultActivityThresholdSeconds
	}
	return &Reconciler{
		activityThreshold: thresholdSeconds,
		vendors:           vendors,
	}
}

// Reconcile groups records by MAC and merges each group with the fixed
// per-field priority order. Output is sorted by MAC, so identical input
// yields identical output regardless of record or adapter completion order.
func (r *Reconciler) Reconcile(records []domain.PartialRecord) []domain.Device {
	groups := make(map[domain.MAC][]domain.PartialRecord)
	for _, rec := range records {
		if rec.MAC == "" {
			continue
		}
		groups[rec.MAC] = append(groups[rec.MAC], rec)
	}

	devices := make([]domain.Device, 0, len(groups))
	for mac, group := range groups {
		devices = append(devices, r.merge(mac, group))
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].MAC < devices[j].MAC })
	return devices
}

// pick tracks the best candidate seen so far for one merged field.
type pick struct {
	prio int
	at   time.Time
	set  bool
}

func (p *pick) better(prio int, at time.Time) bool {
	if !p.set {
		return true
	}
	if prio != p.prio {
		return prio > p.prio
	}
	return at.After(p.at)
}

func (p *pick) take(prio int, at time.Time) {
	p.prio, p.at, p.set = prio, at, true
}

func (r *Reconciler) merge(mac domain.MAC, group []domain.PartialRecord) domain.Device {
	d := domain.Device{
		MAC:    mac,
		Vendor: r.vendors.Vendor(mac),
	}

	var ipPick, hostPick, vlanPick, placePick, seenPick pick
	seen := make(map[domain.SourceTag]struct{}, len(group))

	for _, rec := range group {
		seen[rec.Source] = struct{}{}

		if prio, ok := addrPriority[rec.Source]; ok {
			if rec.IP != "" && ipPick.better(prio, rec.FetchedAt) {
				d.IP = rec.IP
				ipPick.take(prio, rec.FetchedAt)
			}
			if rec.Hostname != "" && hostPick.better(prio, rec.FetchedAt) {
				d.Hostname = rec.Hostname
				hostPick.take(prio, rec.FetchedAt)
			}
		}

		if prio, ok := placementPriority[rec.Source]; ok {
			// Port and switch are taken together from one record so a
			// merged device never mixes placements from two sources.
			if (rec.Port != "" || rec.SwitchID != "") && placePick.better(prio, rec.FetchedAt) {
				d.Port = rec.Port
				d.SwitchID = rec.SwitchID
				placePick.take(prio, rec.FetchedAt)
			}
			if rec.VLAN != 0 && vlanPick.better(prio, rec.FetchedAt) {
				d.VLAN = rec.VLAN
				vlanPick.take(prio, rec.FetchedAt)
			}
		}

		// Staleness only ever comes from live detection; absence means
		// "unknown", not stale.
		if rec.Source == domain.SourceRealtime && rec.LastSeenSeconds != nil {
			if seenPick.better(0, rec.FetchedAt) {
				age := *rec.LastSeenSeconds
				d.LastSeenSeconds = &age
				seenPick.take(0, rec.FetchedAt)
			}
		}
	}

	d.Sources = make([]domain.SourceTag, 0, len(seen))
	for tag := range seen {
		d.Sources = append(d.Sources, tag)
	}
	sort.Slice(d.Sources, func(i, j int) bool { return d.Sources[i] < d.Sources[j] })
	d.Confidence = len(d.Sources)

	switch {
	case d.LastSeenSeconds == nil:
		d.Liveness = domain.LivenessUnknown
	case *d.LastSeenSeconds < r.activityThreshold:
		d.Liveness = domain.LivenessActive
		d.IsActive = true
	default:
		d.Liveness = domain.LivenessStale
	}

	return d
}
