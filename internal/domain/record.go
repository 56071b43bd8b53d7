package domain

import (
	"encoding/json"
	"time"
)

// SourceTag identifies which upstream source produced a record
type SourceTag string

const (
	// SourceRealtime - live per-port device detection, carries last-seen ages
	SourceRealtime SourceTag = "realtime"
	// SourcePortConfig - switch/port configuration, authoritative for placement
	SourcePortConfig SourceTag = "portconfig"
	// SourceLease - DHCP lease table, authoritative for address and name
	SourceLease SourceTag = "lease"
	// SourceARP - ARP table, secondary ip<->mac corroboration
	SourceARP SourceTag = "arp"
	// SourceStatic - operator-maintained inventory, last resort
	SourceStatic SourceTag = "static"
)

// PartialRecord is one source's partial observation of one device for one
// fetch cycle. Records are created by an adapter, merged once, and discarded;
// no component retains or mutates them after the pass.
type PartialRecord struct {
	MAC      MAC    `json:"mac"`
	IP       string `json:"ip,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	VLAN     int    `json:"vlan,omitempty"`
	Port     string `json:"port,omitempty"`
	SwitchID string `json:"switch_id,omitempty"`

	// LastSeenSeconds is the age of the most recent sighting. Only the
	// realtime source sets it; nil means "no staleness signal", not stale.
	LastSeenSeconds *int `json:"last_seen_seconds,omitempty"`

	Source    SourceTag `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`

	// Raw preserves the upstream payload for the record, for diagnostics
	// only. It never participates in merging.
	Raw json.RawMessage `json:"-"`
}
