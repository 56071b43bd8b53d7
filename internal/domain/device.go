package domain

// Liveness classifies how fresh a device's last sighting is
type Liveness string

const (
	// LivenessActive - seen within the activity threshold
	LivenessActive Liveness = "active"
	// LivenessStale - has a last-seen signal, but older than the threshold
	LivenessStale Liveness = "stale"
	// LivenessUnknown - known only through sources that carry no staleness
	// signal (config/static): "configured, unknown freshness"
	LivenessUnknown Liveness = "unknown"
)

// Device is a reconciled device: exactly one per normalized MAC per
// reconciliation pass, with field-level source priority already applied.
type Device struct {
	MAC      MAC    `json:"mac"`
	IP       string `json:"ip,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Vendor   string `json:"vendor,omitempty"`
	VLAN     int    `json:"vlan,omitempty"`
	Port     string `json:"port,omitempty"`
	SwitchID string `json:"switch_id,omitempty"`

	LastSeenSeconds *int     `json:"last_seen_seconds,omitempty"`
	Liveness        Liveness `json:"liveness"`
	IsActive        bool     `json:"is_active"`

	// Confidence is the count of distinct sources that contributed to this
	// device. It never decreases when another source corroborates.
	Confidence int         `json:"confidence"`
	Sources    []SourceTag `json:"sources"`
}

// HasPlacement reports whether the device resolved to a switch port.
func (d *Device) HasPlacement() bool {
	return d.SwitchID != "" && d.Port != ""
}

// HasSource reports whether the given source contributed to this device.
func (d *Device) HasSource(tag SourceTag) bool {
	for _, s := range d.Sources {
		if s == tag {
			return true
		}
	}
	return false
}
