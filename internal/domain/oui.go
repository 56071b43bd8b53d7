package domain

import "strings"

// OUITable maps vendor prefixes (first three octets, canonical form) to
// vendor names. The table is operator-supplied; an empty table is valid and
// simply annotates nothing.
type OUITable map[string]string

// NewOUITable normalizes the prefixes of an operator-supplied table. Entries
// whose prefix does not normalize to three octets are dropped.
func NewOUITable(raw map[string]string) OUITable {
	t := make(OUITable, len(raw))
	for prefix, vendor := range raw {
		// Pad to a full address so prefixes share the MAC parser.
		mac, err := NormalizeMAC(strings.NewReplacer(".", "", ":", "", "-", "").Replace(prefix) + "000000")
		if err != nil {
			continue
		}
		t[mac.OUI()] = vendor
	}
	return t
}

// Vendor returns the vendor name for the address, or "" when unknown.
func (t OUITable) Vendor(mac MAC) string {
	if t == nil {
		return ""
	}
	return t[mac.OUI()]
}
