package domain

import (
	"fmt"
	"strings"
)

// MAC is a normalized MAC address: lowercase, colon-separated, six octets.
// The zero value is not a valid address; construct via NormalizeMAC.
type MAC string

// InvalidMACError reports input that could not be normalized. The raw input
// is preserved verbatim for diagnostics.
type InvalidMACError struct {
	Raw string
}

func (e *InvalidMACError) Error() string {
	return fmt.Sprintf("invalid mac address %q", e.Raw)
}

// NormalizeMAC canonicalizes a textual MAC address. Accepted forms:
//
//	aa:bb:cc:dd:ee:ff   colon-separated
//	aa-bb-cc-dd-ee-ff   dash-separated
//	aabb.ccdd.eeff      dot-separated groups of four
//	aabbccddeeff        bare hex
//
// in any case mix. Octets with missing leading zeros are rejected, not
// padded: "a:b:c:d:e:f" is malformed, never "0a:0b:0c:0d:0e:0f".
func NormalizeMAC(raw string) (MAC, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &InvalidMACError{Raw: raw}
	}

	var groups []string
	switch {
	case strings.ContainsAny(s, ":-"):
		// Split, don't drop: empty groups from doubled or trailing
		// separators must reject, not collapse.
		groups = strings.Split(strings.ReplaceAll(s, "-", ":"), ":")
		if len(groups) != 6 {
			return "", &InvalidMACError{Raw: raw}
		}
		for _, g := range groups {
			if len(g) != 2 {
				return "", &InvalidMACError{Raw: raw}
			}
		}
		s = strings.Join(groups, "")
	case strings.Contains(s, "."):
		groups = strings.Split(s, ".")
		if len(groups) != 3 {
			return "", &InvalidMACError{Raw: raw}
		}
		for _, g := range groups {
			if len(g) != 4 {
				return "", &InvalidMACError{Raw: raw}
			}
		}
		s = strings.Join(groups, "")
	}

	if len(s) != 12 {
		return "", &InvalidMACError{Raw: raw}
	}

	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
			c += 'a' - 'A'
		default:
			return "", &InvalidMACError{Raw: raw}
		}
		if i > 0 && i%2 == 0 {
			b.WriteByte(':')
		}
		b.WriteByte(c)
	}

	return MAC(b.String()), nil
}

// String returns the canonical textual form.
func (m MAC) String() string {
	return string(m)
}

// OUI returns the vendor prefix (first three octets) of the address.
func (m MAC) OUI() string {
	if len(m) < 8 {
		return ""
	}
	return string(m[:8])
}
