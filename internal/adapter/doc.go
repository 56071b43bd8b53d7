// Package adapter implements the source adapters for the lanmap
// reconciliation engine.
//
// Each adapter wraps one upstream discovery collaborator and returns a list
// of partial device records, or a typed per-source Error the degradation
// controller can base a tier decision on. Adapters never block past their
// configured timeout and never let a single malformed record fail a fetch:
// bad records are skipped and logged individually.
//
// # Source Adapters
//
// Realtime queries the live per-port device-detection collaborator. Its
// records carry last-seen ages, the primary liveness signal.
//
// PortConfig queries switch/port configuration. It supplies port, VLAN, and
// switch placement plus the switch descriptors the topology builder needs,
// but no liveness signal.
//
// Lease queries the DHCP lease table, the authoritative source for addresses
// and hostnames.
//
// ARP supplies ip<->mac pairs as secondary corroboration.
//
// Static serves the operator-maintained inventory file. It performs no
// network I/O and is consulted only when no live source responds.
//
// # Upstream Boundary
//
// Upstream payloads are loosely-shaped JSON. They are parsed into
// domain.PartialRecord at this boundary and never travel past it. The shared
// HTTP client applies the per-adapter timeout and a bounded exponential
// retry; connectivity and timeout failures surface as Error values with
// distinct kinds rather than generic errors.
//
// # Registry
//
// Registry builds the adapter set from configuration and hands the
// degradation controller the live adapters for a pass, in tier order.
package adapter
