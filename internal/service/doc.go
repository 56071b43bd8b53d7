// Package service implements the reconciliation core of lanmap.
//
// This package contains the three components that turn partial, per-source
// device observations into one trustworthy topology:
//
// # Reconciler
//
// Reconciler merges partial records by normalized MAC into exactly one
// device per physical address, applying a fixed per-field source priority
// and classifying liveness. The merge is a pure function over an immutable
// input snapshot: no I/O, no state between calls, deterministic output.
//
// # Builder
//
// BuildGraph attaches reconciled devices to the switch/port/gateway
// structure and produces the node/link graph. Devices without a resolvable
// port stay in the graph as explicitly unattached nodes; no link is ever
// synthesized beyond the relations present in the input.
//
// # Controller
//
// Controller is the degradation state machine. It fetches all live adapters
// concurrently under per-adapter timeouts, waits for every fetch to settle,
// and decides which tier's data is authoritative for the pass:
//
//	TIER_REALTIME -> TIER_CONFIG_ONLY -> TIER_STATIC_ONLY -> TIER_CACHED -> TIER_UNAVAILABLE
//
// The last successfully built graph is the only persisted state. It is
// swapped atomically on success, served read-only during fallback, and never
// relabeled as fresh. When every tier and the cache are exhausted the
// controller returns ErrNoSources rather than a plausible-looking graph.
//
// # Event System
//
// The controller publishes pass lifecycle events via EventBus for real-time
// updates to connected dashboard clients via Server-Sent Events.
package service
