// Package domain defines the core domain types for the lanmap topology
// reconciliation engine.
//
// This package contains the fundamental entities and value objects shared by
// the source adapters, the reconciliation engine, and the topology builder.
//
// # Core Types
//
// MAC is the canonical join key for every observation. All textual MAC
// representations are funneled through NormalizeMAC before they leave an
// adapter; anything that fails normalization carries an InvalidMACError with
// the offending raw string preserved for diagnostics.
//
// PartialRecord is one source's partial view of one device for one fetch
// cycle. Records are ephemeral: created by an adapter, consumed by a single
// reconciliation pass, then discarded.
//
// Device is a reconciled device, exactly one per normalized MAC per pass,
// with field-level source priority already applied and a confidence score
// derived from the number of distinct contributing sources.
//
// Graph is the port-addressed topology produced by one pass: switch, gateway,
// and device nodes, port and uplink links, tagged with the tier the data came
// from and the pass that generated it.
//
// # Tiers
//
// Tier names the priority level of data a pass was able to use, from
// TierRealtime down to TierUnavailable. A graph served from the last-good
// cache keeps its origin tier so callers can always see how fresh and how
// complete the data really is.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
// - Rich type system with meaningful constants and enumerations
package domain
