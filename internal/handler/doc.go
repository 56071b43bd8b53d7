// Package handler implements HTTP request handlers for the lanmap API.
//
// The API is the boundary consumed by the dashboard collaborator. Its
// central contract is that "live topology", "degraded/partial topology
// (tier X)", and "no topology available" are always distinguishable: every
// topology response carries the source tier in its metadata, cached graphs
// keep their origin tier and original timestamp, and total unavailability
// is an explicit 503 with the tier marker, never an empty-but-ok payload.
//
// # Endpoints
//
// GET /api/topology - current graph with {source_tier, device_count,
// link_count, generated_at} metadata
//
// GET /api/devices, GET /api/devices/{mac} - reconciled device views
//
// POST /api/refresh - trigger a reconciliation pass out of schedule
//
// GET /api/passes - recent pass history
//
// GET /api/export/topology?format=json|yaml - topology export via codec
//
// GET /events - Server-Sent Events stream of pass lifecycle events
//
// GET /healthz, GET /metrics - liveness and Prometheus metrics
//
// Errors are returned as JSON with {error, details} structure and
// appropriate status codes.
package handler
