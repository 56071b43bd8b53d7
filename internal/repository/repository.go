package repository

import (
	"context"
	"time"

	"lanmap/internal/domain"
)

// PassRecord is the persisted outcome of one reconciliation pass.
type PassRecord struct {
	PassID      string        `json:"pass_id"`
	Tier        domain.Tier   `json:"tier"`
	DeviceCount int           `json:"device_count"`
	LinkCount   int           `json:"link_count"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// Store persists the last-good graph and the pass history.
type Store interface {
	// SaveSnapshot replaces the stored last-good graph.
	SaveSnapshot(ctx context.Context, g *domain.Graph) error

	// LatestSnapshot returns the stored graph, or (nil, nil) when none exists.
	LatestSnapshot(ctx context.Context) (*domain.Graph, error)

	// RecordPass appends a pass outcome to the history.
	RecordPass(ctx context.Context, rec PassRecord) error

	// ListPasses returns the most recent pass outcomes, newest first.
	ListPasses(ctx context.Context, limit int) ([]PassRecord, error)

	// Close releases resources
	Close() error
}
