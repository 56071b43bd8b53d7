package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"lanmap/internal/domain"
	"lanmap/internal/repository"
)

// passHistoryLimit bounds the persisted pass history.
const passHistoryLimit = 500

// Store implements repository.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and if necessary creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		pass_id TEXT NOT NULL,
		tier TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		graph JSON NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS passes (
		pass_id TEXT PRIMARY KEY,
		tier TEXT NOT NULL,
		device_count INTEGER NOT NULL DEFAULT 0,
		link_count INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_passes_started ON passes(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot replaces the single stored last-good graph.
func (s *Store) SaveSnapshot(ctx context.Context, g *domain.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, pass_id, tier, generated_at, graph)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pass_id = excluded.pass_id,
			tier = excluded.tier,
			generated_at = excluded.generated_at,
			graph = excluded.graph,
			saved_at = CURRENT_TIMESTAMP
	`, g.PassID, string(g.Tier), g.GeneratedAt, data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the stored graph, or (nil, nil) when none exists.
func (s *Store) LatestSnapshot(ctx context.Context) (*domain.Graph, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT graph FROM snapshots WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var g domain.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &g, nil
}

// RecordPass appends a pass outcome and prunes history past the limit.
func (s *Store) RecordPass(ctx context.Context, rec repository.PassRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO passes (pass_id, tier, device_count, link_count, started_at, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.PassID, string(rec.Tier), rec.DeviceCount, rec.LinkCount, rec.StartedAt,
		rec.Duration.Milliseconds(), rec.Error)
	if err != nil {
		return fmt.Errorf("record pass: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM passes WHERE pass_id NOT IN (
			SELECT pass_id FROM passes ORDER BY started_at DESC LIMIT ?
		)
	`, passHistoryLimit)
	if err != nil {
		return fmt.Errorf("prune passes: %w", err)
	}
	return nil
}

// ListPasses returns the most recent pass outcomes, newest first.
func (s *Store) ListPasses(ctx context.Context, limit int) ([]repository.PassRecord, error) {
	if limit <= 0 || limit > passHistoryLimit {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pass_id, tier, device_count, link_count, started_at, duration_ms, error
		FROM passes ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var out []repository.PassRecord
	for rows.Next() {
		var rec repository.PassRecord
		var tier string
		var durationMS int64
		var startedAt time.Time
		if err := rows.Scan(&rec.PassID, &tier, &rec.DeviceCount, &rec.LinkCount, &startedAt, &durationMS, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		rec.Tier = domain.Tier(tier)
		rec.StartedAt = startedAt
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
