package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists snapshots as JSONB blobs, one row per group. The
// blob is opaque to the database; all invariants are re-checked by Restore
// on the way back in.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a snapshot store backed by the given database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save implements Store with an upsert keyed by group id.
func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `
		INSERT INTO group_snapshots (group_id, group_name, snapshot, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (group_id)
		DO UPDATE SET group_name = $2, snapshot = $3, updated_at = NOW()`

	_, err = s.db.ExecContext(ctx, query, snap.Group.ID, snap.Group.Name, blob)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, groupID uuid.UUID) (*Snapshot, error) {
	query := `SELECT snapshot FROM group_snapshots WHERE group_id = $1`

	var blob []byte
	err := s.db.QueryRowContext(ctx, query, groupID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		// Undecodable persisted data is corruption, not a transient failure.
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &snap, nil
}

// ListGroupIDs implements Store, ordered by creation time.
func (s *PostgresStore) ListGroupIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT group_id FROM group_snapshots ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
