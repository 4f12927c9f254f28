package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearthrpg/tracker/internal/game/tracker"
)

// ErrSnapshotNotFound is returned when no snapshot exists under a name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotInfo is one stored encounter in a listing.
type SnapshotInfo struct {
	Name      string
	UpdatedAt time.Time
}

// SnapshotRepository stores encounter snapshots as JSONB, upserted by
// encounter name.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save upserts the snapshot under its encounter name. An unnamed encounter
// is stored under the empty name and overwritten by the next unnamed save.
func (r *SnapshotRepository) Save(ctx context.Context, state tracker.EncounterState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding snapshot %q: %w", state.Name, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO encounter_snapshots (name, state)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE
		 SET state = EXCLUDED.state, updated_at = NOW()`,
		state.Name, payload,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", state.Name, err)
	}
	return nil
}

// Load returns the snapshot stored under name, or ErrSnapshotNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, name string) (tracker.EncounterState, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM encounter_snapshots WHERE name = $1`,
		name,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return tracker.EncounterState{}, ErrSnapshotNotFound
	}
	if err != nil {
		return tracker.EncounterState{}, fmt.Errorf("loading snapshot %q: %w", name, err)
	}
	var state tracker.EncounterState
	if err := json.Unmarshal(payload, &state); err != nil {
		return tracker.EncounterState{}, fmt.Errorf("decoding snapshot %q: %w", name, err)
	}
	return state, nil
}

// List returns all stored encounters, most recently updated first.
func (r *SnapshotRepository) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, updated_at FROM encounter_snapshots ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot stored under name, or returns
// ErrSnapshotNotFound.
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM encounter_snapshots WHERE name = $1`,
		name,
	)
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
