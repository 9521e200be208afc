package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/vaultshare/internal/domain"
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot represents a stored position valuation.
type Snapshot struct {
	ID      int64           `json:"id"`
	RunID   uuid.UUID       `json:"runId"`
	Vault   string          `json:"vault"`
	Wallet  string          `json:"wallet"`
	Label   string          `json:"label,omitempty"`
	TakenAt time.Time       `json:"takenAt"`
	Data    json.RawMessage `json:"data"`
}

// Valuation decodes the stored valuation payload.
func (s Snapshot) Valuation() (domain.PositionValuation, error) {
	var v domain.PositionValuation
	if err := json.Unmarshal(s.Data, &v); err != nil {
		return domain.PositionValuation{}, fmt.Errorf("decoding snapshot %d: %w", s.ID, err)
	}
	return v, nil
}

// Repository defines persistent storage for snapshots.
type Repository interface {
	Save(ctx context.Context, runID uuid.UUID, v domain.PositionValuation) error
	GetLatest(ctx context.Context, vault, wallet string) (*Snapshot, error)
	List(ctx context.Context, vault, wallet string, limit int) ([]Snapshot, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const selectSnapshot = `SELECT id, run_id, vault, wallet, label, taken_at, data FROM position_snapshots`

func (r *PgRepository) Save(ctx context.Context, runID uuid.UUID, v domain.PositionValuation) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling valuation: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO position_snapshots (run_id, vault, wallet, label, taken_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		 ON CONFLICT (run_id, vault, wallet)
		 DO UPDATE SET data = $6::jsonb, taken_at = $5`,
		runID, v.Vault, v.Wallet, v.Label, v.ValuedAt, data)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context, vault, wallet string) (*Snapshot, error) {
	row := r.pool.QueryRow(ctx,
		selectSnapshot+`
		 WHERE vault = $1 AND wallet = $2
		 ORDER BY taken_at DESC, id DESC
		 LIMIT 1`, vault, wallet)

	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) List(ctx context.Context, vault, wallet string, limit int) ([]Snapshot, error) {
	rows, err := r.pool.Query(ctx,
		selectSnapshot+`
		 WHERE vault = $1 AND wallet = $2
		 ORDER BY taken_at DESC, id DESC
		 LIMIT $3`, vault, wallet, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.RunID, &s.Vault, &s.Wallet, &s.Label, &s.TakenAt, &s.Data)
	return s, err
}
