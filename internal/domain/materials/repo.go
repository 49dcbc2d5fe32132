package materials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo — реализация Store поверх Postgres.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

/* Materials */

func (r *Repo) Insert(ctx context.Context, name string, value float64, unit string) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, value, unit)
		VALUES ($1,$2,$3)
		RETURNING id, name, value, unit, created_at, updated_at
	`, name, value, unit)

	var m Material
	if err := row.Scan(&m.ID, &m.Name, &m.Value, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, value, unit, created_at, updated_at
		FROM materials WHERE id = $1
	`, id)
	var m Material
	if err := row.Scan(&m.ID, &m.Name, &m.Value, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) UpdatePrice(ctx context.Context, id uuid.UUID, value float64, unit string, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE materials SET value=$2, unit=$3, updated_at=$4 WHERE id=$1
	`, id, value, unit, updatedAt)
	return err
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	return err
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM materials`)
	return err
}

func (r *Repo) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, value, unit, created_at, updated_at
		FROM materials
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Value, &m.Unit, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

/* Material history */

func (r *Repo) InsertHistory(ctx context.Context, materialID uuid.UUID, value float64, unit string) (*HistoryEntry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO material_history (material_id, value, unit)
		VALUES ($1,$2,$3)
		RETURNING id, material_id, value, unit, created_at
	`, materialID, value, unit)

	var h HistoryEntry
	if err := row.Scan(&h.ID, &h.MaterialID, &h.Value, &h.Unit, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repo) ListHistory(ctx context.Context, materialID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, value, unit, created_at
		FROM material_history
		WHERE material_id = $1
		ORDER BY created_at DESC
	`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.MaterialID, &h.Value, &h.Unit, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteHistoryFor(ctx context.Context, materialID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM material_history WHERE material_id = $1`, materialID)
	return err
}

func (r *Repo) DeleteAllHistory(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM material_history`)
	return err
}
