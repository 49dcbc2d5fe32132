package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo — реализация Store поверх Postgres. Позиции состава лежат
// в jsonb-колонке materials.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Insert(ctx context.Context, d Draft) (*Entry, error) {
	if d.Materials == nil {
		d.Materials = []LineItem{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO costing_sheet (product_description, packaging, materials, comments, image_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, product_description, packaging, materials, comments, image_url, created_at
	`, d.ProductDescription, d.Packaging, d.Materials, d.Comments, d.ImageURL)
	return scanEntry(row)
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, product_description, packaging, materials, comments, image_url, created_at
		FROM costing_sheet WHERE id = $1
	`, id)
	e, err := scanEntry(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, d Draft) error {
	if d.Materials == nil {
		d.Materials = []LineItem{}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE costing_sheet
		SET product_description=$2, packaging=$3, materials=$4, comments=$5, image_url=$6
		WHERE id=$1
	`, id, d.ProductDescription, d.Packaging, d.Materials, d.Comments, d.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM costing_sheet WHERE id = $1`, id)
	return err
}

func (r *Repo) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_description, packaging, materials, comments, image_url, created_at
		FROM costing_sheet
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProductDescription, &e.Packaging, &e.Materials, &e.Comments, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.ProductDescription, &e.Packaging, &e.Materials, &e.Comments, &e.ImageURL, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
