package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPackagingStyle = `-- name: CreatePackagingStyle :one
INSERT INTO packaging_styles (id, name, description, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, description, active, created_at, updated_at
`

type CreatePackagingStyleParams struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Active      bool               `json:"active"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreatePackagingStyle(ctx context.Context, arg CreatePackagingStyleParams) (PackagingStyle, error) {
	row := q.db.QueryRow(ctx, createPackagingStyle, arg.ID, arg.Name, arg.Description, arg.Active, arg.CreatedAt, arg.UpdatedAt)
	var i PackagingStyle
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPackagingStyleByID = `-- name: GetPackagingStyleByID :one
SELECT id, name, description, active, created_at, updated_at FROM packaging_styles WHERE id = $1
`

func (q *Queries) GetPackagingStyleByID(ctx context.Context, id string) (PackagingStyle, error) {
	row := q.db.QueryRow(ctx, getPackagingStyleByID, id)
	var i PackagingStyle
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPackagingStyleByName = `-- name: GetPackagingStyleByName :one
SELECT id, name, description, active, created_at, updated_at FROM packaging_styles WHERE lower(name) = lower($1)
`

func (q *Queries) GetPackagingStyleByName(ctx context.Context, name string) (PackagingStyle, error) {
	row := q.db.QueryRow(ctx, getPackagingStyleByName, name)
	var i PackagingStyle
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPackagingStyles = `-- name: ListPackagingStyles :many
SELECT id, name, description, active, created_at, updated_at FROM packaging_styles ORDER BY name, id LIMIT $1 OFFSET $2
`

type ListPackagingStylesParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListPackagingStyles(ctx context.Context, arg ListPackagingStylesParams) ([]PackagingStyle, error) {
	rows, err := q.db.Query(ctx, listPackagingStyles, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PackagingStyle{}
	for rows.Next() {
		var i PackagingStyle
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Active,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updatePackagingStyle = `-- name: UpdatePackagingStyle :exec
UPDATE packaging_styles
SET name = $2, description = $3, active = $4, updated_at = $5
WHERE id = $1
`

type UpdatePackagingStyleParams struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Active      bool               `json:"active"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdatePackagingStyle(ctx context.Context, arg UpdatePackagingStyleParams) error {
	_, err := q.db.Exec(ctx, updatePackagingStyle, arg.ID, arg.Name, arg.Description, arg.Active, arg.UpdatedAt)
	return err
}
