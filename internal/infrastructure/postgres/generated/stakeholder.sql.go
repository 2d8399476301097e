package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createStakeholder = `-- name: CreateStakeholder :one
INSERT INTO stakeholders (id, name, kind, phone, address, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, name, kind, phone, address, active, created_at, updated_at
`

type CreateStakeholderParams struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Active    bool               `json:"active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateStakeholder(ctx context.Context, arg CreateStakeholderParams) (Stakeholder, error) {
	row := q.db.QueryRow(ctx, createStakeholder, arg.ID, arg.Name, arg.Kind, arg.Phone, arg.Address, arg.Active, arg.CreatedAt, arg.UpdatedAt)
	var i Stakeholder
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Kind,
		&i.Phone,
		&i.Address,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getStakeholderByID = `-- name: GetStakeholderByID :one
SELECT id, name, kind, phone, address, active, created_at, updated_at FROM stakeholders WHERE id = $1
`

func (q *Queries) GetStakeholderByID(ctx context.Context, id string) (Stakeholder, error) {
	row := q.db.QueryRow(ctx, getStakeholderByID, id)
	var i Stakeholder
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Kind,
		&i.Phone,
		&i.Address,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getStakeholderByName = `-- name: GetStakeholderByName :one
SELECT id, name, kind, phone, address, active, created_at, updated_at FROM stakeholders WHERE lower(name) = lower($1)
`

func (q *Queries) GetStakeholderByName(ctx context.Context, name string) (Stakeholder, error) {
	row := q.db.QueryRow(ctx, getStakeholderByName, name)
	var i Stakeholder
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Kind,
		&i.Phone,
		&i.Address,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listStakeholders = `-- name: ListStakeholders :many
SELECT id, name, kind, phone, address, active, created_at, updated_at FROM stakeholders ORDER BY name, id LIMIT $1 OFFSET $2
`

type ListStakeholdersParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListStakeholders(ctx context.Context, arg ListStakeholdersParams) ([]Stakeholder, error) {
	rows, err := q.db.Query(ctx, listStakeholders, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Stakeholder{}
	for rows.Next() {
		var i Stakeholder
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Kind,
			&i.Phone,
			&i.Address,
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

const updateStakeholder = `-- name: UpdateStakeholder :exec
UPDATE stakeholders
SET name = $2, kind = $3, phone = $4, address = $5, active = $6, updated_at = $7
WHERE id = $1
`

type UpdateStakeholderParams struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Active    bool               `json:"active"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateStakeholder(ctx context.Context, arg UpdateStakeholderParams) error {
	_, err := q.db.Exec(ctx, updateStakeholder, arg.ID, arg.Name, arg.Kind, arg.Phone, arg.Address, arg.Active, arg.UpdatedAt)
	return err
}
