package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countItemChildren = `-- name: CountItemChildren :one
SELECT COUNT(*) FROM items WHERE origin_id = $1
`

func (q *Queries) CountItemChildren(ctx context.Context, origin_id string) (int64, error) {
	row := q.db.QueryRow(ctx, countItemChildren, origin_id)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createItem = `-- name: CreateItem :one
INSERT INTO items (id, kind, name, active, origin_id, comment, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, kind, name, active, origin_id, comment, created_by, created_at, updated_at
`

type CreateItemParams struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Name      string             `json:"name"`
	Active    bool               `json:"active"`
	OriginID  pgtype.Text        `json:"origin_id"`
	Comment   string             `json:"comment"`
	CreatedBy string             `json:"created_by"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (Item, error) {
	row := q.db.QueryRow(ctx, createItem, arg.ID, arg.Kind, arg.Name, arg.Active, arg.OriginID, arg.Comment, arg.CreatedBy, arg.CreatedAt, arg.UpdatedAt)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Name,
		&i.Active,
		&i.OriginID,
		&i.Comment,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteItem = `-- name: DeleteItem :exec
DELETE FROM items WHERE id = $1
`

func (q *Queries) DeleteItem(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteItem, id)
	return err
}

const getItemByID = `-- name: GetItemByID :one
SELECT id, kind, name, active, origin_id, comment, created_by, created_at, updated_at FROM items WHERE id = $1
`

func (q *Queries) GetItemByID(ctx context.Context, id string) (Item, error) {
	row := q.db.QueryRow(ctx, getItemByID, id)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Name,
		&i.Active,
		&i.OriginID,
		&i.Comment,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getItemByIDForUpdate = `-- name: GetItemByIDForUpdate :one
SELECT id, kind, name, active, origin_id, comment, created_by, created_at, updated_at FROM items WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetItemByIDForUpdate(ctx context.Context, id string) (Item, error) {
	row := q.db.QueryRow(ctx, getItemByIDForUpdate, id)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Name,
		&i.Active,
		&i.OriginID,
		&i.Comment,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getItemByName = `-- name: GetItemByName :one
SELECT id, kind, name, active, origin_id, comment, created_by, created_at, updated_at FROM items WHERE kind = $1 AND lower(name) = lower($2)
`

type GetItemByNameParams struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (q *Queries) GetItemByName(ctx context.Context, arg GetItemByNameParams) (Item, error) {
	row := q.db.QueryRow(ctx, getItemByName, arg.Kind, arg.Name)
	var i Item
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Name,
		&i.Active,
		&i.OriginID,
		&i.Comment,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listItems = `-- name: ListItems :many
SELECT id, kind, name, active, origin_id, comment, created_by, created_at, updated_at FROM items
WHERE ($1::text = '' OR kind = $1::text)
  AND ($2::boolean IS NULL OR active = $2::boolean)
ORDER BY kind, name, id
LIMIT $3 OFFSET $4
`

type ListItemsParams struct {
	Kind   string      `json:"kind"`
	Active pgtype.Bool `json:"active"`
	Limit  int32       `json:"limit"`
	Offset int32       `json:"offset"`
}

func (q *Queries) ListItems(ctx context.Context, arg ListItemsParams) ([]Item, error) {
	rows, err := q.db.Query(ctx, listItems, arg.Kind, arg.Active, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var i Item
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Name,
			&i.Active,
			&i.OriginID,
			&i.Comment,
			&i.CreatedBy,
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

const updateItem = `-- name: UpdateItem :exec
UPDATE items
SET name = $2, active = $3, origin_id = $4, comment = $5, updated_at = $6
WHERE id = $1
`

type UpdateItemParams struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Active    bool               `json:"active"`
	OriginID  pgtype.Text        `json:"origin_id"`
	Comment   string             `json:"comment"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateItem(ctx context.Context, arg UpdateItemParams) error {
	_, err := q.db.Exec(ctx, updateItem, arg.ID, arg.Name, arg.Active, arg.OriginID, arg.Comment, arg.UpdatedAt)
	return err
}
