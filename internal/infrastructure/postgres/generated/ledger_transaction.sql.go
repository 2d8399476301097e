package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const acquireCodeLock = `-- name: AcquireCodeLock :exec
SELECT pg_advisory_xact_lock(hashtext($1))
`

func (q *Queries) AcquireCodeLock(ctx context.Context, dayPrefix string) error {
	_, err := q.db.Exec(ctx, acquireCodeLock, dayPrefix)
	return err
}

const countTransactionsByItem = `-- name: CountTransactionsByItem :one
SELECT COUNT(*) FROM ledger_transactions WHERE item_id = $1
`

func (q *Queries) CountTransactionsByItem(ctx context.Context, itemID string) (int64, error) {
	row := q.db.QueryRow(ctx, countTransactionsByItem, itemID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createLedgerTransaction = `-- name: CreateLedgerTransaction :one
INSERT INTO ledger_transactions (id, code, internal_ref, external_ref, kind, item_id, direction, inbound, outbound, count, stakeholder_id, packaging_style_id, date, comment, quantity_balance, count_balance, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING id, code, internal_ref, external_ref, kind, item_id, direction, inbound, outbound, count, stakeholder_id, packaging_style_id, date, comment, quantity_balance, count_balance, created_by, created_at
`

type CreateLedgerTransactionParams struct {
	ID               string             `json:"id"`
	Code             string             `json:"code"`
	InternalRef      string             `json:"internal_ref"`
	ExternalRef      string             `json:"external_ref"`
	Kind             string             `json:"kind"`
	ItemID           string             `json:"item_id"`
	Direction        string             `json:"direction"`
	Inbound          pgtype.Numeric     `json:"inbound"`
	Outbound         pgtype.Numeric     `json:"outbound"`
	Count            int64              `json:"count"`
	StakeholderID    pgtype.Text        `json:"stakeholder_id"`
	PackagingStyleID pgtype.Text        `json:"packaging_style_id"`
	Date             pgtype.Timestamptz `json:"date"`
	Comment          string             `json:"comment"`
	QuantityBalance  pgtype.Numeric     `json:"quantity_balance"`
	CountBalance     int64              `json:"count_balance"`
	CreatedBy        string             `json:"created_by"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLedgerTransaction(ctx context.Context, arg CreateLedgerTransactionParams) (LedgerTransaction, error) {
	row := q.db.QueryRow(ctx, createLedgerTransaction, arg.ID, arg.Code, arg.InternalRef, arg.ExternalRef, arg.Kind, arg.ItemID, arg.Direction, arg.Inbound, arg.Outbound, arg.Count, arg.StakeholderID, arg.PackagingStyleID, arg.Date, arg.Comment, arg.QuantityBalance, arg.CountBalance, arg.CreatedBy, arg.CreatedAt)
	var i LedgerTransaction
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.InternalRef,
		&i.ExternalRef,
		&i.Kind,
		&i.ItemID,
		&i.Direction,
		&i.Inbound,
		&i.Outbound,
		&i.Count,
		&i.StakeholderID,
		&i.PackagingStyleID,
		&i.Date,
		&i.Comment,
		&i.QuantityBalance,
		&i.CountBalance,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getLastCode = `-- name: GetLastCode :one
SELECT COALESCE(MAX(code), '')::text FROM ledger_transactions WHERE code LIKE $1 || '%'
`

func (q *Queries) GetLastCode(ctx context.Context, dayPrefix string) (string, error) {
	row := q.db.QueryRow(ctx, getLastCode, dayPrefix)
	var value string
	err := row.Scan(&value)
	return value, err
}

const getLatestTransactionByItem = `-- name: GetLatestTransactionByItem :one
SELECT id, code, internal_ref, external_ref, kind, item_id, direction, inbound, outbound, count, stakeholder_id, packaging_style_id, date, comment, quantity_balance, count_balance, created_by, created_at FROM ledger_transactions
WHERE item_id = $1
ORDER BY date DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestTransactionByItem(ctx context.Context, itemID string) (LedgerTransaction, error) {
	row := q.db.QueryRow(ctx, getLatestTransactionByItem, itemID)
	var i LedgerTransaction
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.InternalRef,
		&i.ExternalRef,
		&i.Kind,
		&i.ItemID,
		&i.Direction,
		&i.Inbound,
		&i.Outbound,
		&i.Count,
		&i.StakeholderID,
		&i.PackagingStyleID,
		&i.Date,
		&i.Comment,
		&i.QuantityBalance,
		&i.CountBalance,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getTransactionByID = `-- name: GetTransactionByID :one
SELECT id, code, internal_ref, external_ref, kind, item_id, direction, inbound, outbound, count, stakeholder_id, packaging_style_id, date, comment, quantity_balance, count_balance, created_by, created_at FROM ledger_transactions WHERE id = $1
`

func (q *Queries) GetTransactionByID(ctx context.Context, id string) (LedgerTransaction, error) {
	row := q.db.QueryRow(ctx, getTransactionByID, id)
	var i LedgerTransaction
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.InternalRef,
		&i.ExternalRef,
		&i.Kind,
		&i.ItemID,
		&i.Direction,
		&i.Inbound,
		&i.Outbound,
		&i.Count,
		&i.StakeholderID,
		&i.PackagingStyleID,
		&i.Date,
		&i.Comment,
		&i.QuantityBalance,
		&i.CountBalance,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactionHistory = `-- name: ListTransactionHistory :many
SELECT id, code, internal_ref, external_ref, kind, item_id, direction, inbound, outbound, count, stakeholder_id, packaging_style_id, date, comment, quantity_balance, count_balance, created_by, created_at FROM ledger_transactions
WHERE item_id = $1
ORDER BY date ASC, id ASC
`

func (q *Queries) ListTransactionHistory(ctx context.Context, itemID string) ([]LedgerTransaction, error) {
	rows, err := q.db.Query(ctx, listTransactionHistory, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LedgerTransaction{}
	for rows.Next() {
		var i LedgerTransaction
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.InternalRef,
			&i.ExternalRef,
			&i.Kind,
			&i.ItemID,
			&i.Direction,
			&i.Inbound,
			&i.Outbound,
			&i.Count,
			&i.StakeholderID,
			&i.PackagingStyleID,
			&i.Date,
			&i.Comment,
			&i.QuantityBalance,
			&i.CountBalance,
			&i.CreatedBy,
			&i.CreatedAt,
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

const listTransactionsByItem = `-- name: ListTransactionsByItem :many
SELECT id, code, internal_ref, external_ref, kind, item_id, direction, inbound, outbound, count, stakeholder_id, packaging_style_id, date, comment, quantity_balance, count_balance, created_by, created_at FROM ledger_transactions
WHERE item_id = $1
ORDER BY date DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListTransactionsByItemParams struct {
	ItemID string `json:"item_id"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (q *Queries) ListTransactionsByItem(ctx context.Context, arg ListTransactionsByItemParams) ([]LedgerTransaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByItem, arg.ItemID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LedgerTransaction{}
	for rows.Next() {
		var i LedgerTransaction
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.InternalRef,
			&i.ExternalRef,
			&i.Kind,
			&i.ItemID,
			&i.Direction,
			&i.Inbound,
			&i.Outbound,
			&i.Count,
			&i.StakeholderID,
			&i.PackagingStyleID,
			&i.Date,
			&i.Comment,
			&i.QuantityBalance,
			&i.CountBalance,
			&i.CreatedBy,
			&i.CreatedAt,
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
