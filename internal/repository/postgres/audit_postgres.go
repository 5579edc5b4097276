package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// AuditPostgres appends to and reads from audit_trail.
type AuditPostgres struct {
	db *sql.DB
}

func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

const auditColumns = `id, actor_id, action, entity_type, entity_id, workspace_id, details, request_id, created_at`

func (r *AuditPostgres) Create(ctx context.Context, e *model.AuditEntry) error {
	details, err := encodeJSON(e.Details)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO audit_trail (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, q,
		e.ID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.WorkspaceID, details, e.RequestID, e.CreatedAt,
	)
	return err
}

func (r *AuditPostgres) List(ctx context.Context, f repository.AuditFilter) (*repository.PageResult[model.AuditEntry], error) {
	where := sq.And{}
	eq := sq.Eq{}
	if f.ActorID != "" {
		eq["actor_id"] = f.ActorID
	}
	if f.Action != "" {
		eq["action"] = f.Action
	}
	if f.EntityType != "" {
		eq["entity_type"] = f.EntityType
	}
	if f.EntityID != "" {
		eq["entity_id"] = f.EntityID
	}
	if len(eq) > 0 {
		where = append(where, eq)
	}
	if !f.Since.IsZero() {
		where = append(where, sq.GtOrEq{"created_at": f.Since})
	}
	if !f.Until.IsZero() {
		where = append(where, sq.Lt{"created_at": f.Until})
	}

	countQ, countArgs, err := psql.Select("COUNT(*)").From("audit_trail").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := pageArgs(f.Page.Limit, f.Page.Offset)
	q, args, err := psql.Select(auditColumns).
		From("audit_trail").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditEntry, 0)
	for rows.Next() {
		var (
			e       model.AuditEntry
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.WorkspaceID, &details, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := decodeJSON(details, &e.Details); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.AuditEntry]{Items: items, Total: total}, nil
}
