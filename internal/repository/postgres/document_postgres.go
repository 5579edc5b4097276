package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

const documentColumns = `id, workspace_id, owner_id, filename, original_filename, storage_path, size, content_type, checksum, status, created_at, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d           model.Document
		workspaceID sql.NullString
		status      string
	)
	if err := row.Scan(
		&d.ID,
		&workspaceID,
		&d.OwnerID,
		&d.Filename,
		&d.OriginalFilename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.Checksum,
		&status,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.WorkspaceID = workspaceID.String
	d.Status = model.DocumentStatus(status)
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		nullable(doc.WorkspaceID),
		doc.OwnerID,
		doc.Filename,
		doc.OriginalFilename,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.Checksum,
		string(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	where := sq.Eq{}
	if f.WorkspaceID != "" {
		where["workspace_id"] = f.WorkspaceID
	}
	if f.OwnerID != "" {
		where["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		where["status"] = string(f.Status)
	}

	countQ, countArgs, err := psql.Select("COUNT(*)").From("documents").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := pageArgs(f.Page.Limit, f.Page.Offset)
	listQ, listArgs, err := psql.Select(documentColumns).
		From("documents").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, listQ, listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// UpdateStatus changes the status, optionally guarded on the current status.
func (r *DocumentPostgres) UpdateStatus(ctx context.Context, id string, to model.DocumentStatus, from ...model.DocumentStatus) (bool, error) {
	b := psql.Update("documents").
		Set("status", string(to)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})
	if len(from) > 0 {
		allowed := make([]string, len(from))
		for i, s := range from {
			allowed[i] = string(s)
		}
		b = b.Where(sq.Eq{"status": allowed})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
