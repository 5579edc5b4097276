package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/database"
	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// WorkspacePostgres stores workspaces and their collaborators.
type WorkspacePostgres struct {
	db *sql.DB
}

func NewWorkspacePostgres(db *sql.DB) *WorkspacePostgres {
	return &WorkspacePostgres{db: db}
}

var _ repository.WorkspaceRepository = (*WorkspacePostgres)(nil)

const workspaceColumns = `id, name, description, owner_id, created_at, updated_at`

const upsertCollaborator = `
	INSERT INTO workspace_collaborations (workspace_id, user_id, role, invited_by, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = EXCLUDED.role
`

func (r *WorkspacePostgres) Create(ctx context.Context, ws *model.Workspace) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `
			INSERT INTO workspaces (` + workspaceColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, q, ws.ID, ws.Name, ws.Description, ws.OwnerID, ws.CreatedAt, ws.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, upsertCollaborator,
			ws.ID, ws.OwnerID, string(model.CollaboratorOwner), ws.OwnerID, ws.CreatedAt,
		)
		return err
	})
}

func scanWorkspace(row rowScanner) (*model.Workspace, error) {
	var w model.Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.Description, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkspacePostgres) FindByID(ctx context.Context, id string) (*model.Workspace, error) {
	const q = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`
	return scanWorkspace(r.db.QueryRowContext(ctx, q, id))
}

func (r *WorkspacePostgres) ListForUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Workspace], error) {
	const qCount = `
		SELECT COUNT(*)
		FROM workspaces w
		JOIN workspace_collaborations c ON c.workspace_id = w.id
		WHERE c.user_id = $1
	`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT w.id, w.name, w.description, w.owner_id, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_collaborations c ON c.workspace_id = w.id
		WHERE c.user_id = $1
		ORDER BY w.created_at DESC, w.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Workspace, 0)
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Workspace]{Items: items, Total: total}, nil
}

func (r *WorkspacePostgres) Update(ctx context.Context, ws *model.Workspace) error {
	const q = `UPDATE workspaces SET name = $1, description = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, q, ws.Name, ws.Description, ws.UpdatedAt, ws.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *WorkspacePostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	return err
}

func (r *WorkspacePostgres) UpsertCollaborator(ctx context.Context, c *model.WorkspaceCollaboration) error {
	_, err := r.db.ExecContext(ctx, upsertCollaborator, c.WorkspaceID, c.UserID, string(c.Role), c.InvitedBy, c.CreatedAt)
	return err
}

func (r *WorkspacePostgres) RemoveCollaborator(ctx context.Context, workspaceID, userID string) error {
	const q = `DELETE FROM workspace_collaborations WHERE workspace_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, q, workspaceID, userID)
	return err
}

const collaboratorColumns = `workspace_id, user_id, role, invited_by, created_at`

func scanCollaborator(row rowScanner) (*model.WorkspaceCollaboration, error) {
	var (
		c    model.WorkspaceCollaboration
		role string
	)
	if err := row.Scan(&c.WorkspaceID, &c.UserID, &role, &c.InvitedBy, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Role = model.CollaboratorRole(role)
	return &c, nil
}

func (r *WorkspacePostgres) FindCollaborator(ctx context.Context, workspaceID, userID string) (*model.WorkspaceCollaboration, error) {
	const q = `SELECT ` + collaboratorColumns + ` FROM workspace_collaborations WHERE workspace_id = $1 AND user_id = $2`
	return scanCollaborator(r.db.QueryRowContext(ctx, q, workspaceID, userID))
}

func (r *WorkspacePostgres) ListCollaborators(ctx context.Context, workspaceID string) ([]model.WorkspaceCollaboration, error) {
	const q = `
		SELECT ` + collaboratorColumns + `
		FROM workspace_collaborations
		WHERE workspace_id = $1
		ORDER BY created_at ASC, user_id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.WorkspaceCollaboration, 0)
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
