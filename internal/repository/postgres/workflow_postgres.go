package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/database"
	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// WorkflowPostgres stores workflow definitions, instances and steps.
type WorkflowPostgres struct {
	db *sql.DB
}

func NewWorkflowPostgres(db *sql.DB) *WorkflowPostgres {
	return &WorkflowPostgres{db: db}
}

var _ repository.WorkflowRepository = (*WorkflowPostgres)(nil)

const workflowColumns = `id, workspace_id, name, description, steps, created_by, created_at`

func scanWorkflow(row rowScanner) (*model.Workflow, error) {
	var (
		w           model.Workflow
		workspaceID sql.NullString
		steps       []byte
	)
	if err := row.Scan(&w.ID, &workspaceID, &w.Name, &w.Description, &steps, &w.CreatedBy, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.WorkspaceID = workspaceID.String
	if err := decodeJSON(steps, &w.Steps); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkflowPostgres) CreateWorkflow(ctx context.Context, w *model.Workflow) error {
	steps, err := encodeJSON(w.Steps)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, q, w.ID, nullable(w.WorkspaceID), w.Name, w.Description, steps, w.CreatedBy, w.CreatedAt)
	return err
}

func (r *WorkflowPostgres) FindWorkflow(ctx context.Context, id string) (*model.Workflow, error) {
	const q = `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`
	return scanWorkflow(r.db.QueryRowContext(ctx, q, id))
}

func (r *WorkflowPostgres) ListWorkflows(ctx context.Context, workspaceID string, pq repository.PageQuery) (*repository.PageResult[model.Workflow], error) {
	b := psql.Select(workflowColumns).From("workflows")
	cb := psql.Select("COUNT(*)").From("workflows")
	if workspaceID != "" {
		b = b.Where("workspace_id = ?", workspaceID)
		cb = cb.Where("workspace_id = ?", workspaceID)
	}

	countQ, countArgs, err := cb.ToSql()
	if err != nil {
		return nil, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := pageArgs(pq.Limit, pq.Offset)
	q, args, err := b.OrderBy("created_at DESC", "id DESC").Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Workflow, 0)
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Workflow]{Items: items, Total: total}, nil
}

const (
	instanceColumns = `id, workflow_id, document_id, status, current_step, started_by, created_at, updated_at, completed_at`
	stepColumns     = `id, instance_id, position, name, approver_role, status, acted_by, comment, acted_at`
)

func (r *WorkflowPostgres) CreateInstance(ctx context.Context, inst *model.WorkflowInstance) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qi = `
			INSERT INTO workflow_instances (` + instanceColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		if _, err := tx.ExecContext(ctx, qi,
			inst.ID, inst.WorkflowID, inst.DocumentID, string(inst.Status), inst.CurrentStep,
			inst.StartedBy, inst.CreatedAt, inst.UpdatedAt, nullTime(inst.CompletedAt),
		); err != nil {
			return err
		}

		const qs = `
			INSERT INTO workflow_steps (` + stepColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		for _, s := range inst.Steps {
			if _, err := tx.ExecContext(ctx, qs,
				s.ID, s.InstanceID, s.Position, s.Name, s.ApproverRole, string(s.Status),
				s.ActedBy, s.Comment, nullTime(s.ActedAt),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanInstance(row rowScanner) (*model.WorkflowInstance, error) {
	var (
		inst        model.WorkflowInstance
		status      string
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&inst.ID, &inst.WorkflowID, &inst.DocumentID, &status, &inst.CurrentStep,
		&inst.StartedBy, &inst.CreatedAt, &inst.UpdatedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	inst.Status = model.InstanceStatus(status)
	inst.CompletedAt = timePtr(completedAt)
	return &inst, nil
}

func (r *WorkflowPostgres) FindInstance(ctx context.Context, id string) (*model.WorkflowInstance, error) {
	const qi = `SELECT ` + instanceColumns + ` FROM workflow_instances WHERE id = $1`
	inst, err := scanInstance(r.db.QueryRowContext(ctx, qi, id))
	if err != nil {
		return nil, err
	}

	const qs = `SELECT ` + stepColumns + ` FROM workflow_steps WHERE instance_id = $1 ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, qs, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inst.Steps = make([]model.WorkflowStep, 0)
	for rows.Next() {
		var (
			s       model.WorkflowStep
			status  string
			actedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.InstanceID, &s.Position, &s.Name, &s.ApproverRole, &status, &s.ActedBy, &s.Comment, &actedAt); err != nil {
			return nil, err
		}
		s.Status = model.StepStatus(status)
		s.ActedAt = timePtr(actedAt)
		inst.Steps = append(inst.Steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *WorkflowPostgres) ListInstances(ctx context.Context, documentID string) ([]model.WorkflowInstance, error) {
	const q = `
		SELECT ` + instanceColumns + `
		FROM workflow_instances
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.WorkflowInstance, 0)
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inst)
	}
	return items, rows.Err()
}

func (r *WorkflowPostgres) SaveTransition(ctx context.Context, inst *model.WorkflowInstance, prevStep int, steps []model.WorkflowStep) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		const qi = `
			UPDATE workflow_instances
			SET status = $1, current_step = $2, updated_at = $3, completed_at = $4
			WHERE id = $5 AND status = 'in_progress' AND current_step = $6
		`
		res, err := tx.ExecContext(ctx, qi,
			string(inst.Status), inst.CurrentStep, inst.UpdatedAt, nullTime(inst.CompletedAt), inst.ID, prevStep,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrStaleState
		}

		const qs = `
			UPDATE workflow_steps
			SET status = $1, acted_by = $2, comment = $3, acted_at = $4
			WHERE id = $5
		`
		for _, s := range steps {
			if _, err := tx.ExecContext(ctx, qs, string(s.Status), s.ActedBy, s.Comment, nullTime(s.ActedAt), s.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
