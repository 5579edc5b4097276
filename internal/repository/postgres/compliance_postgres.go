package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// CompliancePostgres stores frameworks and checks.
type CompliancePostgres struct {
	db *sql.DB
}

func NewCompliancePostgres(db *sql.DB) *CompliancePostgres {
	return &CompliancePostgres{db: db}
}

var _ repository.ComplianceRepository = (*CompliancePostgres)(nil)

const frameworkColumns = `id, name, description, version, rules, created_by, created_at`

func scanFramework(row rowScanner) (*model.ComplianceFramework, error) {
	var (
		f     model.ComplianceFramework
		rules []byte
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Version, &rules, &f.CreatedBy, &f.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(rules, &f.Rules); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *CompliancePostgres) CreateFramework(ctx context.Context, f *model.ComplianceFramework) error {
	rules, err := encodeJSON(f.Rules)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO compliance_frameworks (` + frameworkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, q, f.ID, f.Name, f.Description, f.Version, rules, f.CreatedBy, f.CreatedAt)
	return err
}

func (r *CompliancePostgres) FindFramework(ctx context.Context, id string) (*model.ComplianceFramework, error) {
	const q = `SELECT ` + frameworkColumns + ` FROM compliance_frameworks WHERE id = $1`
	return scanFramework(r.db.QueryRowContext(ctx, q, id))
}

func (r *CompliancePostgres) ListFrameworks(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ComplianceFramework], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM compliance_frameworks`).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + frameworkColumns + `
		FROM compliance_frameworks
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ComplianceFramework, 0)
	for rows.Next() {
		f, err := scanFramework(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.ComplianceFramework]{Items: items, Total: total}, nil
}

func (r *CompliancePostgres) DeleteFramework(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM compliance_frameworks WHERE id = $1`, id)
	return err
}

const checkColumns = `id, document_id, framework_id, status, score, findings, checked_by, created_at`

func (r *CompliancePostgres) CreateCheck(ctx context.Context, c *model.ComplianceCheck) error {
	findings, err := encodeJSON(c.Findings)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO compliance_checks (` + checkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, q,
		c.ID, c.DocumentID, c.FrameworkID, string(c.Status), c.Score, findings, c.CheckedBy, c.CreatedAt,
	)
	return err
}

func (r *CompliancePostgres) ListChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error) {
	const q = `
		SELECT ` + checkColumns + `
		FROM compliance_checks
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.queryChecks(ctx, q, documentID)
}

func (r *CompliancePostgres) LatestChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error) {
	const q = `
		SELECT DISTINCT ON (framework_id) ` + checkColumns + `
		FROM compliance_checks
		WHERE document_id = $1
		ORDER BY framework_id, created_at DESC
	`
	return r.queryChecks(ctx, q, documentID)
}

func (r *CompliancePostgres) queryChecks(ctx context.Context, q string, args ...any) ([]model.ComplianceCheck, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ComplianceCheck, 0)
	for rows.Next() {
		var (
			c        model.ComplianceCheck
			status   string
			findings []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.FrameworkID, &status, &c.Score, &findings, &c.CheckedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = model.CheckStatus(status)
		if err := decodeJSON(findings, &c.Findings); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// RiskPostgres stores risk assessments.
type RiskPostgres struct {
	db *sql.DB
}

func NewRiskPostgres(db *sql.DB) *RiskPostgres {
	return &RiskPostgres{db: db}
}

var _ repository.RiskRepository = (*RiskPostgres)(nil)

func (r *RiskPostgres) Create(ctx context.Context, a *model.RiskAssessment) error {
	factors, err := encodeJSON(a.Factors)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO risk_assessments (id, document_id, score, level, factors, assessed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, q, a.ID, a.DocumentID, a.Score, string(a.Level), factors, a.AssessedBy, a.CreatedAt)
	return err
}

func (r *RiskPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.RiskAssessment, error) {
	const q = `
		SELECT id, document_id, score, level, factors, assessed_by, created_at
		FROM risk_assessments
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RiskAssessment, 0)
	for rows.Next() {
		var (
			a       model.RiskAssessment
			level   string
			factors []byte
		)
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Score, &level, &factors, &a.AssessedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Level = model.RiskLevel(level)
		if err := decodeJSON(factors, &a.Factors); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
