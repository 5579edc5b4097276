package postgres

import (
	"context"
	"database/sql"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// UserPostgres stores user profiles and role grants.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) FindProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	const q = `SELECT id, email, full_name, created_at, updated_at FROM user_profiles WHERE id = $1`
	var p model.UserProfile
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserPostgres) UpsertProfile(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error) {
	const q = `
		INSERT INTO user_profiles (id, email, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, updated_at = EXCLUDED.updated_at
		RETURNING id, email, full_name, created_at, updated_at
	`
	var out model.UserProfile
	if err := r.db.QueryRowContext(ctx, q, p.ID, p.Email, p.FullName, p.CreatedAt, p.UpdatedAt).
		Scan(&out.ID, &out.Email, &out.FullName, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserPostgres) ListRoles(ctx context.Context, userID string) ([]model.UserRole, error) {
	const q = `
		SELECT user_id, role, granted_by, created_at
		FROM user_roles
		WHERE user_id = $1
		ORDER BY role ASC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.UserRole, 0)
	for rows.Next() {
		var ur model.UserRole
		if err := rows.Scan(&ur.UserID, &ur.Role, &ur.GrantedBy, &ur.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, ur)
	}
	return items, rows.Err()
}

func (r *UserPostgres) AddRole(ctx context.Context, ur *model.UserRole) error {
	const q = `
		INSERT INTO user_roles (user_id, role, granted_by, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, ur.UserID, ur.Role, ur.GrantedBy, ur.CreatedAt)
	return err
}

func (r *UserPostgres) RemoveRole(ctx context.Context, userID, role string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, role)
	return err
}
