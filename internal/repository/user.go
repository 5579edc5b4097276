package repository

import (
	"context"

	"docaudit/internal/model"
)

type UserRepository interface {
	FindProfile(ctx context.Context, id string) (*model.UserProfile, error)
	UpsertProfile(ctx context.Context, p *model.UserProfile) (*model.UserProfile, error)
	ListRoles(ctx context.Context, userID string) ([]model.UserRole, error)
	AddRole(ctx context.Context, r *model.UserRole) error
	RemoveRole(ctx context.Context, userID, role string) error
}
