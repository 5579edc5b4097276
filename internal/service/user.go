package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"docaudit/internal/model"
	"docaudit/internal/rbac"
	"docaudit/internal/repository"
)

// UpsertProfileInput is the caller-editable part of a profile.
type UpsertProfileInput struct {
	Email    string `validate:"omitempty,email,max=320"`
	FullName string `validate:"max=200"`
}

// UserService manages profiles and role grants and answers permission checks.
type UserService interface {
	GetProfile(ctx context.Context, id string) (*model.UserProfile, error)
	UpsertProfile(ctx context.Context, id string, in UpsertProfileInput) (*model.UserProfile, error)
	ListRoles(ctx context.Context, userID string) ([]model.UserRole, error)
	AssignRole(ctx context.Context, userID, role, actorID string) (*model.UserRole, error)
	RevokeRole(ctx context.Context, userID, role, actorID string) error
	HasPermission(ctx context.Context, userID string, p rbac.Permission) (bool, error)
	RolesOf(ctx context.Context, userID string) ([]string, error)
}

type userService struct {
	repo      repository.UserRepository
	audit     AuditService
	cache     *expirable.LRU[string, []string]
	bootstrap map[string]struct{}
}

// NewUserService caches role lookups for up to size users, each for ttl.
// Users listed in bootstrapAdmins resolve to admin whatever their stored grants.
func NewUserService(repo repository.UserRepository, audit AuditService, size int, ttl time.Duration, bootstrapAdmins ...string) UserService {
	if size <= 0 {
		size = 1024
	}
	bootstrap := make(map[string]struct{}, len(bootstrapAdmins))
	for _, id := range bootstrapAdmins {
		bootstrap[id] = struct{}{}
	}
	return &userService{
		repo:      repo,
		audit:     audit,
		cache:     expirable.NewLRU[string, []string](size, nil, ttl),
		bootstrap: bootstrap,
	}
}

func (s *userService) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindProfile(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *userService) UpsertProfile(ctx context.Context, id string, in UpsertProfileInput) (*model.UserProfile, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p, err := s.repo.UpsertProfile(ctx, &model.UserProfile{
		ID:        id,
		Email:     in.Email,
		FullName:  in.FullName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

func (s *userService) ListRoles(ctx context.Context, userID string) ([]model.UserRole, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListRoles(ctx, userID)
}

func (s *userService) AssignRole(ctx context.Context, userID, role, actorID string) (*model.UserRole, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	role = rbac.Normalize(role)
	if !rbac.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	ur := &model.UserRole{UserID: userID, Role: role, GrantedBy: actorID, CreatedAt: time.Now().UTC()}
	if err := s.repo.AddRole(ctx, ur); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	s.cache.Remove(userID)
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    actorID,
		Action:     ActionRoleAssign,
		EntityType: "user",
		EntityID:   userID,
		Details:    map[string]any{"role": role},
	})
	return ur, nil
}

func (s *userService) RevokeRole(ctx context.Context, userID, role, actorID string) error {
	if userID == "" {
		return ErrIDRequired
	}
	role = rbac.Normalize(role)
	if !rbac.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if err := s.repo.RemoveRole(ctx, userID, role); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	s.cache.Remove(userID)
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    actorID,
		Action:     ActionRoleRevoke,
		EntityType: "user",
		EntityID:   userID,
		Details:    map[string]any{"role": role},
	})
	return nil
}

func (s *userService) HasPermission(ctx context.Context, userID string, p rbac.Permission) (bool, error) {
	roles, err := s.RolesOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return rbac.AnyCan(roles, p), nil
}

// RolesOf returns the user's role names, served from the cache when fresh.
func (s *userService) RolesOf(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	if roles, ok := s.cache.Get(userID); ok {
		return roles, nil
	}
	grants, err := s.repo.ListRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	roles := make([]string, 0, len(grants)+1)
	isAdmin := false
	for _, g := range grants {
		r := rbac.Normalize(g.Role)
		isAdmin = isAdmin || r == rbac.RoleAdmin
		roles = append(roles, r)
	}
	if _, ok := s.bootstrap[userID]; ok && !isAdmin {
		roles = append(roles, rbac.RoleAdmin)
	}
	s.cache.Add(userID, roles)
	return roles, nil
}
