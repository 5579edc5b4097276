package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	repoMocks "docaudit/internal/repository/mocks"
)

// newTestAudit returns an AuditService whose repository accepts every entry.
func newTestAudit() (AuditService, *repoMocks.MockAuditRepository) {
	mAudit := new(repoMocks.MockAuditRepository)
	mAudit.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewAuditService(mAudit, zap.NewNop()), mAudit
}

// staticRoles is a RoleLookup backed by a map.
type staticRoles map[string][]string

func (s staticRoles) RolesOf(_ context.Context, userID string) ([]string, error) {
	return s[userID], nil
}
