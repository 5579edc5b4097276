package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docaudit/internal/model"
	"docaudit/internal/repository"
	repoMocks "docaudit/internal/repository/mocks"
)

func TestAuditService_Record_FillsDefaults(t *testing.T) {
	repo := new(repoMocks.MockAuditRepository)
	svc := NewAuditService(repo, zap.NewNop())
	ctx := WithRequestID(context.Background(), "req-42")

	repo.On("Create", ctx, mock.MatchedBy(func(e *model.AuditEntry) bool {
		return e.ID != "" &&
			!e.CreatedAt.IsZero() &&
			e.RequestID == "req-42" &&
			e.Details != nil &&
			e.Action == ActionDocumentUpload
	})).Return(nil)

	svc.Record(ctx, model.AuditEntry{ActorID: "user-1", Action: ActionDocumentUpload, EntityType: "document", EntityID: "doc-1"})
	repo.AssertExpectations(t)
}

func TestAuditService_Record_LogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := new(repoMocks.MockAuditRepository)
	svc := NewAuditService(repo, zap.New(core))

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	svc.Record(context.Background(), model.AuditEntry{Action: ActionRiskAssess, EntityType: "document", EntityID: "doc-1"})

	entries := logs.FilterMessage("audit record failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, ActionRiskAssess, entries[0].ContextMap()["action"])
	assert.Equal(t, "insert failed", entries[0].ContextMap()["error"])
}

func TestAuditService_List(t *testing.T) {
	ctx := context.Background()
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	t.Run("passes the filter through", func(t *testing.T) {
		repo := new(repoMocks.MockAuditRepository)
		svc := NewAuditService(repo, nil)
		repo.On("List", ctx, repository.AuditFilter{
			ActorID: "user-1",
			Action:  ActionDocumentDelete,
			Since:   since,
			Until:   until,
			Page:    repository.PageQuery{Limit: 10, Offset: 0},
		}).Return(&repository.PageResult[model.AuditEntry]{Items: []model.AuditEntry{{ID: "a1"}}, Total: 1}, nil)

		res, err := svc.List(ctx, AuditListInput{ActorID: "user-1", Action: ActionDocumentDelete, Since: since, Until: until})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, "a1", res.Items[0].ID)
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		repo := new(repoMocks.MockAuditRepository)
		svc := NewAuditService(repo, nil)

		_, err := svc.List(ctx, AuditListInput{Since: until, Until: since})
		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}
