package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

func TestAuditPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	e := &model.AuditEntry{
		ID: "a-1", ActorID: "user-1", Action: "document.upload", EntityType: "document", EntityID: "doc-1",
		Details: map[string]any{"size": 12}, RequestID: "req-1", CreatedAt: now,
	}
	mock.ExpectExec("INSERT INTO audit_trail").
		WithArgs("a-1", "user-1", "document.upload", "document", "doc-1", "", `{"size":12}`, "req-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewAuditPostgres(db).Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuditPostgres(db)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "actor_id", "action", "entity_type", "entity_id", "workspace_id", "details", "request_id", "created_at"}

	t.Run("filtered", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_trail WHERE (entity_id = $1 AND entity_type = $2 AND created_at >= $3)")).
			WithArgs("doc-1", "document", since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM audit_trail WHERE (entity_id = $1 AND entity_type = $2 AND created_at >= $3) ORDER BY created_at DESC, id DESC LIMIT 50 OFFSET 0")).
			WithArgs("doc-1", "document", since).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("a-1", "user-1", "document.upload", "document", "doc-1", "", []byte(`{"size":12}`), "req-1", since))

		page, err := repo.List(context.Background(), repository.AuditFilter{
			EntityType: "document",
			EntityID:   "doc-1",
			Since:      since,
			Page:       repository.PageQuery{Limit: 50},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, float64(12), page.Items[0].Details["size"])
	})

	t.Run("unfiltered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_trail`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT (.+) FROM audit_trail`).
			WillReturnRows(sqlmock.NewRows(cols))

		page, err := repo.List(context.Background(), repository.AuditFilter{Page: repository.PageQuery{Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		assert.Empty(t, page.Items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
