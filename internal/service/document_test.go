package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docaudit/internal/model"
	"docaudit/internal/repository"
	repoMocks "docaudit/internal/repository/mocks"
	"docaudit/internal/storage"
	storeMocks "docaudit/internal/storage/mocks"
)

// drainingPut consumes the upload body the way a real store would.
func drainingPut(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
	n, _ := io.Copy(io.Discard, r)
	return storage.ObjectInfo{Key: key, Size: n, ContentType: opt.ContentType}
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()
	sum := sha256.Sum256([]byte("hello world"))
	helloSum := hex.EncodeToString(sum[:])

	tests := []struct {
		name       string
		in         func() UploadInput
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, doc *model.Document)
	}{
		{
			name: "happy path",
			in: func() UploadInput {
				return UploadInput{
					Reader: strings.NewReader("hello world"), OriginalFilename: "test.txt",
					ContentType: "text/plain", Size: 11, WorkspaceID: "ws-1", OwnerID: "user-1",
				}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/") && strings.HasSuffix(key, ".txt")
				}), mock.Anything, storage.PutObjectOptions{
					Size:        11,
					ContentType: "text/plain",
					Metadata:    map[string]string{"original-filename": "test.txt"},
				}).Return(drainingPut, nil)

				mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.Status == model.DocumentUploaded &&
						doc.Checksum == helloSum &&
						doc.WorkspaceID == "ws-1" && doc.OwnerID == "user-1" &&
						doc.OriginalFilename == "test.txt" &&
						doc.Size == 11
				})).Return(&model.Document{ID: "gen-id", Checksum: helloSum}, nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "gen-id", doc.ID)
			},
		},
		{
			name: "sniffs content type when client sends octet-stream",
			in: func() UploadInput {
				return UploadInput{
					Reader:           strings.NewReader("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"),
					OriginalFilename: "scan.pdf",
					ContentType:      "application/octet-stream",
				}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "application/pdf" && opt.Size == -1
				})).Return(drainingPut, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.ContentType == "application/pdf" && doc.Size > 0
				})).Return(&model.Document{ID: "gen-id", ContentType: "application/pdf"}, nil)
			},
			check: func(t *testing.T, doc *model.Document) {
				assert.Equal(t, "application/pdf", doc.ContentType)
			},
		},
		{
			name:       "validation error - nil reader",
			in:         func() UploadInput { return UploadInput{OriginalFilename: "test.txt"} },
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrReaderNil,
		},
		{
			name: "storage error",
			in: func() UploadInput {
				return UploadInput{Reader: strings.NewReader("hello"), OriginalFilename: "test.txt", Size: 5}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name: "repository error with successful rollback",
			in: func() UploadInput {
				return UploadInput{Reader: strings.NewReader("hello"), OriginalFilename: "test.txt", Size: 5}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(drainingPut, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name: "repository error with failed rollback",
			in: func() UploadInput {
				return UploadInput{Reader: strings.NewReader("hello"), OriginalFilename: "test.txt", Size: 5}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(drainingPut, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			mWs := new(repoMocks.MockWorkspaceRepository)
			mWs.On("FindByID", ctx, "ws-1").Return(&model.Workspace{ID: "ws-1", OwnerID: "user-1"}, nil).Maybe()
			audit, mAudit := newTestAudit()
			svc := NewDocumentService(mStore, mRepo, mWs, staticRoles{}, audit, time.Minute)

			tt.setupMocks(mStore, mRepo)

			doc, err := svc.Upload(ctx, tt.in())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				mAudit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				require.NotNil(t, doc)
				if tt.check != nil {
					tt.check(t, doc)
				}
				mAudit.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(e *model.AuditEntry) bool {
					return e.Action == ActionDocumentUpload && e.EntityID == doc.ID
				}))
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Upload_WorkspaceAccess(t *testing.T) {
	ctx := context.Background()
	ws := &model.Workspace{ID: "ws-1", OwnerID: "owner-1"}

	tests := []struct {
		name    string
		actor   string
		roles   staticRoles
		setup   func(mWs *repoMocks.MockWorkspaceRepository)
		wantErr error
	}{
		{
			name:  "unknown workspace",
			actor: "owner-1",
			setup: func(mWs *repoMocks.MockWorkspaceRepository) {
				mWs.On("FindByID", ctx, "ws-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:  "not a collaborator",
			actor: "stranger",
			setup: func(mWs *repoMocks.MockWorkspaceRepository) {
				mWs.On("FindByID", ctx, "ws-1").Return(ws, nil)
				mWs.On("FindCollaborator", ctx, "ws-1", "stranger").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "viewer collaborator",
			actor: "viewer-1",
			setup: func(mWs *repoMocks.MockWorkspaceRepository) {
				mWs.On("FindByID", ctx, "ws-1").Return(ws, nil)
				mWs.On("FindCollaborator", ctx, "ws-1", "viewer-1").
					Return(&model.WorkspaceCollaboration{Role: model.CollaboratorViewer}, nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "editor collaborator",
			actor: "editor-1",
			setup: func(mWs *repoMocks.MockWorkspaceRepository) {
				mWs.On("FindByID", ctx, "ws-1").Return(ws, nil)
				mWs.On("FindCollaborator", ctx, "ws-1", "editor-1").
					Return(&model.WorkspaceCollaboration{Role: model.CollaboratorEditor}, nil)
			},
		},
		{
			name:  "admin outside the workspace",
			actor: "admin-1",
			roles: staticRoles{"admin-1": {"admin"}},
			setup: func(mWs *repoMocks.MockWorkspaceRepository) {
				mWs.On("FindByID", ctx, "ws-1").Return(ws, nil)
				mWs.On("FindCollaborator", ctx, "ws-1", "admin-1").Return(nil, sql.ErrNoRows)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			mWs := new(repoMocks.MockWorkspaceRepository)
			audit, _ := newTestAudit()
			svc := NewDocumentService(mStore, mRepo, mWs, tt.roles, audit, time.Minute)
			tt.setup(mWs)

			if tt.wantErr == nil {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(drainingPut, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(&model.Document{ID: "doc-1", WorkspaceID: "ws-1"}, nil)
			}

			doc, err := svc.Upload(ctx, UploadInput{
				Reader: strings.NewReader("hello"), OriginalFilename: "a.txt",
				ContentType: "text/plain", Size: 5, WorkspaceID: "ws-1", OwnerID: tt.actor,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
				mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "doc-1", doc.ID)
			}
			mWs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         DocumentFilterInput
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *DocumentListResult)
	}{
		{
			name: "happy path",
			in:   DocumentFilterInput{Limit: 10, WorkspaceID: "ws-1", Status: "processed"},
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.DocumentFilter{
					WorkspaceID: "ws-1",
					Status:      model.DocumentProcessed,
					Page:        repository.PageQuery{Limit: 10, Offset: 0},
				}).Return(&repository.PageResult[model.Document]{
					Items: []model.Document{{ID: "1"}, {ID: "2"}},
					Total: 2,
				}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Equal(t, 2, len(res.Items))
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name: "pagination boundary - zero limit uses default",
			in:   DocumentFilterInput{Limit: 0, Offset: -1},
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.DocumentFilter{Page: repository.PageQuery{Limit: 10, Offset: 0}}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil)
			},
		},
		{
			name: "pagination boundary - limit is capped",
			in:   DocumentFilterInput{Limit: 1000, Offset: 20},
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.DocumentFilter{Page: repository.PageQuery{Limit: 100, Offset: 20}}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil)
			},
		},
		{
			name:       "unknown status",
			in:         DocumentFilterInput{Status: "archived"},
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrInvalidInput,
		},
		{
			name: "repository error",
			in:   DocumentFilterInput{Limit: 10},
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			audit, _ := newTestAudit()
			svc := NewDocumentService(nil, mRepo, nil, nil, audit, time.Minute)

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.in)

			if tt.wantErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.wantErr, ErrInvalidInput) {
					assert.ErrorIs(t, err, ErrInvalidInput)
				}
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Document{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   "error-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "error-id").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			audit, _ := newTestAudit()
			svc := NewDocumentService(nil, mRepo, nil, nil, audit, time.Minute)

			tt.setupMocks(mRepo)

			doc, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				assert.Equal(t, tt.id, doc.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Document{ID: "valid-id", StoragePath: "path/to/obj"}, nil)
				mStore.On("Delete", ctx, "path/to/obj").Return(nil)
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage delete error keeps the row",
			id:   "storage-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "storage-fail-id").Return(&model.Document{ID: "id", StoragePath: "path"}, nil)
				mStore.On("Delete", ctx, "path").Return(errors.New("storage fail"))
			},
			wantErr: errors.New("delete storage: storage fail"),
		},
		{
			name: "repository delete error",
			id:   "repo-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "repo-fail-id").Return(&model.Document{ID: "id", StoragePath: "path"}, nil)
				mStore.On("Delete", ctx, "path").Return(nil)
				mRepo.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			audit, _ := newTestAudit()
			svc := NewDocumentService(mStore, mRepo, nil, nil, audit, time.Minute)

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id, "user-1")

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			mRepo.AssertNotCalled(t, "Delete", ctx, "storage-fail-id")
		})
	}
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	audit, _ := newTestAudit()
	svc := NewDocumentService(mStore, mRepo, nil, nil, audit, 5*time.Minute)

	mRepo.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", StoragePath: "documents/a.pdf"}, nil)
	mStore.On("PresignGet", ctx, "documents/a.pdf", 5*time.Minute).Return("https://minio/documents/a.pdf?sig", nil)

	url, err := svc.DownloadURL(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "https://minio/documents/a.pdf?sig", url)

	mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
	_, err = svc.DownloadURL(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
