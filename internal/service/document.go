package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docaudit/internal/model"
	"docaudit/internal/repository"
	"docaudit/internal/storage"
)

// sniffLen is how much of an upload is inspected to detect its content type.
const sniffLen = 512

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// UploadInput carries an incoming file and who it belongs to.
type UploadInput struct {
	Reader           io.Reader
	OriginalFilename string
	ContentType      string
	Size             int64
	WorkspaceID      string
	OwnerID          string
}

// DocumentFilterInput narrows a document listing.
type DocumentFilterInput struct {
	WorkspaceID string
	OwnerID     string
	Status      string
	Limit       int
	Offset      int
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload streams the content to object storage, saves metadata to DB, and rolls back storage if DB save fails.
	// The stored filename is a UUID plus the original extension.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, f DocumentFilterInput) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id, actorID string) error

	// DownloadURL returns a presigned GET URL for the document bytes.
	DownloadURL(ctx context.Context, id string) (string, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store         storage.Storage
	repo          repository.DocumentRepository
	workspaces    repository.WorkspaceRepository
	roles         RoleLookup
	audit         AuditService
	presignExpiry time.Duration
}

// NewDocumentService constructs a new DocumentService. Uploads into a workspace
// are checked against workspaces and roles.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, workspaces repository.WorkspaceRepository, roles RoleLookup, audit AuditService, presignExpiry time.Duration) DocumentService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &documentService{
		store:         store,
		repo:          repo,
		workspaces:    workspaces,
		roles:         roles,
		audit:         audit,
		presignExpiry: presignExpiry,
	}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.WorkspaceID != "" {
		if err := s.checkWorkspace(ctx, in.WorkspaceID, in.OwnerID); err != nil {
			return nil, err
		}
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = mimetype.Detect(head).String()
	}

	ext := filepath.Ext(in.OriginalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	size := in.Size
	if size <= 0 {
		size = -1
	}
	hasher := sha256.New()
	body := io.TeeReader(io.MultiReader(bytes.NewReader(head), in.Reader), hasher)

	objInfo, err := s.store.Put(ctx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.OriginalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:               uuid.New().String(),
		WorkspaceID:      in.WorkspaceID,
		OwnerID:          in.OwnerID,
		Filename:         genName,
		OriginalFilename: in.OriginalFilename,
		StoragePath:      objInfo.Key,
		Size:             objInfo.Size,
		ContentType:      contentType,
		Checksum:         hex.EncodeToString(hasher.Sum(nil)),
		Status:           model.DocumentUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if doc.Size <= 0 && in.Size > 0 {
		doc.Size = in.Size
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     in.OwnerID,
		Action:      ActionDocumentUpload,
		EntityType:  "document",
		EntityID:    stored.ID,
		WorkspaceID: stored.WorkspaceID,
		Details: map[string]any{
			"filename":     in.OriginalFilename,
			"size":         stored.Size,
			"content_type": stored.ContentType,
			"checksum":     stored.Checksum,
		},
	})
	return stored, nil
}

// checkWorkspace requires the workspace to exist and the uploader to be allowed
// to write into it.
func (s *documentService) checkWorkspace(ctx context.Context, workspaceID, actorID string) error {
	ws, err := s.workspaces.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: workspace %s does not exist", ErrInvalidInput, workspaceID)
		}
		return fmt.Errorf("find workspace: %w", err)
	}
	return authorizeWorkspace(ctx, s.workspaces, s.roles, ws, actorID, model.CollaboratorOwner, model.CollaboratorEditor)
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, f DocumentFilterInput) (*DocumentListResult, error) {
	status := model.DocumentStatus(f.Status)
	switch status {
	case "", model.DocumentUploaded, model.DocumentProcessing, model.DocumentProcessed, model.DocumentFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}

	limit, offset := normalizePage(f.Limit, f.Offset)
	res, err := s.repo.List(ctx, repository.DocumentFilter{
		WorkspaceID: f.WorkspaceID,
		OwnerID:     f.OwnerID,
		Status:      status,
		Page:        repository.PageQuery{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id, actorID string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Storage goes first; if it fails the row still points at the object.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionDocumentDelete,
		EntityType:  "document",
		EntityID:    id,
		WorkspaceID: doc.WorkspaceID,
		Details:     map[string]any{"storage_path": doc.StoragePath},
	})
	return nil
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, doc.StoragePath, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}
