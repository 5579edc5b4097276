package repository

import (
	"context"

	"docaudit/internal/model"
)

// DocumentFilter narrows document listings. Zero values are ignored.
type DocumentFilter struct {
	WorkspaceID string
	OwnerID     string
	Status      model.DocumentStatus
	Page        PageQuery
}

// DocumentRepository defines data access for documents.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents matching the filter, newest first.
	List(ctx context.Context, f DocumentFilter) (*PageResult[model.Document], error)

	// UpdateStatus moves a document to status `to`. When `from` is non-empty the
	// update only applies if the current status is one of them; the boolean reports
	// whether a row changed.
	UpdateStatus(ctx context.Context, id string, to model.DocumentStatus, from ...model.DocumentStatus) (bool, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// ParsedDataRepository stores OCR output.
type ParsedDataRepository interface {
	Create(ctx context.Context, p *model.ParsedData) error
	LatestByDocument(ctx context.Context, documentID string) (*model.ParsedData, error)
}

// FinancialRepository stores financial extractions.
type FinancialRepository interface {
	Create(ctx context.Context, f *model.FinancialExtraction) error
	LatestByDocument(ctx context.Context, documentID string) (*model.FinancialExtraction, error)
}
