package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docaudit/internal/model"
	"docaudit/internal/ocr"
	"docaudit/internal/parser"
	"docaudit/internal/repository"
	"docaudit/internal/storage"
)

// ProcessResult is what a successful extraction produced.
type ProcessResult struct {
	Document  *model.Document            `json:"document"`
	Parsed    *model.ParsedData          `json:"parsed_data"`
	Financial *model.FinancialExtraction `json:"financial"`
}

// ProcessingService runs text extraction and parsing over stored documents.
type ProcessingService interface {
	Process(ctx context.Context, documentID, actorID string) (*ProcessResult, error)
	GetParsed(ctx context.Context, documentID string) (*model.ParsedData, error)
	GetFinancial(ctx context.Context, documentID string) (*model.FinancialExtraction, error)
}

type processingService struct {
	docs      repository.DocumentRepository
	parsed    repository.ParsedDataRepository
	financial repository.FinancialRepository
	store     storage.Storage
	extractor ocr.Extractor
	audit     AuditService
	metrics   *Metrics
	log       *zap.Logger
	maxBytes  int64
}

// ProcessingDeps groups the collaborators of NewProcessingService.
type ProcessingDeps struct {
	Documents repository.DocumentRepository
	Parsed    repository.ParsedDataRepository
	Financial repository.FinancialRepository
	Store     storage.Storage
	Extractor ocr.Extractor
	Audit     AuditService
	Metrics   *Metrics
	Log       *zap.Logger
	// MaxBytes caps how much of an object is read for extraction; zero means no cap.
	MaxBytes int64
}

func NewProcessingService(d ProcessingDeps) ProcessingService {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &processingService{
		docs:      d.Documents,
		parsed:    d.Parsed,
		financial: d.Financial,
		store:     d.Store,
		extractor: d.Extractor,
		audit:     d.Audit,
		metrics:   d.Metrics,
		log:       log,
		maxBytes:  d.MaxBytes,
	}
}

func (s *processingService) Process(ctx context.Context, documentID, actorID string) (*ProcessResult, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.Status == model.DocumentProcessing {
		return nil, fmt.Errorf("%w: document is already processing", ErrInvalidTransition)
	}

	ok, err := s.docs.UpdateStatus(ctx, documentID, model.DocumentProcessing,
		model.DocumentUploaded, model.DocumentProcessed, model.DocumentFailed)
	if err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: document is already processing", ErrInvalidTransition)
	}

	res, err := s.run(ctx, doc)
	if err != nil {
		// The caller's context may be gone; the failed status must still land.
		bg := context.WithoutCancel(ctx)
		if _, uerr := s.docs.UpdateStatus(bg, documentID, model.DocumentFailed, model.DocumentProcessing); uerr != nil {
			s.log.Error("mark document failed", zap.String("document_id", documentID), zap.Error(uerr))
		}
		s.metrics.documentProcessed("failed")
		s.audit.Record(bg, model.AuditEntry{
			ActorID:     actorID,
			Action:      ActionDocumentProcess,
			EntityType:  "document",
			EntityID:    documentID,
			WorkspaceID: doc.WorkspaceID,
			Details:     map[string]any{"result": "failed", "error": err.Error()},
		})
		if errors.Is(err, ocr.ErrUnsupportedContent) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedContent, err)
		}
		if errors.Is(err, ocr.ErrTooLarge) || errors.Is(err, ocr.ErrEmptyInput) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	s.metrics.documentProcessed("processed")
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionDocumentProcess,
		EntityType:  "document",
		EntityID:    documentID,
		WorkspaceID: doc.WorkspaceID,
		Details: map[string]any{
			"result":     "processed",
			"engine":     res.Parsed.Engine,
			"confidence": res.Parsed.Confidence,
			"anomalies":  res.Financial.Anomalies,
		},
	})
	return res, nil
}

func (s *processingService) run(ctx context.Context, doc *model.Document) (*ProcessResult, error) {
	if s.maxBytes > 0 && doc.Size > s.maxBytes {
		return nil, fmt.Errorf("read object: %w", ocr.ErrTooLarge)
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	var src io.Reader = rc
	if s.maxBytes > 0 {
		src = io.LimitReader(rc, s.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("read object: %w", ocr.ErrTooLarge)
	}

	text, err := s.extractor.Extract(ctx, data, doc.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	now := time.Now().UTC()
	pr := parser.Parse(text.Text)
	parsed := &model.ParsedData{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		RawText:    text.Text,
		Fields:     pr.Fields,
		Sections:   pr.Sections,
		Dates:      pr.Dates,
		Amounts:    pr.Amounts,
		Engine:     text.Engine,
		Confidence: text.Confidence,
		Coverage:   pr.Coverage,
		CreatedAt:  now,
	}
	if err := s.parsed.Create(ctx, parsed); err != nil {
		return nil, fmt.Errorf("store parsed data: %w", err)
	}

	fin := parser.ExtractFinancial(pr)
	fin.ID = uuid.NewString()
	fin.DocumentID = doc.ID
	fin.ParsedDataID = parsed.ID
	fin.CreatedAt = now
	if err := s.financial.Create(ctx, &fin); err != nil {
		return nil, fmt.Errorf("store financial extraction: %w", err)
	}

	ok, err := s.docs.UpdateStatus(ctx, doc.ID, model.DocumentProcessed, model.DocumentProcessing)
	if err != nil {
		return nil, fmt.Errorf("mark processed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: document left processing before completion", ErrInvalidTransition)
	}
	doc.Status = model.DocumentProcessed
	doc.UpdatedAt = now

	return &ProcessResult{Document: doc, Parsed: parsed, Financial: &fin}, nil
}

func (s *processingService) GetParsed(ctx context.Context, documentID string) (*model.ParsedData, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.parsed.LatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *processingService) GetFinancial(ctx context.Context, documentID string) (*model.FinancialExtraction, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	f, err := s.financial.LatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
