package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

// UpdateStatus records `from` as a single slice argument.
func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, to model.DocumentStatus, from ...model.DocumentStatus) (bool, error) {
	args := m.Called(ctx, id, to, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockParsedDataRepository struct {
	mock.Mock
}

func (m *MockParsedDataRepository) Create(ctx context.Context, p *model.ParsedData) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockParsedDataRepository) LatestByDocument(ctx context.Context, documentID string) (*model.ParsedData, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ParsedData), args.Error(1)
}

type MockFinancialRepository struct {
	mock.Mock
}

func (m *MockFinancialRepository) Create(ctx context.Context, f *model.FinancialExtraction) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFinancialRepository) LatestByDocument(ctx context.Context, documentID string) (*model.FinancialExtraction, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinancialExtraction), args.Error(1)
}
