package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// ParsedDataPostgres stores OCR output in parsed_data.
type ParsedDataPostgres struct {
	db *sql.DB
}

func NewParsedDataPostgres(db *sql.DB) *ParsedDataPostgres {
	return &ParsedDataPostgres{db: db}
}

var _ repository.ParsedDataRepository = (*ParsedDataPostgres)(nil)

func (r *ParsedDataPostgres) Create(ctx context.Context, p *model.ParsedData) error {
	fields, err := encodeJSON(p.Fields)
	if err != nil {
		return err
	}
	sections, err := encodeJSON(p.Sections)
	if err != nil {
		return err
	}
	dates, err := encodeJSON(p.Dates)
	if err != nil {
		return err
	}
	amounts, err := encodeJSON(p.Amounts)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO parsed_data (id, document_id, raw_text, fields, sections, dates, amounts, engine, confidence, coverage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.DocumentID, p.RawText, fields, sections, dates, amounts,
		p.Engine, p.Confidence, p.Coverage, p.CreatedAt,
	)
	return err
}

func (r *ParsedDataPostgres) LatestByDocument(ctx context.Context, documentID string) (*model.ParsedData, error) {
	const q = `
		SELECT id, document_id, raw_text, fields, sections, dates, amounts, engine, confidence, coverage, created_at
		FROM parsed_data
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		p                                model.ParsedData
		fields, sections, dates, amounts []byte
	)
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(
		&p.ID, &p.DocumentID, &p.RawText, &fields, &sections, &dates, &amounts,
		&p.Engine, &p.Confidence, &p.Coverage, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{fields, &p.Fields},
		{sections, &p.Sections},
		{dates, &p.Dates},
		{amounts, &p.Amounts},
	} {
		if err := decodeJSON(col.raw, col.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// FinancialPostgres stores rows of financial_extractions.
type FinancialPostgres struct {
	db *sql.DB
}

func NewFinancialPostgres(db *sql.DB) *FinancialPostgres {
	return &FinancialPostgres{db: db}
}

var _ repository.FinancialRepository = (*FinancialPostgres)(nil)

func (r *FinancialPostgres) Create(ctx context.Context, f *model.FinancialExtraction) error {
	anomalies, err := encodeJSON(f.Anomalies)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO financial_extractions
			(id, document_id, parsed_data_id, invoice_number, vendor, currency, subtotal, tax, total, issue_date, due_date, consistent, anomalies, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, q,
		f.ID, f.DocumentID, f.ParsedDataID, f.InvoiceNumber, f.Vendor, f.Currency,
		f.Subtotal, f.Tax, f.Total, nullTime(f.IssueDate), nullTime(f.DueDate),
		f.Consistent, anomalies, f.CreatedAt,
	)
	return err
}

func (r *FinancialPostgres) LatestByDocument(ctx context.Context, documentID string) (*model.FinancialExtraction, error) {
	const q = `
		SELECT id, document_id, parsed_data_id, invoice_number, vendor, currency, subtotal, tax, total,
		       issue_date, due_date, consistent, anomalies, created_at
		FROM financial_extractions
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		f                  model.FinancialExtraction
		subtotal, tax      decimal.Decimal
		total              decimal.Decimal
		issueDate, dueDate sql.NullTime
		anomalies          []byte
	)
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(
		&f.ID, &f.DocumentID, &f.ParsedDataID, &f.InvoiceNumber, &f.Vendor, &f.Currency,
		&subtotal, &tax, &total, &issueDate, &dueDate, &f.Consistent, &anomalies, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	f.Subtotal, f.Tax, f.Total = subtotal, tax, total
	f.IssueDate, f.DueDate = timePtr(issueDate), timePtr(dueDate)
	f.Anomalies = []string{}
	if err := decodeJSON(anomalies, &f.Anomalies); err != nil {
		return nil, err
	}
	return &f, nil
}
