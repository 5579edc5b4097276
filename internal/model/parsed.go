package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section groups the lines that follow a heading in extracted text.
type Section struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
}

// ParsedData is the structured view of a document's OCR text.
type ParsedData struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	RawText    string            `json:"raw_text"`
	Fields     map[string]string `json:"fields"`
	Sections   []Section         `json:"sections"`
	Dates      []string          `json:"dates"`
	Amounts    []string          `json:"amounts"`
	Engine     string            `json:"engine"`
	Confidence float64           `json:"confidence"`
	Coverage   float64           `json:"coverage"`
	CreatedAt  time.Time         `json:"created_at"`
}

// FinancialExtraction holds invoice-style figures pulled from parsed data.
type FinancialExtraction struct {
	ID            string          `json:"id"`
	DocumentID    string          `json:"document_id"`
	ParsedDataID  string          `json:"parsed_data_id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Vendor        string          `json:"vendor,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	IssueDate     *time.Time      `json:"issue_date,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Consistent    bool            `json:"consistent"`
	Anomalies     []string        `json:"anomalies"`
	CreatedAt     time.Time       `json:"created_at"`
}
