package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight is the contribution of a rule with this severity to a compliance score.
func (s Severity) Weight() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 5
	default:
		return 0
	}
}

type RuleType string

const (
	RuleRequiredField    RuleType = "required_field"
	RuleKeyword          RuleType = "keyword"
	RuleMaxAmount        RuleType = "max_amount"
	RuleConsistentTotals RuleType = "consistent_totals"
	RuleDatePresent      RuleType = "date_present"
)

// Rule is a single requirement of a compliance framework.
type Rule struct {
	ID          string           `json:"id" validate:"required"`
	Description string           `json:"description"`
	Type        RuleType         `json:"type" validate:"required,oneof=required_field keyword max_amount consistent_totals date_present"`
	Field       string           `json:"field,omitempty"`
	Pattern     string           `json:"pattern,omitempty"`
	Threshold   *decimal.Decimal `json:"threshold,omitempty"`
	Severity    Severity         `json:"severity" validate:"required,oneof=low medium high critical"`
}

type ComplianceFramework struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Rules       []Rule    `json:"rules"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckWarning CheckStatus = "warning"
	CheckFailed  CheckStatus = "failed"
)

// Finding is the outcome of evaluating one rule.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Passed   bool     `json:"passed"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type ComplianceCheck struct {
	ID          string      `json:"id"`
	DocumentID  string      `json:"document_id"`
	FrameworkID string      `json:"framework_id"`
	Status      CheckStatus `json:"status"`
	Score       float64     `json:"score"`
	Findings    []Finding   `json:"findings"`
	CheckedBy   string      `json:"checked_by"`
	CreatedAt   time.Time   `json:"created_at"`
}
