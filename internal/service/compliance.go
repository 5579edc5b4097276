package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"docaudit/internal/model"
	"docaudit/internal/parser"
	"docaudit/internal/repository"
)

// Scores at or above warningScore (and below 100) are reported as warnings.
const warningScore = 70.0

// CreateFrameworkInput describes a new compliance framework.
type CreateFrameworkInput struct {
	Name        string       `validate:"required,max=200"`
	Description string       `validate:"max=2000"`
	Version     string       `validate:"max=50"`
	Rules       []model.Rule `validate:"required,min=1,dive"`
	CreatedBy   string
}

// FrameworkListResult is a page of frameworks.
type FrameworkListResult struct {
	Items []model.ComplianceFramework `json:"data"`
	Total int                         `json:"total"`
}

// ComplianceService manages frameworks and evaluates documents against them.
type ComplianceService interface {
	CreateFramework(ctx context.Context, in CreateFrameworkInput) (*model.ComplianceFramework, error)
	ListFrameworks(ctx context.Context, limit, offset int) (*FrameworkListResult, error)
	GetFramework(ctx context.Context, id string) (*model.ComplianceFramework, error)
	DeleteFramework(ctx context.Context, id, actorID string) error
	RunCheck(ctx context.Context, documentID, frameworkID, actorID string) (*model.ComplianceCheck, error)
	ListChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error)
}

type complianceService struct {
	repo      repository.ComplianceRepository
	docs      repository.DocumentRepository
	parsed    repository.ParsedDataRepository
	financial repository.FinancialRepository
	audit     AuditService
	metrics   *Metrics
}

func NewComplianceService(
	repo repository.ComplianceRepository,
	docs repository.DocumentRepository,
	parsed repository.ParsedDataRepository,
	financial repository.FinancialRepository,
	audit AuditService,
	metrics *Metrics,
) ComplianceService {
	return &complianceService{repo: repo, docs: docs, parsed: parsed, financial: financial, audit: audit, metrics: metrics}
}

func (s *complianceService) CreateFramework(ctx context.Context, in CreateFrameworkInput) (*model.ComplianceFramework, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkRules(in.Rules); err != nil {
		return nil, err
	}
	version := in.Version
	if version == "" {
		version = "1"
	}
	f := &model.ComplianceFramework{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Version:     version,
		Rules:       in.Rules,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateFramework(ctx, f); err != nil {
		return nil, fmt.Errorf("create framework: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    in.CreatedBy,
		Action:     ActionFrameworkCreate,
		EntityType: "compliance_framework",
		EntityID:   f.ID,
		Details:    map[string]any{"name": f.Name, "rules": len(f.Rules)},
	})
	return f, nil
}

// checkRules enforces what struct tags cannot: unique ids and per-type parameters.
func checkRules(rules []model.Rule) error {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate rule id %q", ErrInvalidInput, r.ID)
		}
		seen[r.ID] = struct{}{}

		switch r.Type {
		case model.RuleRequiredField:
			if r.Field == "" {
				return fmt.Errorf("%w: rule %q needs a field", ErrInvalidInput, r.ID)
			}
		case model.RuleKeyword:
			if r.Pattern == "" {
				return fmt.Errorf("%w: rule %q needs a pattern", ErrInvalidInput, r.ID)
			}
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return fmt.Errorf("%w: rule %q pattern: %v", ErrInvalidInput, r.ID, err)
			}
		case model.RuleMaxAmount:
			if r.Threshold == nil {
				return fmt.Errorf("%w: rule %q needs a threshold", ErrInvalidInput, r.ID)
			}
		}
	}
	return nil
}

func (s *complianceService) ListFrameworks(ctx context.Context, limit, offset int) (*FrameworkListResult, error) {
	limit, offset = normalizePage(limit, offset)
	res, err := s.repo.ListFrameworks(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &FrameworkListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *complianceService) GetFramework(ctx context.Context, id string) (*model.ComplianceFramework, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindFramework(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *complianceService) DeleteFramework(ctx context.Context, id, actorID string) error {
	f, err := s.GetFramework(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFramework(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:    actorID,
		Action:     ActionFrameworkDelete,
		EntityType: "compliance_framework",
		EntityID:   id,
		Details:    map[string]any{"name": f.Name},
	})
	return nil
}

func (s *complianceService) RunCheck(ctx context.Context, documentID, frameworkID, actorID string) (*model.ComplianceCheck, error) {
	if documentID == "" || frameworkID == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	fw, err := s.GetFramework(ctx, frameworkID)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parsed.LatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document has not been processed", ErrInvalidTransition)
		}
		return nil, err
	}
	fin, err := s.financial.LatestByDocument(ctx, documentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	score, status, findings := EvaluateRules(fw.Rules, parsed, fin)
	check := &model.ComplianceCheck{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		FrameworkID: frameworkID,
		Status:      status,
		Score:       score,
		Findings:    findings,
		CheckedBy:   actorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("store compliance check: %w", err)
	}
	s.metrics.complianceChecked(string(status))
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionComplianceCheck,
		EntityType:  "document",
		EntityID:    documentID,
		WorkspaceID: doc.WorkspaceID,
		Details: map[string]any{
			"framework_id": frameworkID,
			"status":       string(status),
			"score":        score,
		},
	})
	return check, nil
}

func (s *complianceService) ListChecks(ctx context.Context, documentID string) ([]model.ComplianceCheck, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListChecks(ctx, documentID)
}

// EvaluateRules scores parsed (and optionally financial) data against rules.
// fin may be nil when no financial extraction exists.
func EvaluateRules(rules []model.Rule, parsed *model.ParsedData, fin *model.FinancialExtraction) (float64, model.CheckStatus, []model.Finding) {
	var (
		total, passed   int
		criticalFailure bool
	)
	findings := make([]model.Finding, 0, len(rules))
	for _, r := range rules {
		ok, msg := evaluateRule(r, parsed, fin)
		w := r.Severity.Weight()
		total += w
		if ok {
			passed += w
		} else if r.Severity == model.SeverityCritical {
			criticalFailure = true
		}
		findings = append(findings, model.Finding{RuleID: r.ID, Passed: ok, Severity: r.Severity, Message: msg})
	}

	score := 0.0
	if total > 0 {
		score = round2(100 * float64(passed) / float64(total))
	}

	var status model.CheckStatus
	switch {
	case criticalFailure:
		status = model.CheckFailed
	case score == 100:
		status = model.CheckPassed
	case score >= warningScore:
		status = model.CheckWarning
	default:
		status = model.CheckFailed
	}
	return score, status, findings
}

func evaluateRule(r model.Rule, parsed *model.ParsedData, fin *model.FinancialExtraction) (bool, string) {
	switch r.Type {
	case model.RuleRequiredField:
		key := parser.NormalizeKey(r.Field)
		if parsed != nil && parsed.Fields[key] != "" {
			return true, fmt.Sprintf("field %s present", key)
		}
		if financialFieldPresent(key, fin) {
			return true, fmt.Sprintf("field %s present", key)
		}
		return false, fmt.Sprintf("field %s missing", key)

	case model.RuleKeyword:
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return false, "invalid pattern"
		}
		if parsed != nil && re.MatchString(parsed.RawText) {
			return true, "pattern matched"
		}
		return false, "pattern not found"

	case model.RuleMaxAmount:
		if r.Threshold == nil {
			return false, "no threshold configured"
		}
		if fin == nil || hasAnomaly(fin.Anomalies, parser.AnomalyMissingTotal) {
			return false, "no total amount found"
		}
		if fin.Total.GreaterThan(*r.Threshold) {
			return false, fmt.Sprintf("total %s exceeds %s", fin.Total.StringFixed(2), r.Threshold.StringFixed(2))
		}
		return true, fmt.Sprintf("total %s within %s", fin.Total.StringFixed(2), r.Threshold.StringFixed(2))

	case model.RuleConsistentTotals:
		if fin == nil {
			return false, "no financial data"
		}
		if !fin.Consistent {
			return false, "totals are inconsistent"
		}
		return true, "totals are consistent"

	case model.RuleDatePresent:
		switch parser.NormalizeKey(r.Field) {
		case "issue_date":
			if fin != nil && fin.IssueDate != nil {
				return true, "issue date present"
			}
			return false, "issue date missing"
		case "due_date":
			if fin != nil && fin.DueDate != nil {
				return true, "due date present"
			}
			return false, "due date missing"
		}
		if parsed != nil && len(parsed.Dates) > 0 {
			return true, "date present"
		}
		return false, "no date found"
	}
	return false, fmt.Sprintf("unknown rule type %q", r.Type)
}

func financialFieldPresent(key string, fin *model.FinancialExtraction) bool {
	if fin == nil {
		return false
	}
	switch key {
	case "invoice_number":
		return fin.InvoiceNumber != ""
	case "vendor":
		return fin.Vendor != ""
	case "currency":
		return fin.Currency != ""
	case "total":
		return !hasAnomaly(fin.Anomalies, parser.AnomalyMissingTotal)
	case "issue_date":
		return fin.IssueDate != nil
	case "due_date":
		return fin.DueDate != nil
	}
	return false
}

func hasAnomaly(anomalies []string, code string) bool {
	for _, a := range anomalies {
		if a == code {
			return true
		}
	}
	return false
}
