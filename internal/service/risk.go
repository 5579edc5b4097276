package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"docaudit/internal/model"
	"docaudit/internal/repository"
)

// Risk factor weights.
const (
	complianceGapWeight = 0.6
	anomalyPoints       = 10.0
	anomalyPointsCap    = 30.0
	inconsistentPoints  = 15.0
	lowConfidencePoints = 10.0
	lowConfidenceCutoff = 0.6
	noCompliancePoints  = 20.0
	riskMediumFrom      = 25.0
	riskHighFrom        = 50.0
	riskCriticalFrom    = 75.0
	maxRiskScore        = 100.0
)

// RiskService scores documents from their compliance and extraction results.
type RiskService interface {
	Assess(ctx context.Context, documentID, actorID string) (*model.RiskAssessment, error)
	ListAssessments(ctx context.Context, documentID string) ([]model.RiskAssessment, error)
}

type riskService struct {
	repo       repository.RiskRepository
	docs       repository.DocumentRepository
	compliance repository.ComplianceRepository
	parsed     repository.ParsedDataRepository
	financial  repository.FinancialRepository
	audit      AuditService
}

func NewRiskService(
	repo repository.RiskRepository,
	docs repository.DocumentRepository,
	compliance repository.ComplianceRepository,
	parsed repository.ParsedDataRepository,
	financial repository.FinancialRepository,
	audit AuditService,
) RiskService {
	return &riskService{repo: repo, docs: docs, compliance: compliance, parsed: parsed, financial: financial, audit: audit}
}

func (s *riskService) Assess(ctx context.Context, documentID, actorID string) (*model.RiskAssessment, error) {
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

	checks, err := s.compliance.LatestChecks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load compliance checks: %w", err)
	}
	fin, err := s.financial.LatestByDocument(ctx, documentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load financial extraction: %w", err)
	}
	parsed, err := s.parsed.LatestByDocument(ctx, documentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load parsed data: %w", err)
	}

	score, level, factors := ScoreRisk(checks, fin, parsed)
	a := &model.RiskAssessment{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Score:      score,
		Level:      level,
		Factors:    factors,
		AssessedBy: actorID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("store risk assessment: %w", err)
	}
	s.audit.Record(ctx, model.AuditEntry{
		ActorID:     actorID,
		Action:      ActionRiskAssess,
		EntityType:  "document",
		EntityID:    documentID,
		WorkspaceID: doc.WorkspaceID,
		Details:     map[string]any{"score": score, "level": string(level)},
	})
	return a, nil
}

func (s *riskService) ListAssessments(ctx context.Context, documentID string) ([]model.RiskAssessment, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByDocument(ctx, documentID)
}

// ScoreRisk combines the latest check per framework, the financial extraction and
// the parsed data into a 0..100 score. fin and parsed may be nil.
func ScoreRisk(checks []model.ComplianceCheck, fin *model.FinancialExtraction, parsed *model.ParsedData) (float64, model.RiskLevel, []model.RiskFactor) {
	factors := make([]model.RiskFactor, 0, 5)

	if len(checks) == 0 {
		factors = append(factors, model.RiskFactor{
			Name: "no_compliance_checks", Points: noCompliancePoints, Detail: "document has never been checked",
		})
	} else {
		var sum float64
		for _, c := range checks {
			sum += c.Score
		}
		mean := sum / float64(len(checks))
		if gap := (100 - mean) * complianceGapWeight; gap > 0 {
			factors = append(factors, model.RiskFactor{
				Name: "compliance_gap", Points: round2(gap),
				Detail: fmt.Sprintf("mean compliance score %.2f over %d framework(s)", mean, len(checks)),
			})
		}
	}

	if fin != nil {
		if n := len(fin.Anomalies); n > 0 {
			factors = append(factors, model.RiskFactor{
				Name: "financial_anomalies", Points: math.Min(float64(n)*anomalyPoints, anomalyPointsCap),
				Detail: fmt.Sprintf("%d anomaly(ies): %v", n, fin.Anomalies),
			})
		}
		if !fin.Consistent {
			factors = append(factors, model.RiskFactor{
				Name: "inconsistent_totals", Points: inconsistentPoints, Detail: "subtotal, tax and total do not reconcile",
			})
		}
	}

	if parsed != nil && parsed.Confidence < lowConfidenceCutoff {
		factors = append(factors, model.RiskFactor{
			Name: "low_ocr_confidence", Points: lowConfidencePoints,
			Detail: fmt.Sprintf("extraction confidence %.2f", parsed.Confidence),
		})
	}

	var score float64
	for _, f := range factors {
		score += f.Points
	}
	score = round2(math.Max(0, math.Min(maxRiskScore, score)))
	return score, riskLevel(score), factors
}

func riskLevel(score float64) model.RiskLevel {
	switch {
	case score < riskMediumFrom:
		return model.RiskLow
	case score < riskHighFrom:
		return model.RiskMedium
	case score < riskCriticalFrom:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
