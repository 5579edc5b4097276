package model

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFactor is one contribution to a risk score.
type RiskFactor struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Detail string  `json:"detail"`
}

type RiskAssessment struct {
	ID         string       `json:"id"`
	DocumentID string       `json:"document_id"`
	Score      float64      `json:"score"`
	Level      RiskLevel    `json:"level"`
	Factors    []RiskFactor `json:"factors"`
	AssessedBy string       `json:"assessed_by"`
	CreatedAt  time.Time    `json:"created_at"`
}
