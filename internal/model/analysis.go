package model

import (
	"time"

	"github.com/google/uuid"
)

// Field limits for the prose parts of an AnalysisResult.
const (
	MaxHarmfulPointsLength  = 500
	MaxWorstDataLength      = 300
	MaxRecommendationLength = 400
	MaxDataTypes            = 10
)

// NoConcernsMessage is reported when no concern rule matched.
const NoConcernsMessage = "No major red flags detected"

// Backend names recorded in AnalysisResult.Backend.
const (
	BackendHeuristic = "heuristic"
	BackendModel     = "model"
)

// AnalysisResult is the consumer-facing outcome of analyzing one subject.
type AnalysisResult struct {
	// ID identifies this analysis run.
	ID string `json:"id"`

	// CompanyName is the subject the prose talks about.
	CompanyName string `json:"companyName"`

	// Website is the analyzed domain, empty for text and platform analyses.
	Website string `json:"website,omitempty"`

	// PrivacyURL is the page the policy text came from, when known.
	PrivacyURL string `json:"privacyUrl,omitempty"`

	// Score is clamped to [0, 100]. Read it according to Scale.
	Score int `json:"score"`

	// Scale tells whether Score counts risk or safety.
	Scale ScoreScale `json:"scale"`

	HarmfulPoints  string `json:"harmfulPoints"`
	WorstData      string `json:"worstData"`
	Recommendation string `json:"recommendation"`

	// DataTypes holds deduplicated data-type labels in detection order.
	DataTypes []string `json:"dataTypes"`

	// Concerns is never empty; it holds NoConcernsMessage when nothing matched.
	Concerns []string `json:"concerns"`

	// Positives lists good practices found in the policy.
	Positives []string `json:"positives,omitempty"`

	SourceKind SourceKind `json:"sourceKind"`

	// Backend is BackendModel when a model produced the prose.
	Backend string `json:"backend"`

	// Assessment summarizes the risk for display.
	Assessment *RiskAssessment `json:"assessment,omitempty"`

	AnalyzedAt time.Time `json:"analyzedAt"`
}

// NewAnalysisResult returns a result with a fresh ID and timestamp.
func NewAnalysisResult(companyName string, kind SourceKind) *AnalysisResult {
	return &AnalysisResult{
		ID:          uuid.NewString(),
		CompanyName: companyName,
		SourceKind:  kind,
		Scale:       ScaleRisk,
		Backend:     BackendHeuristic,
		DataTypes:   make([]string, 0),
		Concerns:    make([]string, 0),
		AnalyzedAt:  time.Now(),
	}
}

// RiskPercent returns the score expressed as risk, whatever the scale.
func (r *AnalysisResult) RiskPercent() int {
	if r.Scale == ScaleSafety {
		return ClampScore(100 - r.Score)
	}
	return ClampScore(r.Score)
}

// RiskLevel buckets RiskPercent.
func (r *AnalysisResult) RiskLevel() RiskLevel {
	return RiskLevelFor(r.RiskPercent())
}

// Clone returns a deep copy of r.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	c := *r
	c.DataTypes = append([]string(nil), r.DataTypes...)
	c.Concerns = append([]string(nil), r.Concerns...)
	c.Positives = append([]string(nil), r.Positives...)
	if r.Assessment != nil {
		a := *r.Assessment
		c.Assessment = &a
	}
	return &c
}

// ClampScore bounds a score to [0, 100].
func ClampScore(score int) int {
	return max(0, min(100, score))
}

// Truncate shortens s to at most limit characters.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// RiskAssessment is a display-oriented view of an AnalysisResult.
type RiskAssessment struct {
	// Overall is the risk percentage (0-100, higher is riskier).
	Overall int       `json:"overall"`
	Level   RiskLevel `json:"level"`

	// Sharing is "High" when the policy shares data with advertisers or partners.
	Sharing string `json:"sharing"`

	// Control is "Limited" when users have little control over their data.
	Control string `json:"control"`

	Summary string `json:"summary"`
}
