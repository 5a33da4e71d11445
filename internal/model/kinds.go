package model

import (
	"encoding/json"
	"fmt"
)

// SourceKind records which path produced an AnalysisResult.
type SourceKind string

const (
	// SourceLiveScraping means the policy was discovered and retrieved from the web.
	SourceLiveScraping SourceKind = "live_scraping"

	// SourcePredefined means the result came from a built-in platform profile.
	SourcePredefined SourceKind = "predefined"

	// SourceGeneric means no policy was available and a generic response was produced.
	SourceGeneric SourceKind = "generic"

	// SourceProvidedText means the caller supplied the policy text directly.
	SourceProvidedText SourceKind = "provided_text"
)

// String returns the wire form of the source kind.
func (k SourceKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known source kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceLiveScraping, SourcePredefined, SourceGeneric, SourceProvidedText:
		return true
	default:
		return false
	}
}

// ScoreScale tells how a Score should be read.
//
// Raw-text scoring counts risk (higher is worse) while structured profile
// scoring counts safety (higher is better). Results carry the scale so the
// two conventions never get mixed up downstream.
type ScoreScale string

const (
	// ScaleRisk means a higher score is riskier.
	ScaleRisk ScoreScale = "risk"

	// ScaleSafety means a higher score is safer.
	ScaleSafety ScoreScale = "safety"
)

// RiskLevel buckets a risk percentage for display.
type RiskLevel int

const (
	// RiskLow covers risk of 30 and below.
	RiskLow RiskLevel = iota

	// RiskMedium covers risk above 30 up to 50.
	RiskMedium

	// RiskHigh covers risk above 50.
	RiskHigh
)

// String returns a human-readable representation of the risk level.
func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the level as its string form.
func (l RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes the string form written by MarshalJSON.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// ParseRiskLevel converts a string such as "HIGH" into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return RiskLow, nil
	case "MEDIUM":
		return RiskMedium, nil
	case "HIGH":
		return RiskHigh, nil
	default:
		return RiskLow, fmt.Errorf("unknown risk level %q", s)
	}
}

// RiskLevelFor maps a 0-100 risk percentage to a RiskLevel.
// The thresholds mirror the score-to-level mapping used in reports:
// a safety score below 50 is high risk and below 70 is medium risk.
func RiskLevelFor(riskPercent int) RiskLevel {
	switch {
	case riskPercent > 50:
		return RiskHigh
	case riskPercent > 30:
		return RiskMedium
	default:
		return RiskLow
	}
}
