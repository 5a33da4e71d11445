package model

import (
	"errors"
	"fmt"
)

// ErrInvalidRule is returned by RuleSet.Validate for a malformed rule.
var ErrInvalidRule = errors.New("invalid rule")

// ConcernRule raises the risk score when any of its keywords appears in the text.
type ConcernRule struct {
	// Name identifies the rule in logs and overrides.
	Name string `yaml:"name" json:"name"`

	// Keywords are matched case- and accent-insensitively as substrings.
	Keywords []string `yaml:"keywords" json:"keywords"`

	// Description completes the sentence "<company> ...", e.g. "may sell your personal data".
	Description string `yaml:"description" json:"description"`

	// Weight is added to the risk score once per matching rule.
	Weight int `yaml:"weight" json:"weight"`
}

// PositiveRule lowers the risk score when any of its keywords appears.
type PositiveRule struct {
	Name        string   `yaml:"name" json:"name"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Description string   `yaml:"description" json:"description"`

	// Bonus is subtracted from the risk score once per matching rule.
	Bonus int `yaml:"bonus" json:"bonus"`
}

// DataTypeRule maps a keyword to a data-type label.
type DataTypeRule struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Label   string `yaml:"label" json:"label"`

	// Sensitivity orders labels when picking the worst data (higher first).
	Sensitivity int `yaml:"sensitivity" json:"sensitivity"`
}

// Profile fields a ProfileRule can inspect.
const (
	ProfileFieldRetention     = "retention"
	ProfileFieldSharing       = "sharing"
	ProfileFieldDataTypeCount = "data_type_count"
)

// ProfileRule lowers the safety score of a structured PolicyProfile.
type ProfileRule struct {
	Name string `yaml:"name" json:"name"`

	// Field is one of the ProfileField constants.
	Field string `yaml:"field" json:"field"`

	// Keyword is matched against retention or sharing text.
	Keyword string `yaml:"keyword,omitempty" json:"keyword,omitempty"`

	// Threshold applies to data_type_count: the rule fires when count > Threshold.
	Threshold int `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// Penalty is subtracted from the safety score.
	Penalty int `yaml:"penalty" json:"penalty"`

	// Concern is reported when the rule fires. Rules without one only score.
	Concern string `yaml:"concern,omitempty" json:"concern,omitempty"`
}

// ScoringBaselines holds the starting points of both scoring conventions.
type ScoringBaselines struct {
	// Text is the risk baseline for raw-text scoring.
	Text int `yaml:"text" json:"text"`

	// Profile is the safety baseline for structured scoring.
	Profile int `yaml:"profile" json:"profile"`
}

// RuleSet groups every table the analyzer uses.
type RuleSet struct {
	Baselines ScoringBaselines `yaml:"baselines" json:"baselines"`
	Concerns  []ConcernRule    `yaml:"concerns" json:"concerns"`
	Positives []PositiveRule   `yaml:"positives" json:"positives"`
	DataTypes []DataTypeRule   `yaml:"dataTypes" json:"dataTypes"`
	Profile   []ProfileRule    `yaml:"profile" json:"profile"`
}

// Validate checks that weights are non-negative and every rule can match.
// Negative weights would break score monotonicity, so they are rejected.
func (rs *RuleSet) Validate() error {
	for _, r := range rs.Concerns {
		if r.Weight < 0 {
			return fmt.Errorf("%w: concern %q has negative weight %d", ErrInvalidRule, r.Name, r.Weight)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("%w: concern %q has no keywords", ErrInvalidRule, r.Name)
		}
	}
	for _, r := range rs.Positives {
		if r.Bonus < 0 {
			return fmt.Errorf("%w: positive %q has negative bonus %d", ErrInvalidRule, r.Name, r.Bonus)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("%w: positive %q has no keywords", ErrInvalidRule, r.Name)
		}
	}
	for _, r := range rs.DataTypes {
		if r.Keyword == "" || r.Label == "" {
			return fmt.Errorf("%w: data type needs keyword and label (got %q, %q)", ErrInvalidRule, r.Keyword, r.Label)
		}
	}
	for _, r := range rs.Profile {
		if r.Penalty < 0 {
			return fmt.Errorf("%w: profile rule %q has negative penalty %d", ErrInvalidRule, r.Name, r.Penalty)
		}
		switch r.Field {
		case ProfileFieldRetention, ProfileFieldSharing:
			if r.Keyword == "" {
				return fmt.Errorf("%w: profile rule %q needs a keyword", ErrInvalidRule, r.Name)
			}
		case ProfileFieldDataTypeCount:
		default:
			return fmt.Errorf("%w: profile rule %q has unknown field %q", ErrInvalidRule, r.Name, r.Field)
		}
	}
	return nil
}
