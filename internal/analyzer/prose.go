package analyzer

import (
	"fmt"
	"strings"

	"github.com/nao1215/policyscan/internal/model"
)

// maxProseItems caps how many concerns or data types a sentence lists.
const maxProseItems = 3

func harmfulPoints(subject string, concerns []model.ConcernRule) string {
	if len(concerns) == 0 {
		return model.Truncate(fmt.Sprintf(
			"%s collects personal data for business purposes. The extent of data collection and sharing practices may vary.",
			subject), model.MaxHarmfulPointsLength)
	}

	descs := make([]string, 0, maxProseItems)
	for _, c := range concerns[:min(len(concerns), maxProseItems)] {
		descs = append(descs, c.Description)
	}
	return model.Truncate(fmt.Sprintf(
		"%s %s. This could impact your privacy and data security.",
		subject, strings.Join(descs, ", ")), model.MaxHarmfulPointsLength)
}

func worstData(dataTypes []model.DataTypeRule) string {
	if len(dataTypes) == 0 {
		return "Personal information and usage data that could be used for profiling and advertising purposes."
	}

	ranked := sortBySensitivity(dataTypes)
	labels := make([]string, 0, maxProseItems)
	for _, r := range ranked[:min(len(ranked), maxProseItems)] {
		labels = append(labels, r.Label)
	}
	return model.Truncate(fmt.Sprintf(
		"Most concerning data includes: %s. This information could be used for profiling and targeting.",
		strings.Join(labels, ", ")), model.MaxWorstDataLength)
}

func recommendation(subject string, concernCount int) string {
	var s string
	switch {
	case concernCount >= 3:
		s = fmt.Sprintf("Be very cautious with %s. Consider limiting the personal information you provide and review privacy settings regularly.", subject)
	case concernCount >= 1:
		s = fmt.Sprintf("Review %s's privacy settings and be selective about what information you share.", subject)
	default:
		s = fmt.Sprintf("While %s appears to have standard privacy practices, always review settings and limit unnecessary data sharing.", subject)
	}
	return model.Truncate(s, model.MaxRecommendationLength)
}

// assess builds the display-oriented risk view of res.
func assess(res *model.AnalysisResult, sharingHigh bool) *model.RiskAssessment {
	risk := res.RiskPercent()

	a := &model.RiskAssessment{
		Overall: risk,
		Level:   model.RiskLevelFor(risk),
		Sharing: "Medium",
		Control: "Moderate",
	}
	if sharingHigh {
		a.Sharing = "High"
	}

	implications := "moderate"
	if risk > 40 {
		a.Control = "Limited"
		implications = "significant"
	}
	a.Summary = fmt.Sprintf("%s has %s privacy implications. Consider reviewing your privacy settings.", res.CompanyName, implications)
	return a
}
