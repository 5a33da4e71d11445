package llm

import (
	"fmt"
	"strings"

	"github.com/nao1215/policyscan/internal/model"
)

// Sections are the narrative fields parsed from a model reply.
// A field is empty when its label was missing.
type Sections struct {
	HarmfulPoints  string
	WorstData      string
	Recommendation string
}

// Complete reports whether every field is present.
func (s Sections) Complete() bool {
	return s.HarmfulPoints != "" && s.WorstData != "" && s.Recommendation != ""
}

// WithFallbacks fills empty fields with generic sentences about subject.
func (s Sections) WithFallbacks(subject string) Sections {
	if s.HarmfulPoints == "" {
		s.HarmfulPoints = fmt.Sprintf("%s has concerning data collection and sharing practices that may impact your privacy.", subject)
	}
	if s.WorstData == "" {
		s.WorstData = "Personal information, usage data, and potentially sensitive behavioral data."
	}
	if s.Recommendation == "" {
		s.Recommendation = fmt.Sprintf("Review %s's privacy settings and limit data sharing where possible.", subject)
	}
	return s
}

type section int

const (
	sectionNone section = iota
	sectionHarmful
	sectionWorst
	sectionRecommendation
)

var sectionLabels = map[string]section{
	"HARMFUL_POINTS": sectionHarmful,
	"WORST_DATA":     sectionWorst,
	"RECOMMENDATION": sectionRecommendation,
}

// ParseHarmfulResponse reads the HARMFUL_POINTS, WORST_DATA and
// RECOMMENDATION sections from a reply.
//
// Labels are matched case-insensitively, with spaces or underscores, and may
// be wrapped in markdown bullets, headings or bold markers. Lines after a
// label belong to it until the next label. A reply without any label is
// ErrMalformedResponse; a blank reply is ErrEmptyResponse. Fields are cut to
// the lengths of model.AnalysisResult.
func ParseHarmfulResponse(reply string) (Sections, error) {
	if strings.TrimSpace(reply) == "" {
		return Sections{}, ErrEmptyResponse
	}

	parts := map[section][]string{}
	current := sectionNone
	found := false

	for _, raw := range strings.Split(reply, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if sec, rest, ok := splitLabel(line); ok {
			current = sec
			found = true
			if rest != "" {
				parts[current] = append(parts[current], rest)
			}
			continue
		}
		if current != sectionNone {
			parts[current] = append(parts[current], line)
		}
	}

	if !found {
		return Sections{}, ErrMalformedResponse
	}

	join := func(sec section, limit int) string {
		return model.Truncate(strings.Join(parts[sec], " "), limit)
	}
	return Sections{
		HarmfulPoints:  join(sectionHarmful, model.MaxHarmfulPointsLength),
		WorstData:      join(sectionWorst, model.MaxWorstDataLength),
		Recommendation: join(sectionRecommendation, model.MaxRecommendationLength),
	}, nil
}

// cleanLine drops markdown decoration and surrounding brackets.
func cleanLine(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#>-*• \t")
	return strings.TrimSpace(s)
}

func splitLabel(line string) (section, string, bool) {
	label, rest, ok := strings.Cut(line, ":")
	if !ok {
		return sectionNone, "", false
	}
	key := strings.ToUpper(strings.Join(strings.Fields(label), "_"))
	sec, ok := sectionLabels[key]
	if !ok {
		return sectionNone, "", false
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	return sec, rest, true
}
