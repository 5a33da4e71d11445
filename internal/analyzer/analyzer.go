package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nao1215/policyscan/internal/model"
)

// defaultSubject is used in prose when the caller gives no company name.
const defaultSubject = "This company"

// Analyzer scores policy text and generates prose from keyword tables.
// It holds no mutable state after construction and is safe for concurrent use.
//
// Two scoring conventions live side by side:
//  - ScoreText starts from the text baseline and adds concern weights, so a
//    higher score means a riskier policy (model.ScaleRisk).
//  - ScoreProfile starts from the profile baseline and subtracts for bad
//    practices, so a higher score means a safer platform (model.ScaleSafety).
//
// Design decision: the two scales are kept apart and every result records
// which one it uses. Callers that need one number for both, such as risk
// levels, history averages and reports, go through
// model.AnalysisResult.RiskPercent.
//
// All matching runs on Fold output, so accents, width variants and case do
// not change which rules fire.
type Analyzer struct {
	rules     compiledRules
	platforms platformIndex
}

// Option configures an Analyzer.
type Option func(*analyzerOptions)

type analyzerOptions struct {
	rules     model.RuleSet
	platforms []model.Platform
}

// WithRules replaces the built-in keyword tables.
// Empty tables in rs fall back to the built-in ones, and a zero baseline
// keeps the default baseline.
func WithRules(rs model.RuleSet) Option {
	return func(o *analyzerOptions) {
		def := DefaultRules()
		if rs.Baselines.Text == 0 {
			rs.Baselines.Text = def.Baselines.Text
		}
		if rs.Baselines.Profile == 0 {
			rs.Baselines.Profile = def.Baselines.Profile
		}
		if len(rs.Concerns) == 0 {
			rs.Concerns = def.Concerns
		}
		if len(rs.Positives) == 0 {
			rs.Positives = def.Positives
		}
		if len(rs.DataTypes) == 0 {
			rs.DataTypes = def.DataTypes
		}
		if len(rs.Profile) == 0 {
			rs.Profile = def.Profile
		}
		o.rules = rs
	}
}

// WithPlatforms adds platforms to the built-in set. A platform whose name
// matches a built-in one replaces it.
func WithPlatforms(platforms ...model.Platform) Option {
	return func(o *analyzerOptions) {
		o.platforms = append(o.platforms, platforms...)
	}
}

// New creates an Analyzer. Without options it uses DefaultRules and
// BuiltinPlatforms.
func New(opts ...Option) *Analyzer {
	o := &analyzerOptions{
		rules:     DefaultRules(),
		platforms: BuiltinPlatforms(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Analyzer{
		rules:     compile(o.rules),
		platforms: newPlatformIndex(o.platforms),
	}
}

// Rules returns the tables the analyzer was built with (keywords folded).
func (a *Analyzer) Rules() model.RuleSet {
	return a.rules.RuleSet
}

// ScoreText returns the risk score of raw policy text: the text baseline
// plus the weight of every concern rule that matches, minus the bonus of
// every positive rule that matches, clamped to [0, 100]. Higher is riskier.
func (a *Analyzer) ScoreText(text string) int {
	return a.scoreFolded(Fold(text))
}

func (a *Analyzer) scoreFolded(folded string) int {
	score := a.rules.Baselines.Text
	for _, r := range a.rules.Concerns {
		if containsAny(folded, r.Keywords) {
			score += r.Weight
		}
	}
	for _, r := range a.rules.Positives {
		if containsAny(folded, r.Keywords) {
			score -= r.Bonus
		}
	}
	return model.ClampScore(score)
}

// ScoreProfile returns the safety score of a structured profile: the
// profile baseline minus the penalty of every profile rule that fires,
// clamped to [0, 100]. Higher is safer, the opposite of ScoreText.
func (a *Analyzer) ScoreProfile(p model.PolicyProfile) int {
	score := a.rules.Baselines.Profile
	for _, r := range a.firedProfileRules(p) {
		score -= r.Penalty
	}
	return model.ClampScore(score)
}

func (a *Analyzer) firedProfileRules(p model.PolicyProfile) []model.ProfileRule {
	retention := Fold(p.Retention)
	sharing := Fold(p.Sharing)

	fired := make([]model.ProfileRule, 0, len(a.rules.Profile))
	for _, r := range a.rules.Profile {
		var hit bool
		switch r.Field {
		case model.ProfileFieldRetention:
			hit = strings.Contains(retention, r.Keyword)
		case model.ProfileFieldSharing:
			hit = strings.Contains(sharing, r.Keyword)
		case model.ProfileFieldDataTypeCount:
			hit = len(p.DataTypes) > r.Threshold
		}
		if hit {
			fired = append(fired, r)
		}
	}
	return fired
}

// ProfileConcerns lists the concerns raised by a structured profile, or
// the single NoConcernsMessage when none fire.
func (a *Analyzer) ProfileConcerns(p model.PolicyProfile) []string {
	concerns := make([]string, 0)
	for _, r := range a.firedProfileRules(p) {
		if r.Concern != "" {
			concerns = append(concerns, r.Concern)
		}
	}
	if len(concerns) == 0 {
		return []string{model.NoConcernsMessage}
	}
	return concerns
}

// DetectDataTypes returns data-type labels found in text, in table order,
// without duplicates and capped at model.MaxDataTypes.
func (a *Analyzer) DetectDataTypes(text string) []string {
	rules := a.matchDataTypes(Fold(text))
	labels := make([]string, len(rules))
	for i, r := range rules {
		labels[i] = r.Label
	}
	return labels
}

func (a *Analyzer) matchDataTypes(folded string) []model.DataTypeRule {
	seen := make(map[string]bool)
	matched := make([]model.DataTypeRule, 0)
	for _, r := range a.rules.DataTypes {
		if len(matched) >= model.MaxDataTypes {
			break
		}
		if seen[r.Label] || !strings.Contains(folded, r.Keyword) {
			continue
		}
		seen[r.Label] = true
		matched = append(matched, r)
	}
	return matched
}

// DetectConcerns returns the concern rules that match text, in table order.
func (a *Analyzer) DetectConcerns(text string) []model.ConcernRule {
	return a.matchConcerns(Fold(text))
}

func (a *Analyzer) matchConcerns(folded string) []model.ConcernRule {
	matched := make([]model.ConcernRule, 0)
	for _, r := range a.rules.Concerns {
		if containsAny(folded, r.Keywords) {
			matched = append(matched, r)
		}
	}
	return matched
}

// DetectPositives returns descriptions of the positive rules that match text.
func (a *Analyzer) DetectPositives(text string) []string {
	return a.matchPositives(Fold(text))
}

func (a *Analyzer) matchPositives(folded string) []string {
	out := make([]string, 0)
	for _, r := range a.rules.Positives {
		if containsAny(folded, r.Keywords) {
			out = append(out, r.Description)
		}
	}
	return out
}

// Analyze scores text and generates prose about subject. It never fails;
// empty or malformed text yields the neutral output.
// The result is tagged model.SourceProvidedText; callers retag as needed.
func (a *Analyzer) Analyze(text, subject string) *model.AnalysisResult {
	subject = subjectName(subject)
	folded := Fold(text)
	concerns := a.matchConcerns(folded)
	dataTypes := a.matchDataTypes(folded)

	res := model.NewAnalysisResult(subject, model.SourceProvidedText)
	res.Score = a.scoreFolded(folded)
	res.Scale = model.ScaleRisk
	for _, r := range dataTypes {
		res.DataTypes = append(res.DataTypes, r.Label)
	}
	for _, c := range concerns {
		res.Concerns = append(res.Concerns, c.Description)
	}
	if len(res.Concerns) == 0 {
		res.Concerns = []string{model.NoConcernsMessage}
	}
	res.Positives = a.matchPositives(folded)

	res.HarmfulPoints = harmfulPoints(subject, concerns)
	res.WorstData = worstData(dataTypes)
	res.Recommendation = recommendation(subject, len(concerns))
	if p, ok := a.platforms.lookup(subject); ok && p.Curated != nil {
		applyCurated(res, p.Curated)
	}

	sharingHigh := strings.Contains(folded, "advertising") || strings.Contains(folded, "partners")
	res.Assessment = assess(res, sharingHigh)
	return res
}

// AnalyzeProfile builds a result from a structured profile. The score uses
// the safety convention (see ScoreProfile).
func (a *Analyzer) AnalyzeProfile(p model.PolicyProfile) *model.AnalysisResult {
	name := subjectName(p.Name)

	res := model.NewAnalysisResult(name, model.SourcePredefined)
	res.Score = a.ScoreProfile(p)
	res.Scale = model.ScaleSafety
	res.DataTypes = append(res.DataTypes, p.DataTypes...)
	if len(res.DataTypes) > model.MaxDataTypes {
		res.DataTypes = res.DataTypes[:model.MaxDataTypes]
	}
	res.Concerns = a.ProfileConcerns(p)
	res.Positives = a.matchPositives(Fold(strings.Join([]string{p.Text, p.Sharing, p.Retention}, " ")))

	curated := &model.CuratedContent{
		HarmfulPoints:  fmt.Sprintf("%s collects extensive personal data and shares it with third parties for advertising purposes.", name),
		WorstData:      "Personal information and behavioral data used for profiling and targeting.",
		Recommendation: "Review privacy settings and limit data sharing where possible.",
	}
	if pl, ok := a.platforms.lookup(name); ok && pl.Curated != nil {
		curated = pl.Curated
	}
	applyCurated(res, curated)

	res.Assessment = assess(res, strings.Contains(Fold(p.Sharing), "advertising"))
	return res
}

// Generic returns the response used when no policy could be analyzed.
func (a *Analyzer) Generic(subject string) *model.AnalysisResult {
	subject = subjectName(subject)

	res := model.NewAnalysisResult(subject, model.SourceGeneric)
	res.Score = GenericScore
	res.Scale = model.ScaleRisk
	res.DataTypes = []string{"Contact Information", "Usage Patterns", "Device Information"}
	res.Concerns = []string{"Privacy policy could not be retrieved, so data practices are unknown"}
	res.HarmfulPoints = fmt.Sprintf("%s likely collects personal data including contact information, usage patterns, and device information. Without access to their privacy policy, the full extent of data collection is unknown.", subject)
	res.WorstData = "Contact information, usage patterns, and potentially location data, though specifics are unavailable without policy access."
	res.Recommendation = fmt.Sprintf("Contact %s directly for their privacy policy, or look for privacy information in their app or website footer.", subject)
	res.Assessment = assess(res, false)
	return res
}

// Platform returns the built-in platform matching name, if any.
func (a *Analyzer) Platform(name string) (model.Platform, bool) {
	return a.platforms.lookup(name)
}

// PlatformNames returns the names of all known platforms, sorted.
func (a *Analyzer) PlatformNames() []string {
	return a.platforms.names()
}

// PlatformComparison is one row of ComparePlatforms.
type PlatformComparison struct {
	Name      string `json:"name"`
	Known     bool   `json:"known"`
	Score     int    `json:"score"`
	DataCount int    `json:"dataCount"`
	Sharing   string `json:"sharing"`
}

// ComparePlatforms scores each named platform with ScoreProfile.
// Unknown names are scored against a generic profile and marked Known=false.
func (a *Analyzer) ComparePlatforms(names []string) []PlatformComparison {
	out := make([]PlatformComparison, 0, len(names))
	for _, n := range names {
		p, ok := a.platforms.lookup(n)
		profile := p.Profile
		if !ok {
			profile = defaultProfile(subjectName(n))
		}
		out = append(out, PlatformComparison{
			Name:      profile.Name,
			Known:     ok,
			Score:     a.ScoreProfile(profile),
			DataCount: len(profile.DataTypes),
			Sharing:   profile.Sharing,
		})
	}
	return out
}

// Category groups data-type labels for display.
type Category struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"Personal", []string{"photo", "name", "email", "location", "phone", "contact", "payment", "biometric", "health"}},
	{"Behavioral", []string{"usage", "swipe", "interaction", "browsing", "search", "like", "preference", "history"}},
	{"Technical", []string{"device", "ip", "browser", "cookie"}},
}

// CategorizeDataTypes groups labels into Personal, Behavioral, Technical
// and Social categories. Empty categories are omitted; order is fixed.
func CategorizeDataTypes(labels []string) []Category {
	buckets := map[string][]string{}
	for _, l := range labels {
		folded := Fold(l)
		name := "Social"
		for _, c := range categoryKeywords {
			if containsAny(folded, c.keywords) {
				name = c.name
				break
			}
		}
		buckets[name] = append(buckets[name], l)
	}

	out := make([]Category, 0, len(buckets))
	for _, name := range []string{"Personal", "Behavioral", "Technical", "Social"} {
		if ls := buckets[name]; len(ls) > 0 {
			out = append(out, Category{Name: name, Labels: ls})
		}
	}
	return out
}

func subjectName(s string) string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	if s == "" {
		return defaultSubject
	}
	return s
}

func applyCurated(res *model.AnalysisResult, c *model.CuratedContent) {
	res.HarmfulPoints = model.Truncate(c.HarmfulPoints, model.MaxHarmfulPointsLength)
	res.WorstData = model.Truncate(c.WorstData, model.MaxWorstDataLength)
	res.Recommendation = model.Truncate(c.Recommendation, model.MaxRecommendationLength)
}

// sortBySensitivity returns a copy of rules ordered by descending sensitivity.
// Ties keep detection order.
func sortBySensitivity(rules []model.DataTypeRule) []model.DataTypeRule {
	out := append([]model.DataTypeRule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sensitivity > out[j].Sensitivity
	})
	return out
}
