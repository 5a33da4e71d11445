package analyzer

import "github.com/nao1215/policyscan/internal/model"

// Scoring baselines.
const (
	// DefaultTextBaseline is where raw-text risk scoring starts.
	DefaultTextBaseline = 30

	// DefaultProfileBaseline is where structured safety scoring starts.
	DefaultProfileBaseline = 70

	// GenericScore is reported when no policy could be analyzed.
	GenericScore = 50
)

// DefaultRules returns the built-in keyword tables.
// A fresh copy is returned on every call.
func DefaultRules() model.RuleSet {
	return model.RuleSet{
		Baselines: model.ScoringBaselines{
			Text:    DefaultTextBaseline,
			Profile: DefaultProfileBaseline,
		},
		Concerns: []model.ConcernRule{
			{Name: "sell", Keywords: []string{"sell", "selling", "sold"}, Description: "may sell your personal data", Weight: 25},
			{Name: "third_party", Keywords: []string{"third party", "third-party", "partners"}, Description: "shares data with third parties", Weight: 15},
			{Name: "tracking", Keywords: []string{"track", "tracking", "monitor"}, Description: "tracks your online behavior", Weight: 15},
			{Name: "location", Keywords: []string{"location", "gps", "geolocation"}, Description: "collects location data", Weight: 10},
			{Name: "biometric", Keywords: []string{"biometric", "facial", "fingerprint"}, Description: "collects biometric data", Weight: 20},
			{Name: "retention", Keywords: []string{"indefinitely", "permanently", "forever"}, Description: "retains data indefinitely", Weight: 15},
		},
		Positives: []model.PositiveRule{
			{Name: "gdpr", Keywords: []string{"gdpr", "data protection", "user rights"}, Description: "References data protection rights", Bonus: 10},
			{Name: "deletion", Keywords: []string{"delete", "deletion", "remove data"}, Description: "Allows data deletion requests", Bonus: 5},
			{Name: "opt_out", Keywords: []string{"opt out", "opt-out", "unsubscribe"}, Description: "Offers opt-out controls", Bonus: 5},
		},
		DataTypes: []model.DataTypeRule{
			{Keyword: "email", Label: "Email Address", Sensitivity: 1},
			{Keyword: "phone", Label: "Phone Number", Sensitivity: 1},
			{Keyword: "location", Label: "Location Data", Sensitivity: 3},
			{Keyword: "photo", Label: "Photos", Sensitivity: 2},
			{Keyword: "message", Label: "Messages", Sensitivity: 2},
			{Keyword: "contact", Label: "Contacts", Sensitivity: 2},
			{Keyword: "device", Label: "Device Information", Sensitivity: 1},
			{Keyword: "ip address", Label: "IP Address", Sensitivity: 1},
			{Keyword: "cookie", Label: "Cookies", Sensitivity: 0},
			{Keyword: "browsing", Label: "Browsing History", Sensitivity: 2},
			{Keyword: "payment", Label: "Payment Information", Sensitivity: 2},
			{Keyword: "biometric", Label: "Biometric Data", Sensitivity: 3},
			{Keyword: "voice", Label: "Voice Data", Sensitivity: 2},
			{Keyword: "video", Label: "Video Data", Sensitivity: 1},
			{Keyword: "search", Label: "Search History", Sensitivity: 1},
			{Keyword: "preference", Label: "User Preferences", Sensitivity: 0},
			{Keyword: "gps", Label: "Location Data", Sensitivity: 3},
			{Keyword: "credit card", Label: "Payment Information", Sensitivity: 2},
			{Keyword: "health", Label: "Health Data", Sensitivity: 3},
			{Keyword: "fingerprint", Label: "Biometric Data", Sensitivity: 3},
		},
		Profile: []model.ProfileRule{
			{Name: "indefinite_retention", Field: model.ProfileFieldRetention, Keyword: "indefinitely", Penalty: 15, Concern: "Data retained indefinitely"},
			{Name: "advertising", Field: model.ProfileFieldSharing, Keyword: "advertising", Penalty: 10, Concern: "Shared with advertisers"},
			{Name: "extensive_collection", Field: model.ProfileFieldDataTypeCount, Threshold: 5, Concern: "Collects extensive personal data"},
			{Name: "many_data_types", Field: model.ProfileFieldDataTypeCount, Threshold: 6, Penalty: 10},
		},
	}
}

// compiledRules is a RuleSet with every keyword folded once up front.
type compiledRules struct {
	model.RuleSet
}

func compile(rs model.RuleSet) compiledRules {
	out := model.RuleSet{
		Baselines: rs.Baselines,
		Concerns:  make([]model.ConcernRule, len(rs.Concerns)),
		Positives: make([]model.PositiveRule, len(rs.Positives)),
		DataTypes: make([]model.DataTypeRule, len(rs.DataTypes)),
		Profile:   make([]model.ProfileRule, len(rs.Profile)),
	}
	for i, r := range rs.Concerns {
		r.Keywords = foldAll(r.Keywords)
		out.Concerns[i] = r
	}
	for i, r := range rs.Positives {
		r.Keywords = foldAll(r.Keywords)
		out.Positives[i] = r
	}
	for i, r := range rs.DataTypes {
		r.Keyword = Fold(r.Keyword)
		out.DataTypes[i] = r
	}
	for i, r := range rs.Profile {
		r.Keyword = Fold(r.Keyword)
		out.Profile[i] = r
	}
	return compiledRules{RuleSet: out}
}
