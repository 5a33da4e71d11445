package analyzer

import (
	"fmt"
	"strings"

	"github.com/nao1215/policyscan/internal/model"
)

// Intent is the topic a chat question is routed to.
type Intent int

const (
	// IntentOther is the catch-all.
	IntentOther Intent = iota
	// IntentRisk asks which data is most dangerous.
	IntentRisk
	// IntentProtection asks how to protect privacy.
	IntentProtection
	// IntentDeletion asks how to delete data.
	IntentDeletion
	// IntentSharing asks who receives the data.
	IntentSharing
)

// String returns the intent name.
func (i Intent) String() string {
	switch i {
	case IntentRisk:
		return "risk"
	case IntentProtection:
		return "protection"
	case IntentDeletion:
		return "deletion"
	case IntentSharing:
		return "sharing"
	default:
		return "other"
	}
}

// intentKeywords is checked in order; the first intent with a match wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentRisk, []string{"risky", "risk", "dangerous", "danger"}},
	{IntentProtection, []string{"protect", "privacy"}},
	{IntentDeletion, []string{"delete", "deleting", "deletion", "erase", "remove my"}},
	{IntentSharing, []string{"share", "sharing", "third party", "third-party", "sell", "sold"}},
}

// riskyDataKeywords marks data types the risk answer highlights.
var riskyDataKeywords = []string{"location", "biometric", "message", "contact"}

// ClassifyIntent routes a question to an Intent by keyword priority.
func ClassifyIntent(question string) Intent {
	folded := Fold(question)
	for _, ik := range intentKeywords {
		if containsAny(folded, ik.keywords) {
			return ik.intent
		}
	}
	return IntentOther
}

// ChatContext is what the chat answer knows about the subject.
type ChatContext struct {
	Subject   string
	DataTypes []string
	Concerns  []string
	Sharing   string
}

// ChatContextFor builds a context from the built-in profile for subject,
// or from a generic profile when the subject is unknown.
func (a *Analyzer) ChatContextFor(subject string) ChatContext {
	subject = subjectName(subject)
	profile := defaultProfile(subject)
	if p, ok := a.platforms.lookup(subject); ok {
		profile = p.Profile
	}
	return ChatContext{
		Subject:   profile.Name,
		DataTypes: profile.DataTypes,
		Concerns:  a.ProfileConcerns(profile),
		Sharing:   profile.Sharing,
	}
}

// ChatContextFromResult builds a context from an earlier analysis.
func ChatContextFromResult(res *model.AnalysisResult) ChatContext {
	sharing := ""
	if res.Assessment != nil && res.Assessment.Sharing == "High" {
		sharing = "advertising and business partners"
	}
	return ChatContext{
		Subject:   res.CompanyName,
		DataTypes: res.DataTypes,
		Concerns:  res.Concerns,
		Sharing:   sharing,
	}
}

// Answer returns a templated reply to question. It never fails.
func (a *Analyzer) Answer(question string, ctx ChatContext) string {
	subject := subjectName(ctx.Subject)

	switch ClassifyIntent(question) {
	case IntentRisk:
		risky := make([]string, 0, maxProseItems)
		for _, d := range ctx.DataTypes {
			if containsAny(Fold(d), riskyDataKeywords) {
				risky = append(risky, d)
			}
		}
		if len(risky) == 0 {
			risky = ctx.DataTypes
		}
		if len(risky) == 0 {
			risky = []string{"personal information"}
		}
		return fmt.Sprintf("The riskiest data %s collects includes: %s. This data can be used for detailed profiling and tracking.",
			subject, strings.Join(risky[:min(len(risky), maxProseItems)], ", "))

	case IntentProtection:
		return fmt.Sprintf("To protect your privacy on %s:\n"+
			"- Review and adjust privacy settings\n"+
			"- Limit location sharing\n"+
			"- Be selective about what you post\n"+
			"- Regularly review connected apps\n"+
			"- Consider deleting old data", subject)

	case IntentDeletion:
		return fmt.Sprintf("To delete your %s data:\n"+
			"- Go to account settings\n"+
			"- Look for 'Delete Account' or 'Data & Privacy'\n"+
			"- Download your data first if needed\n"+
			"- Note: some data may be retained for legal purposes", subject)

	case IntentSharing:
		sharing := ctx.Sharing
		if sharing == "" {
			sharing = "various partners"
		}
		return fmt.Sprintf("%s shares your data with: %s. This means your information may be used beyond the platform itself.",
			subject, sharing)

	default:
		concerns := ctx.Concerns
		if len(concerns) == 0 {
			concerns = []string{model.NoConcernsMessage}
		}
		return fmt.Sprintf("Based on %s's policy, they collect %d types of data. The main concerns are: %s. Ask about risks, sharing, deletion or protection for more detail.",
			subject, len(ctx.DataTypes), strings.Join(concerns[:min(len(concerns), 2)], ", "))
	}
}
