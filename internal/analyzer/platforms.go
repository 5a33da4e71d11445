package analyzer

import (
	"sort"
	"strings"

	"github.com/nao1215/policyscan/internal/model"
)

// defaultProfile is used for chat context when nothing is known about a subject.
func defaultProfile(name string) model.PolicyProfile {
	return model.PolicyProfile{
		Name:      name,
		Text:      name + " privacy policy",
		DataTypes: []string{"Personal Info", "Usage Data", "Device Info"},
		Sharing:   "Shares with partners",
		Retention: "Varies by data type",
	}
}

// BuiltinPlatforms returns the built-in platform profiles with curated prose.
func BuiltinPlatforms() []model.Platform {
	return []model.Platform{
		{
			Profile: model.PolicyProfile{
				Name:      "Tinder",
				Text:      "Tinder collects personal data including photos, messages, location, and usage patterns.",
				DataTypes: []string{"Photos", "Messages", "Location", "Device Info", "Usage Patterns", "Swipe History"},
				Sharing:   "Shares with Match Group companies and advertising partners",
				Retention: "Retains data indefinitely unless deleted",
			},
			Curated: &model.CuratedContent{
				HarmfulPoints:  "Tinder collects your exact location, biometric data from photos, and tracks your swiping patterns to build detailed behavioral profiles. This intimate data is shared across Match Group's many companies and kept indefinitely, even after you delete your account.",
				WorstData:      "Your precise location, facial recognition data and a record of who you are attracted to, which together map your romantic preferences and physical movements.",
				Recommendation: "Turn off location services, avoid uploading clear face photos, and delete your account when you are not actively using it.",
			},
		},
		{
			Profile: model.PolicyProfile{
				Name:      "Facebook",
				Text:      "Facebook collects extensive data including posts, likes, friends, and browsing activity.",
				DataTypes: []string{"Posts", "Photos", "Friends List", "Likes", "Location", "Browsing History", "Ad Interactions"},
				Sharing:   "Shares with Meta companies, advertisers, and third-party apps",
				Retention: "Retains most data permanently",
			},
			Curated: &model.CuratedContent{
				HarmfulPoints:  "Facebook follows your activity across much of the web, builds shadow profiles of people who never signed up through your contacts, and tunes its feed to maximize engagement. Data is collected even when you are not using Facebook.",
				WorstData:      "Browsing history from sites outside Facebook, location history, and psychological profiles used to influence what you see and believe.",
				Recommendation: "Use Facebook in a separate browser, turn off location tracking, and regularly review the data Facebook holds about you.",
			},
		},
		{
			Profile: model.PolicyProfile{
				Name:      "Finn.no",
				Text:      "Finn.no collects personal information to provide marketplace services, including contact details, location for listings, and usage data. As a Norwegian company, Finn follows strict GDPR compliance and privacy-by-design principles.",
				DataTypes: []string{"Name & Contact Info", "Location Data", "Listing Information", "Search History", "Device Information", "Usage Analytics"},
				Sharing:   "Limited sharing with service providers and advertisers. No data sold to third parties",
				Retention: "Data retained as long as account is active, deleted upon request",
			},
			Curated: &model.CuratedContent{
				HarmfulPoints:  "Finn.no tracks your searches and browsing to profile your interests, income level and life situation. That profile is shared with advertising partners and could be used for price discrimination.",
				WorstData:      "Financial profiling built from what you search for and buy, which reveals your economic situation and personal needs.",
				Recommendation: "Browse in private mode, avoid searching for sensitive items you do not intend to buy, and clear your search history regularly.",
			},
		},
		{
			Profile: model.PolicyProfile{
				Name:      "Instagram",
				Text:      "Instagram collects photos, videos, messages, and extensive behavioral data for advertising purposes.",
				DataTypes: []string{"Photos", "Videos", "Stories", "Messages", "Location", "Browsing Behavior", "Ad Interactions"},
				Sharing:   "Shares extensively with Meta companies and advertising partners",
				Retention: "Retains data indefinitely for business purposes",
			},
			Curated: &model.CuratedContent{
				HarmfulPoints:  "Instagram runs automated analysis on your photos to infer emotions, relationships and lifestyle. It measures how long you look at each post and uses that to shape your feed and keep you scrolling.",
				WorstData:      "Inferences drawn from your photos about relationships and wellbeing, plus detailed viewing behavior used for algorithmic targeting.",
				Recommendation: "Limit uploads that show other people, turn off activity tracking, and set daily time limits.",
			},
		},
		{
			Profile: model.PolicyProfile{
				Name:      "TikTok",
				Text:      "TikTok collects video content, biometric data, device information, and behavioral patterns.",
				DataTypes: []string{"Videos", "Biometric Data", "Voice Data", "Location", "Device Info", "Browsing History", "Contacts"},
				Sharing:   "Shares with ByteDance companies and may transfer data internationally",
				Retention: "Retains data for business operations and legal compliance",
			},
			Curated: &model.CuratedContent{
				HarmfulPoints:  "TikTok collects biometric identifiers such as face and voice prints, has read clipboard contents, and transfers data to its parent company abroad where foreign authorities may request access. Tracking continues in the background.",
				WorstData:      "Face and voice prints, keystroke patterns, clipboard contents, and behavioral data that may be reachable by foreign governments.",
				Recommendation: "Do not use TikTok for sensitive communication, turn off microphone access, and weigh where your data is stored before signing up.",
			},
		},
		{
			Profile: model.PolicyProfile{
				Name:      "WhatsApp",
				Text:      "WhatsApp collects metadata, contact information, and usage data while providing end-to-end encryption for messages.",
				DataTypes: []string{"Phone Number", "Contacts", "Profile Info", "Message Metadata", "Location", "Device Info"},
				Sharing:   "Shares metadata with Meta companies for advertising on other platforms",
				Retention: "Messages stored on device, metadata retained by company",
			},
			Curated: &model.CuratedContent{
				HarmfulPoints:  "Messages are encrypted, but WhatsApp records who you talk to, when and for how long. That metadata is shared with Meta for advertising and exposes your social network and habits.",
				WorstData:      "A map of your social graph, your communication patterns, and location data that reveals daily routines.",
				Recommendation: "Use Signal for sensitive conversations, turn off read receipts and last seen, and limit location sharing.",
			},
		},
	}
}

// platformIndex maps folded lookup keys to platforms.
type platformIndex map[string]model.Platform

func newPlatformIndex(platforms []model.Platform) platformIndex {
	idx := make(platformIndex, len(platforms))
	for _, p := range platforms {
		idx[platformKey(p.Profile.Name)] = p
	}
	return idx
}

// platformKey folds a name and drops a leading "www." and a trailing ".com"
// so that "facebook.com", "Facebook" and "www.facebook.com" share a key.
func platformKey(name string) string {
	k := Fold(strings.TrimSpace(name))
	k = strings.TrimPrefix(k, "www.")
	k = strings.TrimSuffix(k, ".com")
	return k
}

func (idx platformIndex) lookup(name string) (model.Platform, bool) {
	p, ok := idx[platformKey(name)]
	return p, ok
}

// names returns the display names of all platforms, sorted.
func (idx platformIndex) names() []string {
	out := make([]string, 0, len(idx))
	for _, p := range idx {
		out = append(out, p.Profile.Name)
	}
	sort.Strings(out)
	return out
}
