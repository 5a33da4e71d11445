package model

// PolicyProfile is a structured description of a platform's policy.
type PolicyProfile struct {
	Name      string   `yaml:"name" json:"name"`
	Text      string   `yaml:"text,omitempty" json:"text"`
	DataTypes []string `yaml:"dataTypes" json:"dataTypes"`
	Sharing   string   `yaml:"sharing" json:"sharing"`
	Retention string   `yaml:"retention" json:"retention"`
}

// CuratedContent is hand-written prose for a well-known platform.
// When present it replaces generated prose verbatim.
type CuratedContent struct {
	HarmfulPoints  string `yaml:"harmfulPoints" json:"harmfulPoints"`
	WorstData      string `yaml:"worstData" json:"worstData"`
	Recommendation string `yaml:"recommendation" json:"recommendation"`
}

// Platform couples a built-in profile with its curated prose.
type Platform struct {
	Profile PolicyProfile   `yaml:"profile"`
	Curated *CuratedContent `yaml:"curated,omitempty"`
}
