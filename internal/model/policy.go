package model

import "time"

// PolicyDocument is the result of locating and retrieving a privacy policy
// for one domain. A value is always returned, even when nothing could be
// fetched; Retrieved and FailureReason tell the caller what happened.
type PolicyDocument struct {
	// Website is the normalized root URL that was analyzed.
	Website string `json:"website"`

	// CompanyName is the display name derived from the page title or domain.
	CompanyName string `json:"companyName"`

	// SourceURL is the page the text was retrieved from.
	// Empty when Retrieved is false.
	SourceURL string `json:"sourceUrl,omitempty"`

	// CandidateURLs is the ranked discovery result (at most five entries).
	CandidateURLs []string `json:"candidateUrls"`

	// RawText is the cleaned policy text (at most 10,000 characters).
	RawText string `json:"rawText,omitempty"`

	// Retrieved reports whether a candidate passed content validation.
	Retrieved bool `json:"retrieved"`

	// FailureReason is the last failure seen when Retrieved is false.
	FailureReason string `json:"failureReason,omitempty"`

	// Attempts records each retrieval attempt in order.
	Attempts []RetrievalAttempt `json:"attempts,omitempty"`

	// RetrievedAt is when discovery finished.
	RetrievedAt time.Time `json:"retrievedAt"`
}

// RetrievalAttempt is the outcome of fetching one candidate URL.
type RetrievalAttempt struct {
	URL    string `json:"url"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// NewPolicyDocument returns an empty, not-yet-retrieved document for website.
func NewPolicyDocument(website string) *PolicyDocument {
	return &PolicyDocument{
		Website:       website,
		CandidateURLs: make([]string, 0),
		Attempts:      make([]RetrievalAttempt, 0),
		RetrievedAt:   time.Now(),
	}
}

// Fail marks the document as not retrieved with the given reason.
func (d *PolicyDocument) Fail(reason string) {
	d.Retrieved = false
	d.SourceURL = ""
	d.RawText = ""
	d.FailureReason = reason
}
