package llm

import (
	"fmt"
	"strings"

	"github.com/nao1215/policyscan/internal/analyzer"
	"github.com/nao1215/policyscan/internal/model"
)

// maxPromptPolicyChars is how much policy text is sent to the model.
const maxPromptPolicyChars = 8000

// HarmfulPrompt asks for the three narrative fields of an analysis in the
// labeled format that ParseHarmfulResponse reads.
func HarmfulPrompt(subject, policyText string) string {
	return fmt.Sprintf(`You are a privacy expert. Analyze this privacy policy and extract ONLY the most harmful or concerning points that users should worry about.

Focus on:
1. Data that could be used to harm, manipulate, or exploit users
2. Sharing practices that put users at risk
3. Retention policies that are excessive
4. Lack of user control over their data

Company: %s
Policy text: %s

Respond in exactly this format:
HARMFUL_POINTS: [2-3 sentences about the most concerning practices]
WORST_DATA: [1-2 sentences about the most dangerous data they collect]
RECOMMENDATION: [1 sentence about what the user should do]

Be direct and focus only on what is actually harmful to users.`, subject, model.Truncate(policyText, maxPromptPolicyChars))
}

// ChatPrompt asks a free-form question with what is known about the subject
// as context.
func ChatPrompt(question string, ctx analyzer.ChatContext) string {
	sharing := ctx.Sharing
	if sharing == "" {
		sharing = "Unknown"
	}
	return fmt.Sprintf(`You are a privacy expert assistant. Answer this question about %s's privacy policy:

Question: %s

Context:
Platform: %s
Data Types: %s
Sharing: %s
Concerns: %s

Provide a helpful, accurate answer in a conversational tone. Be specific and actionable.`,
		ctx.Subject, question, ctx.Subject,
		strings.Join(ctx.DataTypes, ", "), sharing, strings.Join(ctx.Concerns, ", "))
}
