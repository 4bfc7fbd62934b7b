package llm

import "strings"

// StandardDisclaimer prefixes every system prompt.
const StandardDisclaimer = "Respond only with factual, publicly available information. " +
	"Do not speculate, assume, hallucinate, or generate unverifiable content. " +
	"If a clear, direct answer is Not verifiable with public information, " +
	"state 'Not verifiable with public information' and explain why. " +
	"Link to sources where possible. " +
	"Keep responses brief, cohesive, and without excessive formatting or headings"

// SecurityExpertPrompt instructs the model for per-topic security analysis.
const SecurityExpertPrompt = `You are a blockchain security expert analyzing security risks.
Follow these steps:
1. Address the specific security risk asked
2. Provide concrete examples and data where possible
3. Cite all sources used
4. Only use factual, publicly verifiable information`

// KnowledgeExpertPrompt instructs the model for free-form questions.
const KnowledgeExpertPrompt = "You are a knowledgeable blockchain expert with deep understanding of " +
	"blockchain documentation, whitepapers, consensus mechanisms, and technical implementations."

// SystemPrompt joins the disclaimer with role instructions.
func SystemPrompt(role string) string {
	if strings.TrimSpace(role) == "" {
		return StandardDisclaimer
	}
	return StandardDisclaimer + "\n\n" + role
}

// AnalysisPrompt is the user message for one topic. The explorer line is
// left empty when no explorer URL is known so the line layout is stable.
// Extra details, when given, are appended to the topic prompt.
func AnalysisPrompt(subject, explorerURL, topicPrompt, extra string) string {
	var explorer string
	if u := strings.TrimSpace(explorerURL); u != "" {
		explorer = "Use block explorer at " + u + " for data."
	}
	prompt := strings.TrimSpace(topicPrompt)
	if e := strings.TrimSpace(extra); e != "" {
		prompt += " " + e
	}
	return "Analyze the security of " + strings.TrimSpace(subject) + " blockchain.\n" + explorer + "\n" + prompt
}

// QueryPrompt frames a free-form question, optionally about one chain.
func QueryPrompt(subject, question string) string {
	q := strings.TrimSpace(question)
	if s := strings.TrimSpace(subject); s != "" {
		return "Regarding the " + s + " blockchain: " + q
	}
	return q
}
