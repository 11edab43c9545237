package answer

import "strings"

// Instruction opens every question-answering prompt
const Instruction = "Answer the question based on the following Jira tickets. " +
	"Use only the information in these tickets. If they do not contain the answer, say so."

// FallbackContext replaces the ticket context whenever the evidence is too weak.
// It is sent verbatim and tells the model not to improvise.
const FallbackContext = "No sufficiently relevant tickets were found for this question. " +
	"Reply that the ticket history does not contain enough evidence to answer it, " +
	"and do not guess at causes or fixes."

// InsightInstruction is the system prompt for executive summaries
const InsightInstruction = "You are a senior data analyst summarizing incidents from Jira maintenance logs. " +
	"Write in professional, clear English suitable for a weekly IT summary."

const insightSections = "Write a structured executive summary with the following sections:\n\n" +
	"**Findings:** Summarize key recurring problems observed across the tickets.\n" +
	"**Root Causes:** Identify likely underlying causes (e.g., hardware, network, vendor coordination).\n" +
	"**Recommendations:** Provide 2-3 concise, actionable recommendations to prevent future incidents."

// BuildPrompt lays out instruction, context and the literal question
func BuildPrompt(instruction, context, question string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\nAnswer:")
	return b.String()
}

// BuildInsightPrompt asks for an executive summary of the tickets in context.
// Pair it with InsightInstruction as the system prompt.
func BuildInsightPrompt(context, question string) string {
	var b strings.Builder
	b.WriteString("Focus: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nBelow are extracted ticket details:\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(insightSections)
	return b.String()
}
