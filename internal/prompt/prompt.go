// internal/prompt/prompt.go
// Package prompt renders the instruction strings sent to the generation
// backend. Templates are pure functions of their inputs: rendering the same
// input with the same snippets yields a byte-identical string.
package prompt

import (
	"fmt"
	"strings"

	"github.com/anyanwuihueze/japa-genie-active/internal/knowledge"
	"github.com/anyanwuihueze/japa-genie-active/internal/schema"
)

const (
	// Disclaimer is the fixed reminder every chat answer must end with.
	Disclaimer = "Remember to always double-check these details with the official government embassy or consulate website for the most current information!"

	// PrimarySourceDirective tells the model that retrieved snippets beat
	// its own priors. It must appear verbatim whenever snippets are
	// rendered, because models otherwise default to their own knowledge.
	PrimarySourceDirective = "IMPORTANT: Treat the reference information above as your primary source. Fall back to your own knowledge only where the reference information does not cover the question."

	// Apology replaces model text on a failed turn.
	Apology = "Oops! Something went wrong. Please check your connection and try again."
)

// SessionGreeting is the first transcript message of a new session.
func SessionGreeting(maxFree int) string {
	return fmt.Sprintf("Welcome, Pathfinder! I'm Japa Genie, your magical guide to global relocation. I can grant you %d powerful wishes to map out your visa journey. What is your first wish?", maxFree)
}

// ChatInput carries everything the chat template needs.
type ChatInput struct {
	Question  string
	WishCount int
	MaxFree   int
	Snippets  []knowledge.Snippet
}

// Chat renders the visa chat assistant prompt.
func Chat(in ChatInput) string {
	var parts []string

	parts = append(parts, "You are Japa Genie, an expert AI guide for visa applications. Your persona is friendly, knowledgeable, and encouraging. Your goal is to provide helpful and clear information to users, empowering them on their journey.")
	parts = append(parts, knowledgeBlock(in.Snippets)...)
	parts = append(parts, fmt.Sprintf("\nUser Question: %s", in.Question))

	if directive := wishDirective(in.WishCount, in.MaxFree); directive != "" {
		parts = append(parts, "\n"+directive)
	}

	parts = append(parts, "\nAnswer the user's question clearly and directly. Provide actionable advice where possible.")
	parts = append(parts, fmt.Sprintf("\nIMPORTANT: At the end of your response, you MUST include the following friendly reminder, separated by a newline:\n%q", Disclaimer))
	parts = append(parts, "\n"+schema.ChatAssistant().OutputInstructions())

	return strings.Join(parts, "\n")
}

// wishDirective is a pure function of the current count so the tone around
// the quota boundary is stable: the question that reaches the limit still
// gets a full answer, with an upgrade nudge rather than a refusal.
func wishDirective(n, maxFree int) string {
	switch {
	case n <= 0 || maxFree <= 0:
		return ""
	case n == 1:
		return "This is the user's first wish. Open by welcoming them warmly as their genie guide before answering."
	case n < maxFree:
		return fmt.Sprintf("This is wish %d of %d. Acknowledge it briefly and remind the user how many free wishes remain.", n, maxFree)
	case n == maxFree:
		return "This is the user's final free wish. Give your most complete answer, then gently mention that upgrading unlocks unlimited wishes."
	default:
		return "The user has unlimited wishes. Skip the wish framing and answer directly."
	}
}

// Insights renders the insights generator prompt.
func Insights(question string, snippets []knowledge.Snippet) string {
	var parts []string

	parts = append(parts, "You are an expert immigration analyst. Based on the user's question, your task is to generate a list of 3-5 highly relevant, actionable, and factual insights.")
	parts = append(parts, knowledgeBlock(snippets)...)
	parts = append(parts, "\nFor each insight, provide a clear headline and a concise detail. If there is a single, most-relevant official URL (e.g., an official government immigration site, a specific university application portal), include it. Do not include generic links.")
	parts = append(parts, "\nAdditionally, generate the following structured data where it is genuinely helpful:")
	parts = append(parts, "1. Cost Estimates: a breakdown of 3-5 key costs associated with the query (e.g., application fee, insurance, rent).")
	parts = append(parts, "2. Visa Alternatives: a list of 2-3 alternative visa paths or related options.")
	parts = append(parts, "3. Chart Data: data for a simple bar chart comparing 3-5 relevant items, with a clear title and data points with names and numeric values. Example topics could be 'Cost of Living Comparison' or 'Visa Processing Times in Weeks'.")
	parts = append(parts, fmt.Sprintf("\nUser's Question: %s", question))
	parts = append(parts, "\nGenerate insights and structured data that would be genuinely helpful for someone asking this question. Focus on facts, requirements, costs, or key considerations.")
	parts = append(parts, "\n"+schema.InsightsGenerator().OutputInstructions())

	return strings.Join(parts, "\n")
}

// CanvasInput carries the personalized visa insights inputs.
type CanvasInput struct {
	Profile     string
	Destination string
	Budget      float64
}

// Canvas renders the personalized visa insights prompt.
func Canvas(in CanvasInput) string {
	var parts []string

	parts = append(parts, "You are an expert AI visa consultant. Your task is to provide personalized visa insights based on the user's profile, intended destination, and budget.")
	parts = append(parts, "\nAnalyze the provided information and generate a structured response with at least three potential visa options, a detailed cost breakdown, and a summary of the user's profile highlighting their strengths and the most promising visa paths given their qualifications and budget.")
	parts = append(parts, "\nUser Information:")
	parts = append(parts, fmt.Sprintf("- Profile: %s", in.Profile))
	parts = append(parts, fmt.Sprintf("- Destination: %s", in.Destination))
	parts = append(parts, fmt.Sprintf("- Budget (USD): %g", in.Budget))
	parts = append(parts, "\nProvide a realistic and helpful analysis to guide the user's visa application journey.")
	parts = append(parts, "\n"+schema.VisaInsightsCanvas().OutputInstructions())

	return strings.Join(parts, "\n")
}

// RejectionInput carries the rejection reversal inputs.
type RejectionInput struct {
	VisaType        string
	Destination     string
	RejectionReason string
	UserBackground  string
}

// Rejection renders the rejection reversal strategy prompt.
func Rejection(in RejectionInput) string {
	var parts []string

	parts = append(parts, "You are an expert immigration consultant specializing in visa rejection analysis. Your task is to create a detailed, actionable comeback strategy for an applicant who was rejected.")
	parts = append(parts, "\nThe applicant's details are as follows:")
	parts = append(parts, fmt.Sprintf("- Visa Type: %s", in.VisaType))
	parts = append(parts, fmt.Sprintf("- Destination Country: %s", in.Destination))
	parts = append(parts, fmt.Sprintf("- User Background: %s", in.UserBackground))
	parts = append(parts, fmt.Sprintf("- Official Rejection Reason: %s", in.RejectionReason))
	parts = append(parts, "\nBased on this information, provide a comprehensive strategy as markdown. The strategy should:")
	parts = append(parts, "1. Analyze the likely root causes of the rejection, even beyond the official reason.")
	parts = append(parts, "2. Provide a step-by-step plan to address each identified issue.")
	parts = append(parts, "3. Suggest specific documents to strengthen the new application.")
	parts = append(parts, "4. Offer advice on how to present their case more effectively in a new application or interview.")
	parts = append(parts, "5. Maintain an encouraging but realistic tone.")
	parts = append(parts, "\n"+schema.RejectionReversal().OutputInstructions())

	return strings.Join(parts, "\n")
}

// SiteAssistant renders the product support assistant prompt. This persona
// is scoped to the product itself and redirects visa questions to the main
// assistant.
func SiteAssistant(question string) string {
	var parts []string

	parts = append(parts, `You are a friendly and helpful sales and support assistant for the Japa Genie website. "Japa" is a colloquial term for immigration or relocation, it has NO connection to the country Japan.`)
	parts = append(parts, "Your goal is to answer questions about the Japa Genie service, explain its value as a global visa assistance tool, and guide users to explore the features or sign up.")
	parts = append(parts, "\nYour knowledge is limited to the Japa Genie platform. You do NOT answer questions about specific visa applications, immigration law, or personal travel plans. If a user asks a visa-related question, gently redirect them to use the main \"AI Assistant\" page for expert visa help.")
	parts = append(parts, "\nAnswer questions about:")
	parts = append(parts, "- What Japa Genie is and how it helps with visa applications worldwide.")
	parts = append(parts, "- The features available (e.g., Mock Interview, Document Checker, Progress Map).")
	parts = append(parts, "- The pricing plans and what they include.")
	parts = append(parts, "- The benefits of using the service.")
	parts = append(parts, "\nKeep your answers concise, friendly, and encouraging. Always try to point the user toward a relevant page on the site, like '/pricing' or '/features'. Do NOT mention the country Japan.")
	parts = append(parts, fmt.Sprintf("\nUser Question: %s", question))
	parts = append(parts, "\n"+schema.SiteAssistant().OutputInstructions())

	return strings.Join(parts, "\n")
}

// knowledgeBlock renders retrieved snippets ahead of the operational
// instructions so the precedence rule reads in source order.
func knowledgeBlock(snippets []knowledge.Snippet) []string {
	if len(snippets) == 0 {
		return nil
	}

	parts := []string{"\nReference information:"}
	for _, s := range snippets {
		parts = append(parts, fmt.Sprintf("- [%s] %s", s.Source, s.Text))
	}
	parts = append(parts, "\n"+PrimarySourceDirective)
	return parts
}
