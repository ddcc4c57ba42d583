// internal/prompt/prompt_test.go
package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anyanwuihueze/japa-genie-active/internal/knowledge"
)

func TestChatPromptRendering(t *testing.T) {
	in := ChatInput{
		Question:  "What visas let a software engineer work in Canada?",
		WishCount: 1,
		MaxFree:   3,
	}

	got := Chat(in)

	assert.Contains(t, got, "You are Japa Genie")
	assert.Contains(t, got, "User Question: What visas let a software engineer work in Canada?")
	assert.Contains(t, got, Disclaimer)
	assert.Contains(t, got, `"answer" (string)`)
}

func TestChatPromptIdempotent(t *testing.T) {
	in := ChatInput{
		Question:  "Do I need proof of funds for a student visa?",
		WishCount: 2,
		MaxFree:   3,
		Snippets: []knowledge.Snippet{
			{Source: "ircc.gc.ca", Text: "Proof of financial support is required for study permits."},
		},
	}

	first := Chat(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Chat(in))
	}
}

func TestChatPromptSnippetsPrecedeInstructions(t *testing.T) {
	snippetText := "Applicants must show at least CAD 20,635 in available funds."
	in := ChatInput{
		Question:  "How much money do I need for a student visa?",
		WishCount: 1,
		MaxFree:   3,
		Snippets: []knowledge.Snippet{
			{Source: "visa_facts", Text: snippetText},
		},
	}

	got := Chat(in)

	snippetIdx := strings.Index(got, snippetText)
	directiveIdx := strings.Index(got, PrimarySourceDirective)
	instructionsIdx := strings.Index(got, "Answer the user's question clearly")

	assert.True(t, snippetIdx >= 0, "snippet text missing from prompt")
	assert.True(t, directiveIdx >= 0, "precedence directive missing from prompt")
	assert.True(t, snippetIdx < directiveIdx, "snippet must come before the precedence directive")
	assert.True(t, directiveIdx < instructionsIdx, "knowledge block must come before operational instructions")
}

func TestChatPromptWithoutSnippetsOmitsDirective(t *testing.T) {
	got := Chat(ChatInput{Question: "hi", WishCount: 1, MaxFree: 3})
	assert.NotContains(t, got, PrimarySourceDirective)
	assert.NotContains(t, got, "Reference information:")
}

func TestWishDirective(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		maxFree  int
		contains string
	}{
		{name: "first wish", count: 1, maxFree: 3, contains: "first wish"},
		{name: "middle wish", count: 2, maxFree: 3, contains: "wish 2 of 3"},
		{name: "final free wish", count: 3, maxFree: 3, contains: "final free wish"},
		{name: "beyond quota", count: 4, maxFree: 3, contains: "unlimited wishes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chat(ChatInput{Question: "q", WishCount: tt.count, MaxFree: tt.maxFree})
			assert.Contains(t, got, tt.contains)
		})
	}

	t.Run("unknown count renders no directive", func(t *testing.T) {
		got := Chat(ChatInput{Question: "q", MaxFree: 3})
		assert.NotContains(t, got, "wish")
	})
}

func TestSessionGreeting(t *testing.T) {
	assert.Equal(t,
		"Welcome, Pathfinder! I'm Japa Genie, your magical guide to global relocation. I can grant you 3 powerful wishes to map out your visa journey. What is your first wish?",
		SessionGreeting(3))
}

func TestInsightsPrompt(t *testing.T) {
	got := Insights("Cheapest European countries for a freelance visa?", []knowledge.Snippet{
		{Source: "visa_knowledge", Text: "Portugal's D8 visa requires proof of remote income."},
	})

	assert.Contains(t, got, "expert immigration analyst")
	assert.Contains(t, got, "3-5 highly relevant")
	assert.Contains(t, got, "Portugal's D8 visa")
	assert.Contains(t, got, PrimarySourceDirective)
	assert.Contains(t, got, `"insights" (array)`)
	assert.Contains(t, got, `"chartData" (object, optional)`)

	assert.Equal(t, got, Insights("Cheapest European countries for a freelance visa?", []knowledge.Snippet{
		{Source: "visa_knowledge", Text: "Portugal's D8 visa requires proof of remote income."},
	}))
}

func TestCanvasPrompt(t *testing.T) {
	in := CanvasInput{
		Profile:     "Nigerian software engineer, BSc, 5 years experience",
		Destination: "Canada",
		Budget:      8000,
	}

	got := Canvas(in)

	assert.Contains(t, got, "expert AI visa consultant")
	assert.Contains(t, got, "- Profile: Nigerian software engineer, BSc, 5 years experience")
	assert.Contains(t, got, "- Destination: Canada")
	assert.Contains(t, got, "- Budget (USD): 8000")
	assert.Contains(t, got, `"visaOptions" (array)`)
	assert.Contains(t, got, `"insightsSummary" (string)`)
	assert.Equal(t, got, Canvas(in))
}

func TestRejectionPrompt(t *testing.T) {
	in := RejectionInput{
		VisaType:        "Student",
		Destination:     "UK",
		RejectionReason: "insufficient funds evidence",
		UserBackground:  "admitted to a master's program",
	}

	got := Rejection(in)

	assert.Contains(t, got, "visa rejection analysis")
	assert.Contains(t, got, "- Visa Type: Student")
	assert.Contains(t, got, "- Official Rejection Reason: insufficient funds evidence")
	assert.Contains(t, got, `"strategy" (string)`)
}

func TestSiteAssistantPrompt(t *testing.T) {
	got := SiteAssistant("How much does the premium plan cost?")

	assert.Contains(t, got, "sales and support assistant")
	assert.Contains(t, got, "NO connection to the country Japan")
	assert.Contains(t, got, "User Question: How much does the premium plan cost?")
	assert.Contains(t, got, `"answer" (string)`)
}
