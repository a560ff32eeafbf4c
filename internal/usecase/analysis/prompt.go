package analysis

import (
	"fmt"
	"strings"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
)

const analystSystemPrompt = `You are a startup analyst. Evaluate the idea and respond with a single JSON object, no prose outside it, using exactly these fields:
{
  "idea_title": string,
  "domain": string,
  "category_tags": [string],
  "competitors": [{"name": string, "description": string, "strengths": [string], "weaknesses": [string], "stage": string, "market_position": string}],
  "scores": {"market_viability": 0-100, "innovation_index": 0-100, "competition_intensity": 0-100, "scalability_potential": 0-100, "execution_feasibility": 0-100},
  "market_outlook": string,
  "competitive_advantages": [string],
  "critical_weaknesses": [string],
  "market_positioning": string,
  "actionable_advice": [string],
  "final_verdict": "Risky" | "Promising" | "Viable" | "Exceptional",
  "verdict_reasoning": string
}`

const researchSystemPrompt = `You are a market research assistant. Summarize the current competitive landscape, recent funding activity, and market trends relevant to the startup idea below. Be factual and concise.`

// buildAnalysisMessages assembles the analyst conversation from the idea,
// the retrieved prior-idea context, and the optional research brief.
func buildAnalysisMessages(
	idea domain.IdeaInput, retrieved retrieval.Context, research *domain.ResearchBrief,
) []domain.ChatMessage {
	var b strings.Builder

	fmt.Fprintf(&b, "Startup idea: %s\n", idea.Title)
	fmt.Fprintf(&b, "Summary: %s\n", idea.Summary)
	if idea.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", idea.Description)
	}
	if idea.Audience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", idea.Audience)
	}
	if idea.MarketSize != "" {
		fmt.Fprintf(&b, "Estimated market size: %s\n", idea.MarketSize)
	}
	if idea.TeamStrength > 0 {
		fmt.Fprintf(&b, "Founder-reported team strength: %d/10\n", idea.TeamStrength)
	}
	if idea.Traction != "" {
		fmt.Fprintf(&b, "Current traction: %s\n", idea.Traction)
	}

	if retrieved.HasSimilar {
		b.WriteString("\nPrior similar ideas analyzed by this system:\n")
		b.WriteString(retrieved.Insights)
		b.WriteString("\n")
		for _, p := range retrieved.Patterns {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	if research != nil && research.Content != "" {
		b.WriteString("\nMarket research brief:\n")
		b.WriteString(research.Content)
		b.WriteString("\n")
	}

	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: analystSystemPrompt},
		{Role: domain.ChatRoleUser, Content: b.String()},
	}
}

// buildResearchMessages assembles the research pre-pass conversation.
func buildResearchMessages(idea domain.IdeaInput) []domain.ChatMessage {
	content := fmt.Sprintf("Idea: %s\nSummary: %s\nTarget audience: %s",
		idea.Title, idea.Summary, idea.Audience)

	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: researchSystemPrompt},
		{Role: domain.ChatRoleUser, Content: content},
	}
}
