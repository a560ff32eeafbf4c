package domain

import "time"

// ScoreBreakdown holds the per-dimension scores returned by a provider.
type ScoreBreakdown struct {
	MarketViability      int `json:"market_viability"`
	InnovationIndex      int `json:"innovation_index"`
	CompetitionIntensity int `json:"competition_intensity"`
	ScalabilityPotential int `json:"scalability_potential"`
	ExecutionFeasibility int `json:"execution_feasibility"`
}

// Overall is the mean of the sub-scores, rounded to the nearest integer.
func (s ScoreBreakdown) Overall() int {
	sum := s.MarketViability + s.InnovationIndex + s.CompetitionIntensity +
		s.ScalabilityPotential + s.ExecutionFeasibility
	return (sum + 2) / 5
}

// Competitor describes one competitor identified during analysis.
type Competitor struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Stage          string   `json:"stage"`
	MarketPosition string   `json:"market_position"`
}

// AnalysisResult is the parsed outcome of one provider call.
type AnalysisResult struct {
	IdeaTitle             string         `json:"idea_title"`
	Domain                string         `json:"domain"`
	CategoryTags          []string       `json:"category_tags"`
	Competitors           []Competitor   `json:"competitors"`
	Scores                ScoreBreakdown `json:"scores"`
	MarketOutlook         string         `json:"market_outlook"`
	CompetitiveAdvantages []string       `json:"competitive_advantages"`
	CriticalWeaknesses    []string       `json:"critical_weaknesses"`
	MarketPositioning     string         `json:"market_positioning"`
	ActionableAdvice      []string       `json:"actionable_advice"`
	FinalVerdict          string         `json:"final_verdict"`
	VerdictReasoning      string         `json:"verdict_reasoning"`

	// Filled by the orchestrator, not the provider.
	Provider   string    `json:"provider,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at,omitempty"`
}

// Chat message roles understood by analysis providers.
const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
)

// ChatMessage is one turn of a provider conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ResearchBrief is the optional market-intelligence pre-pass output.
type ResearchBrief struct {
	Content     string    `json:"content"`
	Provider    string    `json:"provider"`
	RetrievedAt time.Time `json:"retrieved_at"`
}
