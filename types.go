package ideascope

import (
	"time"

	"github.com/arcline/ideascope/internal/domain"
	"github.com/arcline/ideascope/internal/usecase/retrieval"
	"github.com/arcline/ideascope/internal/vectorstore"
)

// Idea is a caller-supplied startup idea.
type Idea struct {
	Title        string
	Summary      string
	Description  string
	Audience     string
	MarketSize   string
	TeamStrength int
	Traction     string
}

// Scores is the per-dimension score breakdown of an analysis.
type Scores struct {
	MarketViability      int
	InnovationIndex      int
	CompetitionIntensity int
	ScalabilityPotential int
	ExecutionFeasibility int
}

// Competitor describes one competitor identified during analysis.
type Competitor struct {
	Name           string
	Description    string
	Strengths      []string
	Weaknesses     []string
	Stage          string
	MarketPosition string
}

// Analysis is a completed idea evaluation.
type Analysis struct {
	IdeaTitle             string
	Domain                string
	CategoryTags          []string
	Competitors           []Competitor
	Scores                Scores
	OverallScore          int
	MarketOutlook         string
	CompetitiveAdvantages []string
	CriticalWeaknesses    []string
	MarketPositioning     string
	ActionableAdvice      []string
	FinalVerdict          string
	VerdictReasoning      string
	Provider              string
	Attempts              int
	AnalyzedAt            time.Time
}

// Match is one retrieved prior idea with its similarity to the query.
type Match struct {
	Title      string
	Domain     string
	Score      int
	Verdict    string
	Traction   string
	Similarity float64
}

// Retrieved is the context assembled from prior similar ideas.
type Retrieved struct {
	HasSimilar bool
	Matches    []Match
	Patterns   []string
	Insights   string
	StoreSize  int
}

// Stats summarizes the stored analysis corpus.
type Stats struct {
	TotalAnalyses       int
	AverageScore        int
	VerdictDistribution map[string]int
}

func (i Idea) toDomain() domain.IdeaInput {
	return domain.IdeaInput{
		Title:        i.Title,
		Summary:      i.Summary,
		Description:  i.Description,
		Audience:     i.Audience,
		MarketSize:   i.MarketSize,
		TeamStrength: i.TeamStrength,
		Traction:     i.Traction,
	}
}

func analysisFromDomain(r domain.AnalysisResult) Analysis {
	competitors := make([]Competitor, len(r.Competitors))
	for i, c := range r.Competitors {
		competitors[i] = Competitor{
			Name:           c.Name,
			Description:    c.Description,
			Strengths:      c.Strengths,
			Weaknesses:     c.Weaknesses,
			Stage:          c.Stage,
			MarketPosition: c.MarketPosition,
		}
	}
	return Analysis{
		IdeaTitle:    r.IdeaTitle,
		Domain:       r.Domain,
		CategoryTags: r.CategoryTags,
		Competitors:  competitors,
		Scores: Scores{
			MarketViability:      r.Scores.MarketViability,
			InnovationIndex:      r.Scores.InnovationIndex,
			CompetitionIntensity: r.Scores.CompetitionIntensity,
			ScalabilityPotential: r.Scores.ScalabilityPotential,
			ExecutionFeasibility: r.Scores.ExecutionFeasibility,
		},
		OverallScore:          r.Scores.Overall(),
		MarketOutlook:         r.MarketOutlook,
		CompetitiveAdvantages: r.CompetitiveAdvantages,
		CriticalWeaknesses:    r.CriticalWeaknesses,
		MarketPositioning:     r.MarketPositioning,
		ActionableAdvice:      r.ActionableAdvice,
		FinalVerdict:          r.FinalVerdict,
		VerdictReasoning:      r.VerdictReasoning,
		Provider:              r.Provider,
		Attempts:              r.Attempts,
		AnalyzedAt:            r.AnalyzedAt,
	}
}

func retrievedFromDomain(c retrieval.Context) Retrieved {
	matches := make([]Match, len(c.Matches))
	for i, m := range c.Matches {
		matches[i] = Match{
			Title:      m.Record.Title,
			Domain:     m.Record.Domain,
			Score:      m.Record.Score,
			Verdict:    string(m.Record.Verdict),
			Traction:   m.Record.Traction,
			Similarity: m.Similarity,
		}
	}
	return Retrieved{
		HasSimilar: c.HasSimilar,
		Matches:    matches,
		Patterns:   c.Patterns,
		Insights:   c.Insights,
		StoreSize:  c.StoreSize,
	}
}

func statsFromDomain(s vectorstore.Stats) Stats {
	return Stats{
		TotalAnalyses:       s.TotalAnalyses,
		AverageScore:        s.AverageScore,
		VerdictDistribution: s.VerdictDistribution,
	}
}
